package font

// Tiny 3x5 face for dense layouts. Uppercase only; lowercase input is
// aliased to the uppercase bitmaps below.
func init() {
	glyphs := map[rune][]string{
		' ': {"...", "...", "...", "...", "..."},
		'!': {".#.", ".#.", ".#.", "...", ".#."},
		'%': {"#.#", "..#", ".#.", "#..", "#.#"},
		'+': {"...", ".#.", "###", ".#.", "..."},
		',': {"...", "...", "...", ".#.", "#.."},
		'-': {"...", "...", "###", "...", "..."},
		'.': {"...", "...", "...", "...", ".#."},
		'/': {"..#", "..#", ".#.", "#..", "#.."},
		'0': {"###", "#.#", "#.#", "#.#", "###"},
		'1': {".#.", "##.", ".#.", ".#.", "###"},
		'2': {"###", "..#", "###", "#..", "###"},
		'3': {"###", "..#", "###", "..#", "###"},
		'4': {"#.#", "#.#", "###", "..#", "..#"},
		'5': {"###", "#..", "###", "..#", "###"},
		'6': {"###", "#..", "###", "#.#", "###"},
		'7': {"###", "..#", "..#", "..#", "..#"},
		'8': {"###", "#.#", "###", "#.#", "###"},
		'9': {"###", "#.#", "###", "..#", "###"},
		':': {"...", ".#.", "...", ".#.", "..."},
		'A': {"###", "#.#", "###", "#.#", "#.#"},
		'B': {"##.", "#.#", "##.", "#.#", "##."},
		'C': {"###", "#..", "#..", "#..", "###"},
		'D': {"##.", "#.#", "#.#", "#.#", "##."},
		'E': {"###", "#..", "###", "#..", "###"},
		'F': {"###", "#..", "###", "#..", "#.."},
		'G': {"###", "#..", "#.#", "#.#", "###"},
		'H': {"#.#", "#.#", "###", "#.#", "#.#"},
		'I': {"###", ".#.", ".#.", ".#.", "###"},
		'J': {"..#", "..#", "..#", "#.#", "###"},
		'K': {"#.#", "#.#", "##.", "#.#", "#.#"},
		'L': {"#..", "#..", "#..", "#..", "###"},
		'M': {"#.#", "###", "###", "#.#", "#.#"},
		'N': {"#.#", "###", "###", "###", "#.#"},
		'O': {"###", "#.#", "#.#", "#.#", "###"},
		'P': {"###", "#.#", "###", "#..", "#.."},
		'Q': {"###", "#.#", "#.#", "###", "..#"},
		'R': {"###", "#.#", "##.", "#.#", "#.#"},
		'S': {"###", "#..", "###", "..#", "###"},
		'T': {"###", ".#.", ".#.", ".#.", ".#."},
		'U': {"#.#", "#.#", "#.#", "#.#", "###"},
		'V': {"#.#", "#.#", "#.#", "#.#", ".#."},
		'W': {"#.#", "#.#", "###", "###", "#.#"},
		'X': {"#.#", "#.#", ".#.", "#.#", "#.#"},
		'Y': {"#.#", "#.#", ".#.", ".#.", ".#."},
		'Z': {"###", "..#", ".#.", "#..", "###"},
	}
	for ch := 'A'; ch <= 'Z'; ch++ {
		glyphs[ch+('a'-'A')] = glyphs[ch]
	}
	register(&Font{
		Name:    "3x5",
		Width:   3,
		Height:  5,
		Spacing: 1,
		glyphs:  glyphs,
	})
}
