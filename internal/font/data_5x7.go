package font

// Classic 5x7 dot-matrix face. Covers printable ASCII minus a few rare
// symbols; missing characters are skipped by the renderer.
func init() {
	register(&Font{
		Name:    "5x7",
		Width:   5,
		Height:  7,
		Spacing: 1,
		glyphs: map[rune][]string{
			' ': {
				".....",
				".....",
				".....",
				".....",
				".....",
				".....",
				".....",
			},
			'!': {
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				".....",
				"..#..",
			},
			'"': {
				".#.#.",
				".#.#.",
				".#.#.",
				".....",
				".....",
				".....",
				".....",
			},
			'#': {
				".#.#.",
				".#.#.",
				"#####",
				".#.#.",
				"#####",
				".#.#.",
				".#.#.",
			},
			'$': {
				"..#..",
				".####",
				"#.#..",
				".###.",
				"..#.#",
				"####.",
				"..#..",
			},
			'%': {
				"##..#",
				"##..#",
				"...#.",
				"..#..",
				".#...",
				"#..##",
				"#..##",
			},
			'\'': {
				"..#..",
				"..#..",
				".#...",
				".....",
				".....",
				".....",
				".....",
			},
			'(': {
				"...#.",
				"..#..",
				".#...",
				".#...",
				".#...",
				"..#..",
				"...#.",
			},
			')': {
				".#...",
				"..#..",
				"...#.",
				"...#.",
				"...#.",
				"..#..",
				".#...",
			},
			'*': {
				".....",
				"..#..",
				"#.#.#",
				".###.",
				"#.#.#",
				"..#..",
				".....",
			},
			'+': {
				".....",
				"..#..",
				"..#..",
				"#####",
				"..#..",
				"..#..",
				".....",
			},
			',': {
				".....",
				".....",
				".....",
				".....",
				".....",
				"..#..",
				".#...",
			},
			'-': {
				".....",
				".....",
				".....",
				"#####",
				".....",
				".....",
				".....",
			},
			'.': {
				".....",
				".....",
				".....",
				".....",
				".....",
				".##..",
				".##..",
			},
			'/': {
				"....#",
				"....#",
				"...#.",
				"..#..",
				".#...",
				"#....",
				"#....",
			},
			'0': {
				".###.",
				"#...#",
				"#..##",
				"#.#.#",
				"##..#",
				"#...#",
				".###.",
			},
			'1': {
				"..#..",
				".##..",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				".###.",
			},
			'2': {
				".###.",
				"#...#",
				"....#",
				"...#.",
				"..#..",
				".#...",
				"#####",
			},
			'3': {
				".###.",
				"#...#",
				"....#",
				"..##.",
				"....#",
				"#...#",
				".###.",
			},
			'4': {
				"...#.",
				"..##.",
				".#.#.",
				"#..#.",
				"#####",
				"...#.",
				"...#.",
			},
			'5': {
				"#####",
				"#....",
				"####.",
				"....#",
				"....#",
				"#...#",
				".###.",
			},
			'6': {
				"..##.",
				".#...",
				"#....",
				"####.",
				"#...#",
				"#...#",
				".###.",
			},
			'7': {
				"#####",
				"....#",
				"...#.",
				"..#..",
				".#...",
				".#...",
				".#...",
			},
			'8': {
				".###.",
				"#...#",
				"#...#",
				".###.",
				"#...#",
				"#...#",
				".###.",
			},
			'9': {
				".###.",
				"#...#",
				"#...#",
				".####",
				"....#",
				"...#.",
				".##..",
			},
			':': {
				".....",
				".##..",
				".##..",
				".....",
				".##..",
				".##..",
				".....",
			},
			';': {
				".....",
				".##..",
				".##..",
				".....",
				".##..",
				"..#..",
				".#...",
			},
			'<': {
				"...#.",
				"..#..",
				".#...",
				"#....",
				".#...",
				"..#..",
				"...#.",
			},
			'=': {
				".....",
				".....",
				"#####",
				".....",
				"#####",
				".....",
				".....",
			},
			'>': {
				".#...",
				"..#..",
				"...#.",
				"....#",
				"...#.",
				"..#..",
				".#...",
			},
			'?': {
				".###.",
				"#...#",
				"....#",
				"...#.",
				"..#..",
				".....",
				"..#..",
			},
			'A': {
				".###.",
				"#...#",
				"#...#",
				"#####",
				"#...#",
				"#...#",
				"#...#",
			},
			'B': {
				"####.",
				"#...#",
				"#...#",
				"####.",
				"#...#",
				"#...#",
				"####.",
			},
			'C': {
				".###.",
				"#...#",
				"#....",
				"#....",
				"#....",
				"#...#",
				".###.",
			},
			'D': {
				"####.",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				"####.",
			},
			'E': {
				"#####",
				"#....",
				"#....",
				"####.",
				"#....",
				"#....",
				"#####",
			},
			'F': {
				"#####",
				"#....",
				"#....",
				"####.",
				"#....",
				"#....",
				"#....",
			},
			'G': {
				".###.",
				"#...#",
				"#....",
				"#.###",
				"#...#",
				"#...#",
				".####",
			},
			'H': {
				"#...#",
				"#...#",
				"#...#",
				"#####",
				"#...#",
				"#...#",
				"#...#",
			},
			'I': {
				".###.",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				".###.",
			},
			'J': {
				"..###",
				"...#.",
				"...#.",
				"...#.",
				"...#.",
				"#..#.",
				".##..",
			},
			'K': {
				"#...#",
				"#..#.",
				"#.#..",
				"##...",
				"#.#..",
				"#..#.",
				"#...#",
			},
			'L': {
				"#....",
				"#....",
				"#....",
				"#....",
				"#....",
				"#....",
				"#####",
			},
			'M': {
				"#...#",
				"##.##",
				"#.#.#",
				"#.#.#",
				"#...#",
				"#...#",
				"#...#",
			},
			'N': {
				"#...#",
				"##..#",
				"#.#.#",
				"#..##",
				"#...#",
				"#...#",
				"#...#",
			},
			'O': {
				".###.",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				".###.",
			},
			'P': {
				"####.",
				"#...#",
				"#...#",
				"####.",
				"#....",
				"#....",
				"#....",
			},
			'Q': {
				".###.",
				"#...#",
				"#...#",
				"#...#",
				"#.#.#",
				"#..#.",
				".##.#",
			},
			'R': {
				"####.",
				"#...#",
				"#...#",
				"####.",
				"#.#..",
				"#..#.",
				"#...#",
			},
			'S': {
				".####",
				"#....",
				"#....",
				".###.",
				"....#",
				"....#",
				"####.",
			},
			'T': {
				"#####",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
			},
			'U': {
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				".###.",
			},
			'V': {
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
				".#.#.",
				"..#..",
			},
			'W': {
				"#...#",
				"#...#",
				"#...#",
				"#.#.#",
				"#.#.#",
				"##.##",
				"#...#",
			},
			'X': {
				"#...#",
				"#...#",
				".#.#.",
				"..#..",
				".#.#.",
				"#...#",
				"#...#",
			},
			'Y': {
				"#...#",
				"#...#",
				".#.#.",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
			},
			'Z': {
				"#####",
				"....#",
				"...#.",
				"..#..",
				".#...",
				"#....",
				"#####",
			},
			'_': {
				".....",
				".....",
				".....",
				".....",
				".....",
				".....",
				"#####",
			},
			'a': {
				".....",
				".....",
				".###.",
				"....#",
				".####",
				"#...#",
				".####",
			},
			'b': {
				"#....",
				"#....",
				"####.",
				"#...#",
				"#...#",
				"#...#",
				"####.",
			},
			'c': {
				".....",
				".....",
				".###.",
				"#....",
				"#....",
				"#...#",
				".###.",
			},
			'd': {
				"....#",
				"....#",
				".####",
				"#...#",
				"#...#",
				"#...#",
				".####",
			},
			'e': {
				".....",
				".....",
				".###.",
				"#...#",
				"#####",
				"#....",
				".###.",
			},
			'f': {
				"..##.",
				".#..#",
				".#...",
				"###..",
				".#...",
				".#...",
				".#...",
			},
			'g': {
				".....",
				".....",
				".####",
				"#...#",
				".####",
				"....#",
				".###.",
			},
			'h': {
				"#....",
				"#....",
				"####.",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
			},
			'i': {
				"..#..",
				".....",
				".##..",
				"..#..",
				"..#..",
				"..#..",
				".###.",
			},
			'j': {
				"...#.",
				".....",
				"..##.",
				"...#.",
				"...#.",
				"#..#.",
				".##..",
			},
			'k': {
				"#....",
				"#....",
				"#..#.",
				"#.#..",
				"##...",
				"#.#..",
				"#..#.",
			},
			'l': {
				".##..",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				"..#..",
				".###.",
			},
			'm': {
				".....",
				".....",
				"##.#.",
				"#.#.#",
				"#.#.#",
				"#.#.#",
				"#.#.#",
			},
			'n': {
				".....",
				".....",
				"####.",
				"#...#",
				"#...#",
				"#...#",
				"#...#",
			},
			'o': {
				".....",
				".....",
				".###.",
				"#...#",
				"#...#",
				"#...#",
				".###.",
			},
			'p': {
				".....",
				".....",
				"####.",
				"#...#",
				"####.",
				"#....",
				"#....",
			},
			'q': {
				".....",
				".....",
				".####",
				"#...#",
				".####",
				"....#",
				"....#",
			},
			'r': {
				".....",
				".....",
				"#.##.",
				"##..#",
				"#....",
				"#....",
				"#....",
			},
			's': {
				".....",
				".....",
				".####",
				"#....",
				".###.",
				"....#",
				"####.",
			},
			't': {
				".#...",
				".#...",
				"###..",
				".#...",
				".#...",
				".#..#",
				"..##.",
			},
			'u': {
				".....",
				".....",
				"#...#",
				"#...#",
				"#...#",
				"#..##",
				".##.#",
			},
			'v': {
				".....",
				".....",
				"#...#",
				"#...#",
				"#...#",
				".#.#.",
				"..#..",
			},
			'w': {
				".....",
				".....",
				"#...#",
				"#...#",
				"#.#.#",
				"#.#.#",
				".#.#.",
			},
			'x': {
				".....",
				".....",
				"#...#",
				".#.#.",
				"..#..",
				".#.#.",
				"#...#",
			},
			'y': {
				".....",
				".....",
				"#...#",
				"#...#",
				".####",
				"....#",
				".###.",
			},
			'z': {
				".....",
				".....",
				"#####",
				"...#.",
				"..#..",
				".#...",
				"#####",
			},
		},
	})
}
