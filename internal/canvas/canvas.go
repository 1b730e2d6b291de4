package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Size is the edge length of the Pixoo 64 panel.
const Size = 64

// RGB is one display pixel. The panel has no alpha channel.
type RGB struct {
	R, G, B uint8
}

// ParseColor parses a 6-hex-digit color string; the '#' prefix is optional.
func ParseColor(s string) (RGB, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q", s)
	}
	var c RGB
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

// MustParseColor is ParseColor for compile-time-known literals.
func MustParseColor(s string) RGB {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Canvas is a fixed 64x64 offscreen pixel buffer. All accessors are
// bounds-checked: out-of-range writes are dropped, out-of-range reads
// return black. A Canvas is owned by the render call that created it.
type Canvas struct {
	width  int
	height int
	pixels []RGB // row-major
}

func New(background RGB) *Canvas {
	c := &Canvas{width: Size, height: Size, pixels: make([]RGB, Size*Size)}
	c.Clear(background)
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

func (c *Canvas) SetPixel(x, y int, col RGB) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.pixels[y*c.width+x] = col
}

func (c *Canvas) Pixel(x, y int) RGB {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return RGB{}
	}
	return c.pixels[y*c.width+x]
}

func (c *Canvas) Clear(col RGB) {
	for i := range c.pixels {
		c.pixels[i] = col
	}
}

// DrawRect draws a w x h rectangle with its top-left corner at (x, y).
// Unfilled rectangles paint only the four boundary edges; for degenerate
// 1-pixel-wide or -tall rectangles the edges overlap.
func (c *Canvas) DrawRect(x, y, w, h int, col RGB, filled bool) {
	if filled {
		for py := y; py < y+h; py++ {
			for px := x; px < x+w; px++ {
				c.SetPixel(px, py, col)
			}
		}
		return
	}
	for px := x; px < x+w; px++ {
		c.SetPixel(px, y, col)
		c.SetPixel(px, y+h-1, col)
	}
	for py := y; py < y+h; py++ {
		c.SetPixel(x, py, col)
		c.SetPixel(x+w-1, py, col)
	}
}

// DrawLine draws with the integer Bresenham algorithm, inclusive of both
// endpoints.
func (c *Canvas) DrawLine(x1, y1, x2, y2 int, col RGB) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx - dy

	x, y := x1, y1
	for {
		c.SetPixel(x, y, col)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// DrawImage composites img with its top-left corner at (x, y). A non-zero
// targetW/targetH resamples the source to that size first (nearest
// neighbor). Source pixels paint only when their alpha strictly exceeds
// 128; images without an alpha channel are fully opaque.
func (c *Canvas) DrawImage(x, y int, img image.Image, targetW, targetH int) {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return
	}

	dstW, dstH := srcW, srcH
	if targetW > 0 || targetH > 0 {
		if targetW > 0 {
			dstW = targetW
		}
		if targetH > 0 {
			dstH = targetH
		}
	}

	for py := 0; py < dstH; py++ {
		sy := bounds.Min.Y + (py*srcH)/dstH
		for px := 0; px < dstW; px++ {
			sx := bounds.Min.X + (px*srcW)/dstW
			nc := color.NRGBAModel.Convert(img.At(sx, sy)).(color.NRGBA)
			if nc.A > 128 {
				c.SetPixel(x+px, y+py, RGB{R: nc.R, G: nc.G, B: nc.B})
			}
		}
	}
}

// Pixels returns the buffer flattened row-major, row 0 left to right.
func (c *Canvas) Pixels() []RGB {
	out := make([]RGB, len(c.pixels))
	copy(out, c.pixels)
	return out
}

// Bytes returns the wire layout the device expects: r,g,b per pixel,
// row-major.
func (c *Canvas) Bytes() []byte {
	out := make([]byte, 0, len(c.pixels)*3)
	for _, p := range c.pixels {
		out = append(out, p.R, p.G, p.B)
	}
	return out
}

// Image exports the canvas for inspection and file output.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			p := c.pixels[y*c.width+x]
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF})
		}
	}
	return img
}

// Save writes the canvas to path as a PNG.
func (c *Canvas) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, c.Image()); err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
