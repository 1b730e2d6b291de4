package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/lumenboard/lumenboard/internal/canvas"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	defaultPreviewScale = 8
	captionStripHeight  = 24
	captionFontSize     = 14
)

// PreviewOptions controls the magnified PNG export of a canvas.
type PreviewOptions struct {
	// Scale is the integer magnification factor; 0 means 8x.
	Scale int
	// Caption, when non-empty, adds a labeled strip under the pixels.
	Caption string
	// FontPath points at an OTF/TTF file for the caption. When empty or
	// unparsable the built-in basicfont face is used.
	FontPath string
}

// WritePreview encodes c as a PNG magnified with nearest-neighbor
// sampling so individual panel pixels stay crisp.
func WritePreview(w io.Writer, c *canvas.Canvas, opts PreviewOptions) error {
	scale := opts.Scale
	if scale <= 0 {
		scale = defaultPreviewScale
	}

	src := c.Image()
	outW := c.Width() * scale
	outH := c.Height() * scale
	stripH := 0
	if opts.Caption != "" {
		stripH = captionStripHeight
	}

	out := image.NewRGBA(image.Rect(0, 0, outW, outH+stripH))
	xdraw.NearestNeighbor.Scale(out, image.Rect(0, 0, outW, outH), src, src.Bounds(), xdraw.Src, nil)

	if stripH > 0 {
		strip := image.Rect(0, outH, outW, outH+stripH)
		draw.Draw(out, strip, &image.Uniform{C: color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}}, image.Point{}, draw.Src)
		drawCaption(out, strip, opts.Caption, opts.FontPath)
	}

	return png.Encode(w, out)
}

// SavePreview is WritePreview to a file path.
func SavePreview(path string, c *canvas.Canvas, opts PreviewOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save preview: %w", err)
	}
	defer f.Close()
	return WritePreview(f, c, opts)
}

// drawCaption renders the caption text into the strip. With a configured
// font file the glyphs come from the freetype rasterizer; otherwise from
// basicfont.Face7x13.
func drawCaption(dst *image.RGBA, strip image.Rectangle, caption, fontPath string) {
	white := image.NewUniform(color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF})

	if fontPath != "" {
		if data, err := os.ReadFile(fontPath); err == nil {
			if tt, terr := truetype.Parse(data); terr == nil {
				drawCaptionTrueType(dst, strip, caption, data, tt, white)
				return
			}
		}
	}

	face := basicfont.Face7x13
	metrics := face.Metrics()
	baseline := strip.Min.Y + (strip.Dy()+metrics.Ascent.Ceil())/2
	drawer := &font.Drawer{Dst: dst, Src: white, Face: face}
	drawer.Dot = fixed.P(strip.Min.X+4, baseline)
	drawer.DrawString(caption)
}

func drawCaptionTrueType(dst *image.RGBA, strip image.Rectangle, caption string, raw []byte, tt *truetype.Font, src *image.Uniform) {
	// Parse the same bytes as an opentype face for reliable metrics, then
	// let freetype do the drawing.
	ascent := captionFontSize
	if sfnt, err := opentype.Parse(raw); err == nil {
		if face, ferr := opentype.NewFace(sfnt, &opentype.FaceOptions{Size: captionFontSize, DPI: 72, Hinting: font.HintingFull}); ferr == nil {
			ascent = face.Metrics().Ascent.Ceil()
			_ = face.Close()
		}
	}
	baseline := strip.Min.Y + (strip.Dy()+ascent)/2

	ft := freetype.NewContext()
	ft.SetFont(tt)
	ft.SetFontSize(captionFontSize)
	ft.SetDPI(72)
	ft.SetClip(strip)
	ft.SetDst(dst)
	ft.SetSrc(src)
	_, _ = ft.DrawString(caption, freetype.Pt(strip.Min.X+4, baseline))
}
