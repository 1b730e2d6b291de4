//go:build linux && cgo

package output

import (
	"fmt"
	"image/color"

	fb "github.com/gonutz/framebuffer"

	"github.com/lumenboard/lumenboard/internal/canvas"
	"github.com/lumenboard/lumenboard/internal/logging"
)

// FramebufferSink mirrors frames onto a Linux framebuffer console,
// scaling the panel up to fill the screen with nearest-neighbor
// sampling so the pixels stay square.
type FramebufferSink struct {
	dev    *fb.Device
	logger logging.Logger
}

// OpenFramebuffer opens the framebuffer device, /dev/fb0 when path is
// empty.
func OpenFramebuffer(path string, logger logging.Logger) (Sink, error) {
	if path == "" {
		path = "/dev/fb0"
	}
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	bounds := dev.Bounds()
	logger.Infof("output", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())
	return &FramebufferSink{dev: dev, logger: logger}, nil
}

func (s *FramebufferSink) Push(c *canvas.Canvas) error {
	bounds := s.dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()

	// The panel is square; letterbox into the larger framebuffer axis.
	side := fbWidth
	if fbHeight < side {
		side = fbHeight
	}
	offX := bounds.Min.X + (fbWidth-side)/2
	offY := bounds.Min.Y + (fbHeight-side)/2

	for y := 0; y < side; y++ {
		sy := (y * c.Height()) / side
		for x := 0; x < side; x++ {
			sx := (x * c.Width()) / side
			p := c.Pixel(sx, sy)
			s.dev.Set(offX+x, offY+y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF})
		}
	}
	return nil
}

func (s *FramebufferSink) Close() error {
	s.dev.Close()
	return nil
}
