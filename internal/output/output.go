// Package output holds local frame sinks that mirror what is sent to
// the device.
package output

import (
	"github.com/lumenboard/lumenboard/internal/canvas"
)

// Sink receives every rendered frame. The Pixoo device itself is not a
// Sink; sinks are local mirrors like the framebuffer or a PNG file.
type Sink interface {
	Push(c *canvas.Canvas) error
	Close() error
}

// FileSink overwrites a PNG file with the latest frame. Pointing a
// desktop image viewer at the file gives a crude live mirror.
type FileSink struct {
	Path string
}

func (s *FileSink) Push(c *canvas.Canvas) error {
	return c.Save(s.Path)
}

func (s *FileSink) Close() error { return nil }
