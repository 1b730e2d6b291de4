//go:build !linux || !cgo

package output

import (
	"fmt"

	"github.com/lumenboard/lumenboard/internal/logging"
)

// OpenFramebuffer is Linux-only; other platforms report that plainly.
func OpenFramebuffer(path string, logger logging.Logger) (Sink, error) {
	return nil, fmt.Errorf("framebuffer mirroring requires linux")
}
