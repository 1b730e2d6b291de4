package render

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/lumenboard/lumenboard/internal/canvas"
)

// BuildQRCanvas renders payload as a QR code filling the whole panel,
// black modules on white. Used to show the admin UI address on the
// display itself for pairing.
func BuildQRCanvas(payload string) (*canvas.Canvas, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty QR payload")
	}
	code, err := qrcode.New(payload, qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("build qr code: %w", err)
	}
	code.DisableBorder = true

	c := canvas.New(canvas.RGB{R: 255, G: 255, B: 255})
	c.DrawImage(0, 0, code.Image(canvas.Size), 0, 0)
	return c, nil
}
