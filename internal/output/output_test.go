package output

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/lumenboard/lumenboard/internal/canvas"
)

func TestFileSinkWritesLatestFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.png")
	sink := &FileSink{Path: path}

	c := canvas.New(canvas.RGB{R: 9})
	if err := sink.Push(c); err != nil {
		t.Fatal(err)
	}
	c.SetPixel(0, 0, canvas.RGB{G: 255})
	if err := sink.Push(c); err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("mirror bounds %v", img.Bounds())
	}
	r, g, _, _ := img.At(0, 0).RGBA()
	if r != 0 || g>>8 != 255 {
		t.Errorf("latest frame not on disk: r=%d g=%d", r>>8, g>>8)
	}
}
