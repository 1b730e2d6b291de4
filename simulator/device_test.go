package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumenboard/lumenboard/internal/canvas"
)

func postCommand(t *testing.T, dev *Device, cmd map[string]interface{}) map[string]interface{} {
	t.Helper()
	body, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal command: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/post", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	dev.handlePost(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestGetAllConfReportsBrightness(t *testing.T) {
	dev := NewDevice("", 1, nil)
	postCommand(t, dev, map[string]interface{}{
		"Command":    "Channel/SetBrightness",
		"Brightness": 42,
	})
	resp := postCommand(t, dev, map[string]interface{}{"Command": "Channel/GetAllConf"})
	if resp["error_code"].(float64) != 0 {
		t.Fatalf("error_code = %v, want 0", resp["error_code"])
	}
	if resp["Brightness"].(float64) != 42 {
		t.Fatalf("Brightness = %v, want 42", resp["Brightness"])
	}
}

func TestSendHttpGifUpdatesFrame(t *testing.T) {
	dev := NewDevice("", 1, nil)

	raw := make([]byte, canvas.Size*canvas.Size*3)
	raw[0] = 255 // top-left red
	resp := postCommand(t, dev, map[string]interface{}{
		"Command": "Draw/SendHttpGif",
		"PicData": base64.StdEncoding.EncodeToString(raw),
	})
	if resp["error_code"].(float64) != 0 {
		t.Fatalf("error_code = %v, want 0", resp["error_code"])
	}

	dev.mu.Lock()
	px := dev.frame.Pixel(0, 0)
	dev.mu.Unlock()
	if px != (canvas.RGB{R: 255}) {
		t.Fatalf("pixel (0,0) = %v, want red", px)
	}
}

func TestSendHttpGifRejectsShortPayload(t *testing.T) {
	dev := NewDevice("", 1, nil)
	resp := postCommand(t, dev, map[string]interface{}{
		"Command": "Draw/SendHttpGif",
		"PicData": base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
	})
	if resp["error_code"].(float64) == 0 {
		t.Fatal("expected nonzero error_code for short payload")
	}
}

func TestFramePNGServesScaledPreview(t *testing.T) {
	dev := NewDevice("", 3, nil)
	req := httptest.NewRequest(http.MethodGet, "/frame.png", nil)
	rec := httptest.NewRecorder()
	dev.handleFramePNG(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if got := img.Bounds().Dx(); got != canvas.Size*3 {
		t.Fatalf("width = %d, want %d", got, canvas.Size*3)
	}
}

func TestUnknownCommandSucceeds(t *testing.T) {
	dev := NewDevice("", 1, nil)
	resp := postCommand(t, dev, map[string]interface{}{"Command": "Device/PlayTFGif"})
	if resp["error_code"].(float64) != 0 {
		t.Fatalf("error_code = %v, want 0", resp["error_code"])
	}
}
