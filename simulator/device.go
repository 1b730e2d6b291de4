package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lumenboard/lumenboard/internal/canvas"
	"github.com/lumenboard/lumenboard/internal/logging"
	"github.com/lumenboard/lumenboard/internal/render"
)

// Device emulates the Pixoo 64 command surface. It answers every
// command with error_code 0 and keeps enough state (brightness, screen
// power, channel, frame) for the client and admin UI to behave.
type Device struct {
	logger    logging.Logger
	frameFile string
	scale     int

	mu         sync.Mutex
	frame      *canvas.Canvas
	brightness int
	screenOn   bool
	channel    int

	srv *http.Server
	ln  net.Listener
}

func NewDevice(frameFile string, scale int, logger logging.Logger) *Device {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	if scale <= 0 {
		scale = 4
	}
	return &Device{
		logger:     logger,
		frameFile:  frameFile,
		scale:      scale,
		frame:      canvas.New(canvas.RGB{}),
		brightness: 100,
		screenOn:   true,
	}
}

func (d *Device) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/post", d.handlePost)
	mux.HandleFunc("/frame.png", d.handleFramePNG)
	mux.HandleFunc("/", d.handleIndex)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	d.ln = ln
	d.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = d.Stop()
	}()
	go func() {
		err := d.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Errorf("sim", "serve: %v", err)
		}
	}()
	return nil
}

func (d *Device) Stop() error {
	if d.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.srv.Shutdown(ctx)
}

func (d *Device) Addr() string {
	if d.ln == nil {
		return ""
	}
	return d.ln.Addr().String()
}

func (d *Device) handlePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "post only", http.StatusMethodNotAllowed)
		return
	}
	var cmd map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		d.reply(w, map[string]interface{}{"error_code": 1})
		return
	}
	name, _ := cmd["Command"].(string)
	d.logger.Infof("sim", "command %s", name)

	switch name {
	case "Channel/GetAllConf":
		d.mu.Lock()
		resp := map[string]interface{}{
			"error_code": 0,
			"DeviceId":   64,
			"DeviceName": "Pixoo64-Sim",
			"Brightness": d.brightness,
			"CurClockId": 0,
		}
		d.mu.Unlock()
		d.reply(w, resp)
	case "Channel/SetBrightness":
		level := intField(cmd, "Brightness")
		d.mu.Lock()
		d.brightness = level
		d.mu.Unlock()
		d.reply(w, ok())
	case "Channel/OnOffScreen":
		d.mu.Lock()
		d.screenOn = intField(cmd, "OnOff") == 1
		d.mu.Unlock()
		d.reply(w, ok())
	case "Channel/SetIndex", "Channel/GetIndex":
		if name == "Channel/SetIndex" {
			d.mu.Lock()
			d.channel = intField(cmd, "SelectIndex")
			d.mu.Unlock()
		}
		d.reply(w, ok())
	case "Draw/ResetHttpGifId":
		d.reply(w, ok())
	case "Draw/SendHttpGif":
		if err := d.acceptFrame(cmd); err != nil {
			d.logger.Errorf("sim", "frame rejected: %v", err)
			d.reply(w, map[string]interface{}{"error_code": 2})
			return
		}
		d.reply(w, ok())
	default:
		// Unknown commands succeed, like the real firmware.
		d.reply(w, ok())
	}
}

// acceptFrame decodes the base64 RGB payload into the device frame and
// optionally persists it.
func (d *Device) acceptFrame(cmd map[string]interface{}) error {
	data, _ := cmd["PicData"].(string)
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("decode pixel data: %w", err)
	}
	want := canvas.Size * canvas.Size * 3
	if len(raw) != want {
		return fmt.Errorf("expected %d pixel bytes, got %d", want, len(raw))
	}

	frame := canvas.New(canvas.RGB{})
	i := 0
	for y := 0; y < canvas.Size; y++ {
		for x := 0; x < canvas.Size; x++ {
			frame.SetPixel(x, y, canvas.RGB{R: raw[i], G: raw[i+1], B: raw[i+2]})
			i += 3
		}
	}

	d.mu.Lock()
	d.frame = frame
	file := d.frameFile
	d.mu.Unlock()

	if file != "" {
		if err := frame.Save(file); err != nil {
			d.logger.Errorf("sim", "write frame file: %v", err)
		}
	}
	return nil
}

func (d *Device) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	frame := d.frame
	d.mu.Unlock()

	var buf bytes.Buffer
	if err := render.WritePreview(&buf, frame, render.PreviewOptions{Scale: d.scale}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (d *Device) handleIndex(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	brightness := d.brightness
	screenOn := d.screenOn
	d.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>Pixoo Simulator</title>
<meta http-equiv="refresh" content="2"></head>
<body style="background:#111;color:#eee;font-family:monospace">
<h3>Pixoo 64 simulator</h3>
<img src="/frame.png" style="image-rendering:pixelated;border:1px solid #333">
<p>brightness: %d%% screen: %v</p>
</body></html>`, brightness, screenOn)
}

func (d *Device) reply(w http.ResponseWriter, v map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func ok() map[string]interface{} {
	return map[string]interface{}{"error_code": 0}
}

func intField(cmd map[string]interface{}, key string) int {
	if f, okv := cmd[key].(float64); okv {
		return int(f)
	}
	return 0
}
