package pixoo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/lumenboard/lumenboard/internal/canvas"
)

// fakeDevice records every command body posted to it and answers like a
// Pixoo: a JSON object with error_code 0.
type fakeDevice struct {
	srv      *httptest.Server
	commands []map[string]interface{}
	respond  func(cmd map[string]interface{}) map[string]interface{}
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()
	fd := &fakeDevice{}
	fd.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("bad command body: %v", err)
		}
		fd.commands = append(fd.commands, cmd)

		resp := map[string]interface{}{"error_code": 0}
		if fd.respond != nil {
			resp = fd.respond(cmd)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(fd.srv.Close)
	return fd
}

func (fd *fakeDevice) client() *Client {
	c := NewClient("127.0.0.1", nil)
	c.SetHTTPClient(fd.srv.Client(), fd.srv.URL)
	return c
}

func (fd *fakeDevice) command(i int) map[string]interface{} {
	return fd.commands[i]
}

func TestSetBrightnessClamps(t *testing.T) {
	fd := newFakeDevice(t)
	c := fd.client()
	ctx := context.Background()

	cases := []struct {
		in   int
		want float64
	}{
		{150, 100},
		{-10, 0},
		{55, 55},
	}
	for i, tc := range cases {
		if err := c.SetBrightness(ctx, tc.in); err != nil {
			t.Fatal(err)
		}
		cmd := fd.command(i)
		if cmd["Command"] != "Channel/SetBrightness" {
			t.Fatalf("sent %v", cmd["Command"])
		}
		if cmd["Brightness"] != tc.want {
			t.Errorf("SetBrightness(%d) sent %v, want %v", tc.in, cmd["Brightness"], tc.want)
		}
	}
}

func TestSendCanvas(t *testing.T) {
	fd := newFakeDevice(t)
	c := fd.client()

	cv := canvas.New(canvas.RGB{})
	cv.SetPixel(0, 0, canvas.RGB{R: 255})
	if err := c.SendCanvas(context.Background(), cv); err != nil {
		t.Fatal(err)
	}

	if len(fd.commands) != 2 {
		t.Fatalf("sent %d commands, want reset then draw", len(fd.commands))
	}
	if fd.command(0)["Command"] != "Draw/ResetHttpGifId" {
		t.Errorf("first command %v, want reset", fd.command(0)["Command"])
	}

	draw := fd.command(1)
	if draw["Command"] != "Draw/SendHttpGif" {
		t.Fatalf("second command %v", draw["Command"])
	}
	if draw["PicNum"] != float64(1) || draw["PicWidth"] != float64(64) || draw["PicSpeed"] != float64(1000) {
		t.Errorf("frame envelope: %v", draw)
	}
	raw, err := base64.StdEncoding.DecodeString(draw["PicData"].(string))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 64*64*3 {
		t.Fatalf("payload is %d bytes", len(raw))
	}
	if raw[0] != 255 || raw[1] != 0 || raw[2] != 0 {
		t.Errorf("first pixel bytes %v, want red", raw[:3])
	}
	if raw[3] != 0 {
		t.Errorf("second pixel should be black, got %v", raw[3:6])
	}
}

func TestDeviceError(t *testing.T) {
	fd := newFakeDevice(t)
	fd.respond = func(cmd map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"error_code": 5}
	}
	c := fd.client()

	err := c.SetChannel(context.Background(), ChannelCustom)
	if err == nil {
		t.Fatal("expected device error")
	}
	var de *DeviceError
	if !errorsAs(err, &de) || de.Code != 5 {
		t.Fatalf("got %v", err)
	}
}

// errorsAs avoids importing errors just for one assertion.
func errorsAs(err error, target **DeviceError) bool {
	de, ok := err.(*DeviceError)
	if ok {
		*target = de
	}
	return ok
}

func TestBrightnessReadsDeviceInfo(t *testing.T) {
	fd := newFakeDevice(t)
	fd.respond = func(cmd map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"error_code": 0, "Brightness": 42}
	}
	c := fd.client()

	got, err := c.Brightness(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("Brightness() = %d", got)
	}
	if fd.command(0)["Command"] != "Channel/GetAllConf" {
		t.Errorf("sent %v", fd.command(0)["Command"])
	}
}

func TestPing(t *testing.T) {
	fd := newFakeDevice(t)
	if !fd.client().Ping(context.Background()) {
		t.Error("healthy device did not answer ping")
	}

	fd.respond = func(cmd map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"error_code": 1}
	}
	if fd.client().Ping(context.Background()) {
		t.Error("error_code 1 should fail ping")
	}
}

func TestDeviceConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if cfg := LoadDeviceConfig(dir); cfg != nil {
		t.Fatalf("empty dir returned config %v", cfg)
	}

	want := &DeviceConfig{IPAddress: "192.168.1.50", Brightness: 80}
	if err := SaveDeviceConfig(dir, want); err != nil {
		t.Fatal(err)
	}
	got := LoadDeviceConfig(dir)
	if got == nil || got.IPAddress != want.IPAddress || got.Brightness != want.Brightness {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDiscoverPrefersSavedConfig(t *testing.T) {
	dir := t.TempDir()
	if err := SaveDeviceConfig(dir, &DeviceConfig{IPAddress: "10.0.0.9"}); err != nil {
		t.Fatal(err)
	}

	d := NewDiscoverer(dir, nil)
	d.probe = func(ctx context.Context, ip string) bool {
		t.Error("scan ran despite saved config")
		return false
	}
	ip, err := d.Discover(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ip != "10.0.0.9" {
		t.Errorf("Discover() = %q", ip)
	}
}

func TestScanHTTPFindsProbedHost(t *testing.T) {
	d := NewDiscoverer(t.TempDir(), nil)
	d.ScanBase = "192.168.7"
	d.probe = func(ctx context.Context, ip string) bool {
		return ip == "192.168.7.42"
	}

	found := d.scanHTTP(context.Background())
	if len(found) != 1 || found[0] != "192.168.7.42" {
		t.Fatalf("scanHTTP() = %v", found)
	}
}

func TestDiscoverPersistsScannedIP(t *testing.T) {
	dir := t.TempDir()
	d := NewDiscoverer(dir, nil)
	d.ScanBase = "192.168.7"
	d.broadcast = func() []string { return nil }
	d.probe = func(ctx context.Context, ip string) bool {
		return ip == "192.168.7.42"
	}

	ip, err := d.Discover(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ip != "192.168.7.42" {
		t.Fatalf("Discover() = %q", ip)
	}
	cfg := LoadDeviceConfig(filepath.Clean(dir))
	if cfg == nil || cfg.IPAddress != "192.168.7.42" {
		t.Errorf("scanned IP not persisted: %+v", cfg)
	}
}
