package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumenboard/lumenboard/internal/layout"
	"github.com/lumenboard/lumenboard/internal/manager"
)

const apiTestLayout = `{"name": "api", "refresh_seconds": 0, "widgets": [
	{"type": "rect", "x": 0, "y": 0, "width": 2, "height": 2, "color": "#00FF00"}
]}`

func newTestAPI(t *testing.T) (*manager.DisplayManager, http.Handler) {
	t.Helper()
	dir := t.TempDir()
	mgr := manager.New(dir, filepath.Join(dir, "layouts"), dir, nil)
	return mgr, apiRouter(mgr, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestStatusEndpoint(t *testing.T) {
	_, h := newTestAPI(t)
	rec, body := doJSON(t, h, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["device_connected"] != false || body["layout_loaded"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestStatusRejectsPost(t *testing.T) {
	_, h := newTestAPI(t)
	rec, _ := doJSON(t, h, http.MethodPost, "/status", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLayoutEndpointNoLayout(t *testing.T) {
	_, h := newTestAPI(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/layout", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLayoutSaveLoadRoundTrip(t *testing.T) {
	mgr, h := newTestAPI(t)

	rec, _ := doJSON(t, h, http.MethodPost, "/layouts/demo", apiTestLayout)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/layouts", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "demo") {
		t.Fatalf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/layouts/demo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/layout/load/demo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d body=%s", rec.Code, rec.Body.String())
	}
	if l := mgr.Layout(); l == nil || l.Name != "api" {
		t.Errorf("layout after load: %v", l)
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/layout", "")
	if rec.Code != http.StatusOK {
		t.Errorf("current layout status = %d", rec.Code)
	}
}

func TestLayoutSaveRejectsInvalid(t *testing.T) {
	mgr, h := newTestAPI(t)
	rec, _ := doJSON(t, h, http.MethodPost, "/layouts/bad", `{"widgets": [{"type": "bogus"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := os.Stat(filepath.Join(mgr.LayoutDir, "bad.json")); !os.IsNotExist(err) {
		t.Error("invalid layout written to disk")
	}
}

func TestLayoutNameTraversalRejected(t *testing.T) {
	_, h := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/layouts/..%2fsecrets", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Errorf("traversal name accepted: %d", rec.Code)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	mgr, h := newTestAPI(t)
	l, err := layout.Parse([]byte(apiTestLayout))
	if err != nil {
		t.Fatal(err)
	}
	mgr.SetLayout(l)

	req := httptest.NewRequest(http.MethodGet, "/preview?scale=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("preview width = %d, want 128", img.Bounds().Dx())
	}
}

func TestPreviewNoLayout(t *testing.T) {
	_, h := newTestAPI(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/preview", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPreviewBase64(t *testing.T) {
	mgr, h := newTestAPI(t)
	l, _ := layout.Parse([]byte(apiTestLayout))
	mgr.SetLayout(l)

	rec, body := doJSON(t, h, http.MethodGet, "/preview/base64", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	img, _ := body["image"].(string)
	if !strings.HasPrefix(img, "data:image/png;base64,") {
		t.Errorf("image = %.40q", img)
	}
}

func TestSendWithoutDevice(t *testing.T) {
	mgr, h := newTestAPI(t)
	l, _ := layout.Parse([]byte(apiTestLayout))
	mgr.SetLayout(l)

	rec, _ := doJSON(t, h, http.MethodPost, "/send", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBrightnessValidation(t *testing.T) {
	_, h := newTestAPI(t)
	rec, _ := doJSON(t, h, http.MethodPost, "/brightness/150", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("over-range status = %d", rec.Code)
	}
	rec, _ = doJSON(t, h, http.MethodPost, "/brightness/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric status = %d", rec.Code)
	}
	// Valid level but no device connected.
	rec, _ = doJSON(t, h, http.MethodPost, "/brightness/50", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("no-device status = %d", rec.Code)
	}
}

func TestDataSourcesEndpoint(t *testing.T) {
	_, h := newTestAPI(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/datasources", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRefreshAllWithoutSources(t *testing.T) {
	_, h := newTestAPI(t)
	rec, body := doJSON(t, h, http.MethodPost, "/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["ok"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestRefreshUnknownSource(t *testing.T) {
	_, h := newTestAPI(t)
	rec, _ := doJSON(t, h, http.MethodPost, "/refresh", `{"source": "nope"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}
