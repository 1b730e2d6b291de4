package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lumenboard/lumenboard/internal/layout"
	"github.com/lumenboard/lumenboard/internal/logging"
	"github.com/lumenboard/lumenboard/internal/manager"
	"github.com/lumenboard/lumenboard/internal/render"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type api struct {
	mgr    *manager.DisplayManager
	logger logging.Logger
}

// apiRouter exposes the admin API. Paths are relative to /api.
func apiRouter(mgr *manager.DisplayManager, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	a := &api{mgr: mgr, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", a.handleStatus)
	mux.HandleFunc("/data", a.handleData)
	mux.HandleFunc("/refresh", a.handleRefresh)
	mux.HandleFunc("/layout", a.handleLayout)
	mux.HandleFunc("/layout/load/", a.handleLayoutLoad)
	mux.HandleFunc("/layouts", a.handleLayoutsList)
	mux.HandleFunc("/layouts/", a.handleLayoutByName)
	mux.HandleFunc("/preview", a.handlePreview)
	mux.HandleFunc("/preview/base64", a.handlePreviewBase64)
	mux.HandleFunc("/send", a.handleSend)
	mux.HandleFunc("/brightness/", a.handleBrightness)
	mux.HandleFunc("/datasources", a.handleDataSources)
	return mux
}

func (a *api) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, a.mgr.Status())
}

func (a *api) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, a.mgr.Sources().Data())
}

func (a *api) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req struct {
		Source string `json:"source"`
	}
	if r.Body != nil {
		// An empty body means refresh everything.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Source != "" {
		data, err := a.mgr.Sources().Refresh(r.Context(), req.Source)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "refresh_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "source": req.Source, "data": data})
		return
	}

	data := a.mgr.Sources().RefreshAll(r.Context())
	if a.mgr.Layout() != nil {
		_ = a.mgr.RenderAndPush(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": data})
}

func (a *api) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	l := a.mgr.Layout()
	if l == nil {
		writeAPIError(w, http.StatusNotFound, "no_layout", "no layout loaded")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *api) handleLayoutsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	names := []string{}
	entries, err := os.ReadDir(a.mgr.LayoutDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	writeJSON(w, http.StatusOK, names)
}

// layoutName extracts and validates the {name} path segment. Path
// separators are rejected so the API cannot escape the layout dir.
func layoutName(path, prefix string) (string, bool) {
	name := strings.TrimPrefix(path, prefix)
	if name == "" || strings.ContainsAny(name, "/\\") || name == ".." {
		return "", false
	}
	return name, true
}

func (a *api) handleLayoutByName(w http.ResponseWriter, r *http.Request) {
	name, ok := layoutName(r.URL.Path, "/layouts/")
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "bad_name", "invalid layout name")
		return
	}
	path := filepath.Join(a.mgr.LayoutDir, name+".json")

	switch r.Method {
	case http.MethodGet:
		raw, err := os.ReadFile(path)
		if err != nil {
			writeAPIError(w, http.StatusNotFound, "not_found", "layout not found: "+name)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(raw)
	case http.MethodPost:
		raw, err := readBody(r)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "bad_body", err.Error())
			return
		}
		// Validate before persisting so a broken layout never lands on
		// disk.
		if _, err := layout.Parse(raw); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_layout", err.Error())
			return
		}
		if err := os.MkdirAll(a.mgr.LayoutDir, 0o755); err != nil {
			writeAPIError(w, http.StatusInternalServerError, "save_failed", err.Error())
			return
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			writeAPIError(w, http.StatusInternalServerError, "save_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "path": path})
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (a *api) handleLayoutLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	name, ok := layoutName(r.URL.Path, "/layout/load/")
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "bad_name", "invalid layout name")
		return
	}
	if err := a.mgr.LoadLayout(name + ".json"); err != nil {
		writeAPIError(w, http.StatusBadRequest, "load_failed", err.Error())
		return
	}
	_ = a.mgr.RenderAndPush(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "layout": name})
}

func (a *api) renderPreview(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	frame := a.mgr.Render()
	if frame == nil {
		writeAPIError(w, http.StatusNotFound, "no_frame", "no layout loaded")
		return nil, false
	}

	scale := 4
	if raw := r.URL.Query().Get("scale"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 16 {
			scale = n
		}
	}

	var buf bytes.Buffer
	if err := render.WritePreview(&buf, frame, render.PreviewOptions{Scale: scale}); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "preview_failed", err.Error())
		return nil, false
	}
	return buf.Bytes(), true
}

func (a *api) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	png, ok := a.renderPreview(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (a *api) handlePreviewBase64(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	png, ok := a.renderPreview(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"image": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

func (a *api) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if a.mgr.Device() == nil {
		writeAPIError(w, http.StatusConflict, "no_device", "no device connected")
		return
	}
	frame := a.mgr.Frame()
	if frame == nil {
		writeAPIError(w, http.StatusNotFound, "no_frame", "no layout loaded")
		return
	}
	if err := a.mgr.Push(r.Context(), frame); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "send_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (a *api) handleBrightness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/brightness/")
	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 100 {
		writeAPIError(w, http.StatusBadRequest, "bad_level", "brightness must be 0-100")
		return
	}
	if a.mgr.Device() == nil {
		writeAPIError(w, http.StatusConflict, "no_device", "no device connected")
		return
	}
	if err := a.mgr.SetBrightness(r.Context(), level); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "brightness_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "brightness": level})
}

func (a *api) handleDataSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, a.mgr.Sources().Status())
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(nil, r.Body, 1<<20)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
