package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumenboard/lumenboard/internal/logging"
)

// GenericConfig points a source at an arbitrary JSON REST endpoint.
// Header and query values may reference environment variables as ${VAR}.
// JSONPath is a dot path like "$.data.value" whose result is exposed as
// "value"; JSONPaths extracts several keys at once.
type GenericConfig struct {
	Config
	URL       string                 `json:"url"`
	Method    string                 `json:"method"`
	Headers   map[string]string      `json:"headers"`
	Params    map[string]string      `json:"params"`
	Body      map[string]interface{} `json:"body"`
	JSONPath  string                 `json:"json_path"`
	JSONPaths map[string]string      `json:"json_paths"`
	Timeout   int                    `json:"timeout"`
}

type GenericSource struct {
	name   string
	cfg    GenericConfig
	logger logging.Logger
	httpc  *http.Client
}

func NewGenericSource(name string, cfg GenericConfig, logger logging.Logger) *GenericSource {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	} else {
		cfg.Method = strings.ToUpper(cfg.Method)
	}
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &GenericSource{
		name:   name,
		cfg:    cfg,
		logger: logger,
		httpc:  &http.Client{Timeout: timeout},
	}
}

func (s *GenericSource) Name() string { return s.name }
func (s *GenericSource) Type() string { return "generic" }

func (s *GenericSource) RefreshSeconds() int { return s.cfg.refreshSeconds() }

func (s *GenericSource) Fetch(ctx context.Context) (map[string]interface{}, error) {
	var body io.Reader
	if s.cfg.Body != nil && (s.cfg.Method == http.MethodPost || s.cfg.Method == http.MethodPut || s.cfg.Method == http.MethodPatch) {
		raw, err := json.Marshal(s.cfg.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	endpoint := s.cfg.URL
	if len(s.cfg.Params) > 0 {
		q := url.Values{}
		for k, v := range s.cfg.Params {
			q.Set(k, resolveEnv(v))
		}
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, s.cfg.Method, endpoint, body)
	if err != nil {
		return nil, err
	}
	for k, v := range s.cfg.Headers {
		req.Header.Set(k, resolveEnv(v))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned status %d", s.cfg.URL, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		// Non-JSON endpoints still yield something bindable.
		return map[string]interface{}{"raw": string(raw)}, nil
	}

	if s.cfg.JSONPath != "" {
		return map[string]interface{}{
			"value": extractPath(data, s.cfg.JSONPath),
			"raw":   data,
		}, nil
	}
	if len(s.cfg.JSONPaths) > 0 {
		out := make(map[string]interface{}, len(s.cfg.JSONPaths)+1)
		for key, path := range s.cfg.JSONPaths {
			out[key] = extractPath(data, path)
		}
		out["raw"] = data
		return out, nil
	}

	if m, ok := data.(map[string]interface{}); ok {
		return m, nil
	}
	return map[string]interface{}{"value": data}, nil
}

// extractPath walks a dot path like "$.main.temp" (the leading "$." is
// optional) through nested objects. Missing segments yield nil.
func extractPath(data interface{}, path string) interface{} {
	path = strings.TrimPrefix(path, "$.")
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return data
	}
	cur := data
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}
