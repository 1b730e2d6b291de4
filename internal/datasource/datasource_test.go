package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("DS_TEST_KEY", "secret")
	cases := []struct {
		in   string
		want string
	}{
		{"${DS_TEST_KEY}", "secret"},
		{"${DS_TEST_MISSING}", ""},
		{"literal", "literal"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := resolveEnv(tc.in); got != tc.want {
			t.Errorf("resolveEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStockSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":150.25,"chartPreviousClose":152.75}}]}}`)
	}))
	defer srv.Close()

	s := NewStockSource("stocks", StockConfig{Symbols: []string{"AAPL"}}, nil)
	s.baseURL = srv.URL
	s.httpc = srv.Client()

	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	quote, ok := data["AAPL"].(map[string]interface{})
	if !ok {
		t.Fatalf("no AAPL entry: %v", data)
	}
	if quote["price"] != 150.25 {
		t.Errorf("price = %v", quote["price"])
	}
	if quote["change"] != -2.5 {
		t.Errorf("change = %v", quote["change"])
	}
	if quote["change_percent"] != -1.64 {
		t.Errorf("change_percent = %v", quote["change_percent"])
	}
}

func TestStockSourceFailedSymbolKeepsEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewStockSource("stocks", StockConfig{Symbols: []string{"BAD"}}, nil)
	s.baseURL = srv.URL
	s.httpc = srv.Client()

	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := data["BAD"].(map[string]interface{})
	if !ok || entry["error"] == "" {
		t.Fatalf("failed symbol should carry an error entry: %v", data)
	}
}

func TestWeatherSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "k123" {
			t.Errorf("appid = %q", r.URL.Query().Get("appid"))
		}
		fmt.Fprint(w, `{"name":"Boston","main":{"temp":71.6,"humidity":40},
			"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}],
			"wind":{"speed":4.2,"deg":180},"sys":{"country":"US"}}`)
	}))
	defer srv.Close()

	s := NewWeatherSource("weather", WeatherConfig{APIKey: "k123", Location: "Boston,US"}, nil)
	s.baseURL = srv.URL
	s.httpc = srv.Client()

	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if data["temp"] != float64(72) {
		t.Errorf("temp = %v, want rounded 72", data["temp"])
	}
	if data["icon"] != "clear_day" {
		t.Errorf("icon = %v", data["icon"])
	}
	if data["location"] != "Boston" {
		t.Errorf("location = %v", data["location"])
	}
}

func TestWeatherSourceRequiresKey(t *testing.T) {
	s := NewWeatherSource("weather", WeatherConfig{}, nil)
	s.apiKey = ""
	if _, err := s.Fetch(context.Background()); err == nil {
		t.Error("fetch without api key should fail")
	}
}

func TestIconName(t *testing.T) {
	if got := IconName("01d"); got != "clear_day" {
		t.Errorf("IconName(01d) = %q", got)
	}
	if got := IconName("99x"); got != "unknown" {
		t.Errorf("IconName(99x) = %q", got)
	}
}

func TestGenericSourceJSONPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "tok" {
			t.Errorf("X-Token = %q", r.Header.Get("X-Token"))
		}
		fmt.Fprint(w, `{"data":{"value":42.5,"label":"answer"}}`)
	}))
	defer srv.Close()

	t.Setenv("GENERIC_TOKEN", "tok")
	s := NewGenericSource("api", GenericConfig{
		URL:      srv.URL,
		Headers:  map[string]string{"X-Token": "${GENERIC_TOKEN}"},
		JSONPath: "$.data.value",
	}, nil)

	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if data["value"] != 42.5 {
		t.Errorf("value = %v", data["value"])
	}
}

func TestGenericSourceMultiplePaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"main":{"temp":70},"wind":{"speed":3}}`)
	}))
	defer srv.Close()

	s := NewGenericSource("api", GenericConfig{
		URL: srv.URL,
		JSONPaths: map[string]string{
			"temp":    "$.main.temp",
			"wind":    "$.wind.speed",
			"missing": "$.nope.deeper",
		},
	}, nil)

	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if data["temp"] != float64(70) || data["wind"] != float64(3) {
		t.Errorf("extracted %v", data)
	}
	if data["missing"] != nil {
		t.Errorf("missing path = %v, want nil", data["missing"])
	}
}

func TestGenericSourceNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plain text")
	}))
	defer srv.Close()

	s := NewGenericSource("api", GenericConfig{URL: srv.URL}, nil)
	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if data["raw"] != "plain text" {
		t.Errorf("raw = %v", data["raw"])
	}
}

func TestExtractPath(t *testing.T) {
	var data interface{}
	if err := json.Unmarshal([]byte(`{"a":{"b":{"c":1}},"top":"x"}`), &data); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		path string
		want interface{}
	}{
		{"$.a.b.c", float64(1)},
		{"a.b.c", float64(1)},
		{"$.top", "x"},
		{"$.a.b.c.d", nil},
		{"$.nope", nil},
	}
	for _, tc := range cases {
		if got := extractPath(data, tc.path); got != tc.want {
			t.Errorf("extractPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

// fakeSource is a scriptable source for manager tests.
type fakeSource struct {
	name  string
	data  map[string]interface{}
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) Type() string { return "fake" }

func (f *fakeSource) RefreshSeconds() int { return 60 }

func (f *fakeSource) Fetch(ctx context.Context) (map[string]interface{}, error) {
	f.calls.Add(1)
	return f.data, f.err
}

func TestManagerRefreshMergesContext(t *testing.T) {
	m := NewManager(nil)
	m.Register(&fakeSource{name: "stocks", data: map[string]interface{}{"AAPL": "quote"}})
	m.Register(&fakeSource{name: "weather", data: map[string]interface{}{"temp": float64(70)}})

	ctx := context.Background()
	data := m.RefreshAll(ctx)
	if len(data) != 2 {
		t.Fatalf("context has %d keys: %v", len(data), data)
	}
	if w, ok := data["weather"].(map[string]interface{}); !ok || w["temp"] != float64(70) {
		t.Errorf("weather context: %v", data["weather"])
	}
}

func TestManagerKeepsStaleDataOnFailure(t *testing.T) {
	good := &fakeSource{name: "feed", data: map[string]interface{}{"v": float64(1)}}
	m := NewManager(nil)
	m.Register(good)

	ctx := context.Background()
	if _, err := m.Refresh(ctx, "feed"); err != nil {
		t.Fatal(err)
	}

	good.err = fmt.Errorf("upstream down")
	if _, err := m.Refresh(ctx, "feed"); err == nil {
		t.Fatal("expected refresh error")
	}

	data := m.Data()
	if v, ok := data["feed"].(map[string]interface{}); !ok || v["v"] != float64(1) {
		t.Errorf("stale data dropped: %v", data)
	}
	status := m.Status()
	if len(status) != 1 || status[0].LastError != "upstream down" {
		t.Errorf("status = %+v", status)
	}
}

func TestManagerRefreshUnknown(t *testing.T) {
	m := NewManager(nil)
	if _, err := m.Refresh(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestManagerLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datasources.json")
	cfg := `{
		"sources": {
			"stocks": {"type": "stocks", "symbols": ["AAPL", "GOOG"], "refresh_seconds": 300},
			"weather": {"type": "weather", "api_key": "k", "location": "Boston,US"},
			"disabled": {"type": "stocks", "enabled": false},
			"api": {"type": "generic", "url": "http://example.com/data"}
		}
	}`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil)
	if err := m.LoadConfig(path); err != nil {
		t.Fatal(err)
	}
	names := m.Names()
	want := []string{"api", "stocks", "weather"}
	if len(names) != len(want) {
		t.Fatalf("loaded %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("loaded %v, want %v", names, want)
		}
	}

	if src, ok := m.Source("stocks"); !ok || src.RefreshSeconds() != 300 {
		t.Errorf("stocks source: %v %v", src, ok)
	}
}

func TestManagerLoadConfigMissingFile(t *testing.T) {
	m := NewManager(nil)
	if err := m.LoadConfig(filepath.Join(t.TempDir(), "none.json")); err != nil {
		t.Errorf("missing config should not error: %v", err)
	}
}

func TestManagerLoadConfigUnknownType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datasources.json")
	if err := os.WriteFile(path, []byte(`{"sources":{"x":{"type":"bogus"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewManager(nil).LoadConfig(path); err == nil {
		t.Error("unknown type should fail loading")
	}
}
