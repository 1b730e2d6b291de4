package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/lumenboard/lumenboard/internal/logging"
)

const openWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// weatherIcons maps OpenWeatherMap icon codes to the asset names used
// by image widgets.
var weatherIcons = map[string]string{
	"01d": "clear_day",
	"01n": "clear_night",
	"02d": "partly_cloudy_day",
	"02n": "partly_cloudy_night",
	"03d": "cloudy",
	"03n": "cloudy",
	"04d": "overcast",
	"04n": "overcast",
	"09d": "rain",
	"09n": "rain",
	"10d": "rain_day",
	"10n": "rain_night",
	"11d": "thunderstorm",
	"11n": "thunderstorm",
	"13d": "snow",
	"13n": "snow",
	"50d": "mist",
	"50n": "mist",
}

// IconName maps an OpenWeatherMap icon code like "01d" to a display
// asset name, "unknown" when unrecognized.
func IconName(code string) string {
	if name, ok := weatherIcons[code]; ok {
		return name
	}
	return "unknown"
}

// WeatherConfig configures an OpenWeatherMap source. APIKey may be a
// literal key or a ${VAR} environment reference; when empty the
// OPENWEATHER_API_KEY and LUMENBOARD_OPENWEATHER_API_KEY variables are
// consulted.
type WeatherConfig struct {
	Config
	APIKey   string `json:"api_key"`
	Location string `json:"location"`
	Units    string `json:"units"`
}

type WeatherSource struct {
	name    string
	cfg     WeatherConfig
	apiKey  string
	logger  logging.Logger
	httpc   *http.Client
	baseURL string
}

func NewWeatherSource(name string, cfg WeatherConfig, logger logging.Logger) *WeatherSource {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	if cfg.Location == "" {
		cfg.Location = "New York,US"
	}
	if cfg.Units == "" {
		cfg.Units = "imperial"
	}
	key := resolveEnv(cfg.APIKey)
	if key == "" {
		key = os.Getenv("OPENWEATHER_API_KEY")
	}
	if key == "" {
		key = os.Getenv("LUMENBOARD_OPENWEATHER_API_KEY")
	}
	return &WeatherSource{
		name:    name,
		cfg:     cfg,
		apiKey:  key,
		logger:  logger,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		baseURL: openWeatherURL,
	}
}

func (s *WeatherSource) Name() string { return s.name }
func (s *WeatherSource) Type() string { return "weather" }

func (s *WeatherSource) RefreshSeconds() int {
	if s.cfg.RefreshSeconds <= 0 {
		return 600
	}
	return s.cfg.RefreshSeconds
}

type owmResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// Fetch reads current conditions. Temperatures round to whole degrees,
// matching the resolution a 64 pixel wide panel can usefully show. The
// icon field is already translated to an asset name.
func (s *WeatherSource) Fetch(ctx context.Context) (map[string]interface{}, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("openweathermap api key not configured")
	}

	q := url.Values{}
	q.Set("q", s.cfg.Location)
	q.Set("appid", s.apiKey)
	q.Set("units", s.cfg.Units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweathermap returned status %d", resp.StatusCode)
	}

	var ow owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&ow); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}

	var cond struct {
		Main        string
		Description string
		Icon        string
	}
	if len(ow.Weather) > 0 {
		cond.Main = ow.Weather[0].Main
		cond.Description = ow.Weather[0].Description
		cond.Icon = ow.Weather[0].Icon
	}

	location := ow.Name
	if location == "" {
		location = s.cfg.Location
	}
	return map[string]interface{}{
		"temp":        math.Round(ow.Main.Temp),
		"feels_like":  math.Round(ow.Main.FeelsLike),
		"temp_min":    math.Round(ow.Main.TempMin),
		"temp_max":    math.Round(ow.Main.TempMax),
		"humidity":    float64(ow.Main.Humidity),
		"pressure":    float64(ow.Main.Pressure),
		"description": cond.Description,
		"main":        cond.Main,
		"icon":        IconName(cond.Icon),
		"icon_code":   cond.Icon,
		"wind_speed":  math.Round(ow.Wind.Speed),
		"wind_deg":    float64(ow.Wind.Deg),
		"location":    location,
		"country":     ow.Sys.Country,
	}, nil
}
