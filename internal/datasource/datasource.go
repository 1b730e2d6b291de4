// Package datasource fetches external data (stocks, weather, arbitrary
// REST endpoints) into the flat context maps that layouts bind against.
package datasource

import (
	"context"
	"math"
	"os"
	"strings"
)

const defaultRefreshSeconds = 300

// Source is one named external data feed. Fetch returns the fresh
// context fragment that will be exposed to layouts under the source's
// name.
type Source interface {
	Name() string
	Type() string
	RefreshSeconds() int
	Fetch(ctx context.Context) (map[string]interface{}, error)
}

// Config is the common envelope every source entry in datasources.json
// carries. Type-specific fields live beside it and are re-decoded by the
// factories.
type Config struct {
	Type           string `json:"type"`
	RefreshSeconds int    `json:"refresh_seconds"`
	Enabled        *bool  `json:"enabled"`
}

func (c Config) enabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c Config) refreshSeconds() int {
	if c.RefreshSeconds <= 0 {
		return defaultRefreshSeconds
	}
	return c.RefreshSeconds
}

// resolveEnv expands a ${VAR} reference to the environment value, and
// returns any other string unchanged.
func resolveEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
