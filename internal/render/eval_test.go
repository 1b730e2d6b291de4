package render

import (
	"testing"
)

func testContext() map[string]interface{} {
	return map[string]interface{}{
		"stocks": map[string]interface{}{
			"AAPL": map[string]interface{}{
				"price":  float64(150.25),
				"change": float64(-2.5),
				"symbol": "AAPL",
			},
		},
		"weather": map[string]interface{}{
			"temp":    float64(72),
			"raining": true,
			"icon":    "clear_day",
		},
		"count": float64(5),
	}
}

func TestValue(t *testing.T) {
	e := NewEvaluator(testContext(), nil)

	cases := []struct {
		path   string
		want   interface{}
		wantOK bool
	}{
		{"count", float64(5), true},
		{"stocks.AAPL.price", float64(150.25), true},
		{"stocks.AAPL.symbol", "AAPL", true},
		{"weather.raining", true, true},
		{"stocks.MSFT.price", nil, false},
		{"stocks.AAPL.price.cents", nil, false}, // descend through a leaf
		{"missing", nil, false},
		{"", nil, false},
	}
	for _, tc := range cases {
		got, ok := e.Value(tc.path)
		if ok != tc.wantOK {
			t.Errorf("Value(%q) ok = %v, want %v", tc.path, ok, tc.wantOK)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("Value(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(testContext(), nil)

	cases := []struct {
		expr string
		want bool
	}{
		{"stocks.AAPL.change < 0", true},
		{"stocks.AAPL.change > 0", false},
		{"stocks.AAPL.price >= 150.25", true},
		{"stocks.AAPL.price <= 100", false},
		{"stocks.AAPL.price == 150.25", true},
		{"stocks.AAPL.price != 150.25", false},
		{"weather.temp > 70", true},
		{"weather.temp == 72", true},
		{"weather.raining == true", true},
		{"weather.raining != true", false},
		{"weather.raining == false", false},
		{"weather.icon == clear_day", true},
		{"weather.icon == 'clear_day'", true},
		{`weather.icon == "storm"`, false},
		{"weather.icon < cloudy", true}, // lexicographic ordering on strings
		// Absent path evaluates false.
		{"stocks.MSFT.price < 0", false},
		// Type mismatch evaluates false, never raises.
		{"stocks.AAPL.symbol < 5", false},
		{"weather.raining < true", false},
		// Malformed expressions evaluate false.
		{"", false},
		{"stocks.AAPL.change", false},
		{"< 5", false},
		{"stocks.AAPL.change ~ 5", false},
		// Whitespace tolerant.
		{"  stocks.AAPL.change   <   0  ", true},
	}
	for _, tc := range cases {
		if got := e.Evaluate(tc.expr); got != tc.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	e := NewEvaluator(testContext(), nil)
	for i := 0; i < 3; i++ {
		if !e.Evaluate("stocks.AAPL.change < 0") {
			t.Fatalf("iteration %d: result changed", i)
		}
	}
}

func TestCoerceLiteral(t *testing.T) {
	cases := []struct {
		in   string
		want interface{}
	}{
		{"true", true},
		{"FALSE", false},
		{"5", 5},
		{"-3", -3},
		{"2.5", 2.5},
		{"-0.5", -0.5},
		{"hello", "hello"},
		{"'quoted'", "quoted"},
		{`"double"`, "double"},
		{"1.2.3", "1.2.3"}, // dot present but not a float
	}
	for _, tc := range cases {
		if got := coerceLiteral(tc.in); got != tc.want {
			t.Errorf("coerceLiteral(%q) = %v (%T), want %v (%T)", tc.in, got, got, tc.want, tc.want)
		}
	}
}
