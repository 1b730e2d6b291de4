// Package layout defines the declarative screen description: a named
// widget list rendered in order onto the 64x64 panel.
package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// ColorCondition pairs a predicate with the color used when it matches.
type ColorCondition struct {
	When  string `json:"when"`
	Color string `json:"color"`
}

// Color is either a literal hex color or an ordered conditional list with
// a default. In JSON a plain string is the literal form; an object with
// "conditions"/"default" is the conditional form.
type Color struct {
	Literal    string
	Conditions []ColorCondition
	Default    string
}

// DefaultColor is used when a widget omits its color entirely.
var DefaultColor = Color{Literal: "#FFFFFF"}

func (c Color) IsConditional() bool { return len(c.Conditions) > 0 || c.Literal == "" }

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Color{Literal: s}
		return nil
	}
	var obj struct {
		Conditions []ColorCondition `json:"conditions"`
		Default    string           `json:"default"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("color must be a hex string or a conditional object: %w", err)
	}
	if obj.Default == "" {
		obj.Default = "#FFFFFF"
	}
	*c = Color{Conditions: obj.Conditions, Default: obj.Default}
	return nil
}

func (c Color) MarshalJSON() ([]byte, error) {
	if !c.IsConditional() {
		return json.Marshal(c.Literal)
	}
	return json.Marshal(struct {
		Conditions []ColorCondition `json:"conditions"`
		Default    string           `json:"default"`
	}{Conditions: c.Conditions, Default: c.Default})
}

// Widget is the closed union of drawable elements. Only the five types in
// this package implement it.
type Widget interface {
	ID() string
	Kind() string
	isWidget()
}

type TextWidget struct {
	Type       string `json:"type"`
	WidgetID   string `json:"id,omitempty"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Font       string `json:"font"`
	DataSource string `json:"data_source,omitempty"`
	Text       string `json:"text,omitempty"`
	Format     string `json:"format"`
	Color      Color  `json:"color"`
}

type RectWidget struct {
	Type     string `json:"type"`
	WidgetID string `json:"id,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Color    Color  `json:"color"`
	Filled   bool   `json:"filled"`
}

type LineWidget struct {
	Type     string `json:"type"`
	WidgetID string `json:"id,omitempty"`
	X1       int    `json:"x1"`
	Y1       int    `json:"y1"`
	X2       int    `json:"x2"`
	Y2       int    `json:"y2"`
	Color    Color  `json:"color"`
}

type ImageWidget struct {
	Type     string `json:"type"`
	WidgetID string `json:"id,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	// Src may embed {data.path} placeholders resolved at render time.
	Src    string `json:"src"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type ClockWidget struct {
	Type        string  `json:"type"`
	WidgetID    string  `json:"id,omitempty"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Font        string  `json:"font"`
	Format24h   bool    `json:"format_24h"`
	ShowSeconds bool    `json:"show_seconds"`
	// TimezoneOffset is the UTC offset in hours; fractional offsets like
	// +5.5 are valid.
	TimezoneOffset float64 `json:"timezone_offset"`
	AutoDST        bool    `json:"auto_dst"`
	Color          Color   `json:"color"`
}

func (w *TextWidget) isWidget()  {}
func (w *RectWidget) isWidget()  {}
func (w *LineWidget) isWidget()  {}
func (w *ImageWidget) isWidget() {}
func (w *ClockWidget) isWidget() {}

func (w *TextWidget) ID() string  { return w.WidgetID }
func (w *RectWidget) ID() string  { return w.WidgetID }
func (w *LineWidget) ID() string  { return w.WidgetID }
func (w *ImageWidget) ID() string { return w.WidgetID }
func (w *ClockWidget) ID() string { return w.WidgetID }

func (w *TextWidget) Kind() string  { return "text" }
func (w *RectWidget) Kind() string  { return "rect" }
func (w *LineWidget) Kind() string  { return "line" }
func (w *ImageWidget) Kind() string { return "image" }
func (w *ClockWidget) Kind() string { return "clock" }

// Widgets decodes a heterogeneous JSON array by dispatching on the "type"
// tag of each element.
type Widgets []Widget

func (ws *Widgets) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Widgets, 0, len(raws))
	for i, raw := range raws {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("widget %d: %w", i, err)
		}
		w, err := decodeWidget(tag.Type, raw)
		if err != nil {
			return fmt.Errorf("widget %d: %w", i, err)
		}
		out = append(out, w)
	}
	*ws = out
	return nil
}

func decodeWidget(kind string, raw json.RawMessage) (Widget, error) {
	switch kind {
	case "text":
		w := TextWidget{Font: "5x7", Format: "{value}", Color: DefaultColor}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &w, nil
	case "rect":
		w := RectWidget{Filled: true, Color: DefaultColor}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &w, nil
	case "line":
		w := LineWidget{Color: DefaultColor}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &w, nil
	case "image":
		var w ImageWidget
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &w, nil
	case "clock":
		w := ClockWidget{Font: "5x7", AutoDST: true, Color: DefaultColor}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &w, nil
	default:
		return nil, fmt.Errorf("unknown widget type %q", kind)
	}
}

// Layout is one full screen description. Widgets paint in list order;
// later widgets draw over earlier ones.
type Layout struct {
	Name           string  `json:"name"`
	Background     string  `json:"background"`
	RefreshSeconds int     `json:"refresh_seconds"`
	Widgets        Widgets `json:"widgets"`
}

func (l *Layout) UnmarshalJSON(data []byte) error {
	type alias Layout
	a := alias{Background: "#000000", RefreshSeconds: 60}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = Layout(a)
	return nil
}

// Widget returns the widget with the given id, or nil.
func (l *Layout) Widget(id string) Widget {
	for _, w := range l.Widgets {
		if w.ID() == id {
			return w
		}
	}
	return nil
}

// Load reads and decodes a layout JSON file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return Parse(data)
}

// Parse decodes a layout from JSON bytes.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return &l, nil
}
