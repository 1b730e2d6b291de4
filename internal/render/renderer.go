package render

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lumenboard/lumenboard/internal/canvas"
	"github.com/lumenboard/lumenboard/internal/font"
	"github.com/lumenboard/lumenboard/internal/layout"
	"github.com/lumenboard/lumenboard/internal/logging"
)

const imageCacheSize = 64

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// valuePattern matches the {value} token of a text format template, with
// an optional fixed-precision suffix like {value:.2f}.
var valuePattern = regexp.MustCompile(`\{value(?::\.(\d+)f)?\}`)

// Renderer turns a layout plus a data context into a 64x64 canvas. It is
// stateless across renders except for the image asset cache, which is
// concurrency-safe, so one Renderer may be shared.
type Renderer struct {
	AssetsDir string
	Logger    logging.Logger

	// Now supplies the clock instant; tests pin it. Nil means UTC wall
	// clock.
	Now func() time.Time

	images *lru.Cache[string, image.Image]
}

func New(assetsDir string, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	cache, err := lru.New[string, image.Image](imageCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &Renderer{AssetsDir: assetsDir, Logger: logger, images: cache}
}

// Render paints every widget of l in order onto a fresh canvas seeded
// with the layout background. A failure in one widget is logged with its
// identity and skipped; Render itself never fails.
func (r *Renderer) Render(l *layout.Layout, data map[string]interface{}) *canvas.Canvas {
	if data == nil {
		data = map[string]interface{}{}
	}
	eval := NewEvaluator(data, r.Logger)

	bg, err := canvas.ParseColor(l.Background)
	if err != nil {
		r.Logger.Errorf("render", "layout %q: %v, using black", l.Name, err)
		bg = canvas.RGB{}
	}
	c := canvas.New(bg)

	for i, w := range l.Widgets {
		if err := r.renderWidget(w, c, data, eval); err != nil {
			r.Logger.Errorf("render", "widget %d (%s id=%q): %v", i, w.Kind(), w.ID(), err)
		}
	}
	return c
}

// renderWidget is the per-widget failure boundary: errors and panics from
// one widget must not abort the remaining widgets.
func (r *Renderer) renderWidget(w layout.Widget, c *canvas.Canvas, data map[string]interface{}, eval *Evaluator) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	switch w := w.(type) {
	case *layout.TextWidget:
		return r.renderText(w, c, eval)
	case *layout.RectWidget:
		col, err := r.resolveColor(w.Color, eval)
		if err != nil {
			return err
		}
		c.DrawRect(w.X, w.Y, w.Width, w.Height, col, w.Filled)
		return nil
	case *layout.LineWidget:
		col, err := r.resolveColor(w.Color, eval)
		if err != nil {
			return err
		}
		c.DrawLine(w.X1, w.Y1, w.X2, w.Y2, col)
		return nil
	case *layout.ImageWidget:
		return r.renderImage(w, c, data)
	case *layout.ClockWidget:
		return r.renderClock(w, c, eval)
	default:
		return fmt.Errorf("unhandled widget type %T", w)
	}
}

// resolveColor evaluates a conditional color against the current context,
// first match wins, default otherwise. Literal colors resolve to
// themselves.
func (r *Renderer) resolveColor(col layout.Color, eval *Evaluator) (canvas.RGB, error) {
	if !col.IsConditional() {
		return canvas.ParseColor(col.Literal)
	}
	for _, cond := range col.Conditions {
		if eval.Evaluate(cond.When) {
			return canvas.ParseColor(cond.Color)
		}
	}
	def := col.Default
	if def == "" {
		def = "#FFFFFF"
	}
	return canvas.ParseColor(def)
}

func (r *Renderer) renderText(w *layout.TextWidget, c *canvas.Canvas, eval *Evaluator) error {
	var text string
	if w.DataSource != "" {
		value, ok := eval.Value(w.DataSource)
		if !ok {
			r.Logger.Infof("render", "text widget id=%q: data path %q not found, skipping", w.WidgetID, w.DataSource)
			return nil
		}
		text = formatValue(w.Format, value)
	} else {
		text = w.Text
	}
	if text == "" {
		return nil
	}

	col, err := r.resolveColor(w.Color, eval)
	if err != nil {
		return err
	}
	r.drawString(c, w.X, w.Y, text, w.Font, col)
	return nil
}

// drawString rasterizes text one glyph at a time. Missing glyphs are
// logged and skipped but still advance the cursor so surrounding
// characters keep their positions.
func (r *Renderer) drawString(c *canvas.Canvas, x, y int, text, fontName string, col canvas.RGB) {
	fnt, known := font.Get(fontName)
	if !known && fontName != "" {
		r.Logger.Errorf("render", "unknown font %q, using %s", fontName, fnt.Name)
	}
	for _, ch := range text {
		pixels, ok := fnt.RenderChar(ch, col)
		if !ok {
			r.Logger.Infof("render", "font %s has no glyph for %q", fnt.Name, ch)
		}
		for _, p := range pixels {
			c.SetPixel(x+p.DX, y+p.DY, p.Color)
		}
		x += fnt.Advance()
	}
}

// formatValue substitutes the resolved value into the format template.
// {value} inserts the value as text; {value:.Nf} fixes numeric output to
// N decimals.
func formatValue(format string, value interface{}) string {
	if format == "" {
		format = "{value}"
	}
	return valuePattern.ReplaceAllStringFunc(format, func(match string) string {
		sub := valuePattern.FindStringSubmatch(match)
		if sub[1] != "" {
			if f, ok := toFloat(value); ok {
				prec, _ := strconv.Atoi(sub[1])
				return strconv.FormatFloat(f, 'f', prec, 64)
			}
		}
		return stringify(value)
	})
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r *Renderer) renderImage(w *layout.ImageWidget, c *canvas.Canvas, data map[string]interface{}) error {
	src := substitutePlaceholders(w.Src, data)
	img, err := r.loadImage(src)
	if err != nil {
		// Missing assets degrade to a skipped widget, not a failed render.
		r.Logger.Errorf("render", "image widget id=%q: %v", w.WidgetID, err)
		return nil
	}
	c.DrawImage(w.X, w.Y, img, w.Width, w.Height)
	return nil
}

// substitutePlaceholders resolves {data.path} tokens in an image source
// string against the data context. Unresolved paths become empty strings.
func substitutePlaceholders(src string, data map[string]interface{}) string {
	eval := NewEvaluator(data, logging.NoopLogger{})
	return placeholderPattern.ReplaceAllStringFunc(src, func(match string) string {
		path := match[1 : len(match)-1]
		value, ok := eval.Value(path)
		if !ok {
			return ""
		}
		return stringify(value)
	})
}

// loadImage reads an image through the renderer's cache, trying the asset
// root first and the path as given second.
func (r *Renderer) loadImage(src string) (image.Image, error) {
	if img, ok := r.images.Get(src); ok {
		return img, nil
	}

	path := filepath.Join(r.AssetsDir, src)
	if _, err := os.Stat(path); err != nil {
		path = src
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("image not found: %s", src)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	r.images.Add(src, img)
	return img, nil
}

func (r *Renderer) renderClock(w *layout.ClockWidget, c *canvas.Canvas, eval *Evaluator) error {
	now := time.Now().UTC()
	if r.Now != nil {
		now = r.Now().UTC()
	}

	col, err := r.resolveColor(w.Color, eval)
	if err != nil {
		return err
	}
	r.drawString(c, w.X, w.Y, FormatClock(w, now), w.Font, col)
	return nil
}

// FormatClock produces the display string for a clock widget at the given
// UTC instant.
func FormatClock(w *layout.ClockWidget, nowUTC time.Time) string {
	offset := w.TimezoneOffset
	if w.AutoDST && inUSDaylightTime(nowUTC) {
		offset++
	}
	local := nowUTC.Add(time.Duration(offset * float64(time.Hour)))

	h, m, s := local.Hour(), local.Minute(), local.Second()
	if w.Format24h {
		if w.ShowSeconds {
			return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
		}
		return fmt.Sprintf("%02d:%02d", h, m)
	}

	// 12-hour mode: drop the leading zero and append a single lowercase
	// am/pm letter. Midnight and noon display as 12.
	suffix := "a"
	if h >= 12 {
		suffix = "p"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	if w.ShowSeconds {
		return fmt.Sprintf("%d:%02d:%02d%s", h12, m, s, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", h12, m, suffix)
}

// inUSDaylightTime applies the fixed United States rule: DST runs from
// 02:00 on the second Sunday of March to 02:00 on the first Sunday of
// November, computed in UTC for the instant's own year. Downstream
// layouts depend on this approximation; do not swap in a tzdata lookup.
func inUSDaylightTime(nowUTC time.Time) bool {
	year := nowUTC.Year()
	start := nthSunday(year, time.March, 2).Add(2 * time.Hour)
	end := nthSunday(year, time.November, 1).Add(2 * time.Hour)
	return !nowUTC.Before(start) && nowUTC.Before(end)
}

func nthSunday(year int, month time.Month, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysToSunday := (7 - int(first.Weekday())) % 7
	return first.AddDate(0, 0, daysToSunday+7*(n-1))
}
