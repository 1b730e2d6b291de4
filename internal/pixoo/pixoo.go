package pixoo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lumenboard/lumenboard/internal/canvas"
	"github.com/lumenboard/lumenboard/internal/logging"
)

const (
	// PanelSize is the pixel width and height of the Pixoo 64 matrix.
	PanelSize = canvas.Size

	defaultTimeout = 5 * time.Second

	// Channel indexes accepted by Channel/SetIndex.
	ChannelFaces      = 0
	ChannelCloud      = 1
	ChannelVisualizer = 2
	ChannelCustom     = 3
	ChannelBlack      = 4
)

// Client speaks the Pixoo 64 HTTP command protocol. All commands POST a
// JSON body to /post on port 80 and read back a JSON object whose
// error_code field must be zero.
type Client struct {
	IP     string
	Logger logging.Logger

	httpc   *http.Client
	baseURL string
}

// DeviceError is a non-zero error_code reported by the device itself, as
// opposed to a transport failure.
type DeviceError struct {
	Code    int
	Command string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device rejected %s with error_code %d", e.Command, e.Code)
}

func NewClient(ip string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &Client{
		IP:      ip,
		Logger:  logger,
		httpc:   &http.Client{Timeout: defaultTimeout},
		baseURL: fmt.Sprintf("http://%s:80/post", ip),
	}
}

// SetHTTPClient swaps the underlying transport. Tests point it at an
// httptest server.
func (c *Client) SetHTTPClient(httpc *http.Client, baseURL string) {
	c.httpc = httpc
	if baseURL != "" {
		c.baseURL = baseURL
	}
}

// send posts one command and decodes the response. The command name
// travels in the "Command" key alongside the remaining payload fields.
func (c *Client) send(ctx context.Context, command string, payload map[string]interface{}) (map[string]interface{}, error) {
	body := map[string]interface{}{"Command": command}
	for k, v := range payload {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", command, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", command, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to pixoo at %s: %w", c.IP, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pixoo at %s returned status %d for %s", c.IP, resp.StatusCode, command)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", command, err)
	}
	if code, ok := data["error_code"].(float64); ok && code != 0 {
		return nil, &DeviceError{Code: int(code), Command: command}
	}
	return data, nil
}

// DeviceInfo returns the device's full configuration snapshot, including
// DeviceName, Brightness and the active channel.
func (c *Client) DeviceInfo(ctx context.Context) (map[string]interface{}, error) {
	return c.send(ctx, "Channel/GetAllConf", nil)
}

// SetBrightness clamps level to 0..100 and applies it.
func (c *Client) SetBrightness(ctx context.Context, level int) error {
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	_, err := c.send(ctx, "Channel/SetBrightness", map[string]interface{}{"Brightness": level})
	return err
}

func (c *Client) Brightness(ctx context.Context) (int, error) {
	info, err := c.DeviceInfo(ctx)
	if err != nil {
		return 0, err
	}
	if b, ok := info["Brightness"].(float64); ok {
		return int(b), nil
	}
	return 100, nil
}

func (c *Client) SetScreenOn(ctx context.Context, on bool) error {
	v := 0
	if on {
		v = 1
	}
	_, err := c.send(ctx, "Channel/OnOffScreen", map[string]interface{}{"OnOff": v})
	return err
}

// SetChannel switches the display channel. Use the Channel* constants.
func (c *Client) SetChannel(ctx context.Context, channel int) error {
	_, err := c.send(ctx, "Channel/SetIndex", map[string]interface{}{"SelectIndex": channel})
	return err
}

// ResetGif clears the device's HTTP GIF buffer. It must run before every
// frame upload or the device eventually refuses new PicIDs.
func (c *Client) ResetGif(ctx context.Context) error {
	_, err := c.send(ctx, "Draw/ResetHttpGifId", nil)
	return err
}

// SendCanvas pushes a full frame to the display as a single-frame
// animation. The pixel payload is the flat row-major RGB byte sequence,
// base64 encoded.
func (c *Client) SendCanvas(ctx context.Context, cv *canvas.Canvas) error {
	raw := cv.Bytes()
	if len(raw) != PanelSize*PanelSize*3 {
		return fmt.Errorf("expected %d pixel bytes, got %d", PanelSize*PanelSize*3, len(raw))
	}
	if err := c.ResetGif(ctx); err != nil {
		return err
	}
	_, err := c.send(ctx, "Draw/SendHttpGif", map[string]interface{}{
		"PicNum":    1,
		"PicWidth":  PanelSize,
		"PicOffset": 0,
		"PicID":     0,
		"PicSpeed":  1000,
		"PicData":   base64.StdEncoding.EncodeToString(raw),
	})
	return err
}

// Clear fills the display with a solid color.
func (c *Client) Clear(ctx context.Context, col canvas.RGB) error {
	return c.SendCanvas(ctx, canvas.New(col))
}

// Ping reports whether the device answers its info command.
func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.DeviceInfo(ctx)
	return err == nil
}
