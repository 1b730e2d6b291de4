// Package manager coordinates the display pipeline: data sources feed a
// context, the renderer turns layout plus context into a frame, and the
// frame goes to the device and any local mirrors.
package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lumenboard/lumenboard/internal/canvas"
	"github.com/lumenboard/lumenboard/internal/datasource"
	"github.com/lumenboard/lumenboard/internal/layout"
	"github.com/lumenboard/lumenboard/internal/logging"
	"github.com/lumenboard/lumenboard/internal/output"
	"github.com/lumenboard/lumenboard/internal/pixoo"
	"github.com/lumenboard/lumenboard/internal/render"
	"github.com/lumenboard/lumenboard/internal/scheduler"
	"github.com/lumenboard/lumenboard/internal/state"
)

const layoutRefreshJob = "layout_refresh"

// Status is the admin API snapshot of the whole pipeline.
type Status struct {
	DeviceConnected bool                      `json:"device_connected"`
	DeviceIP        string                    `json:"device_ip,omitempty"`
	LayoutLoaded    bool                      `json:"layout_loaded"`
	LayoutName      string                    `json:"layout_name,omitempty"`
	DataSources     []datasource.SourceStatus `json:"data_sources"`
	SchedulerJobs   []scheduler.JobInfo       `json:"scheduler_jobs"`
	LastRender      time.Time                 `json:"last_render,omitempty"`
	LastSendError   string                    `json:"last_send_error,omitempty"`
}

// DisplayManager owns the device connection, the active layout and the
// periodic refresh jobs. All methods are safe for concurrent use; the
// web server and the scheduler both drive it.
type DisplayManager struct {
	ConfigDir string
	LayoutDir string

	logger    logging.Logger
	renderer  *render.Renderer
	sources   *datasource.Manager
	scheduler *scheduler.Scheduler
	settings  *state.Store

	mu          sync.RWMutex
	device      *pixoo.Client
	layout      *layout.Layout
	frame       *canvas.Canvas
	sinks       []output.Sink
	lastRender  time.Time
	lastSendErr string
}

func New(configDir, layoutDir, assetsDir string, logger logging.Logger) *DisplayManager {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	settings := state.NewStore(filepath.Join(configDir, "settings.json"))
	if err := settings.Load(); err != nil {
		logger.Errorf("manager", "load settings: %v", err)
	}
	return &DisplayManager{
		ConfigDir: configDir,
		LayoutDir: layoutDir,
		logger:    logger,
		renderer:  render.New(assetsDir, logger),
		sources:   datasource.NewManager(logger),
		scheduler: scheduler.New(logger),
		settings:  settings,
	}
}

func (m *DisplayManager) Sources() *datasource.Manager { return m.sources }

func (m *DisplayManager) Scheduler() *scheduler.Scheduler { return m.scheduler }

func (m *DisplayManager) Renderer() *render.Renderer { return m.renderer }

func (m *DisplayManager) Settings() *state.Store { return m.settings }

// AddSink registers a local mirror that receives every pushed frame.
func (m *DisplayManager) AddSink(s output.Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
}

// Connect attaches to the device at ip, or discovers one when ip is
// empty. The connection is verified with a ping.
func (m *DisplayManager) Connect(ctx context.Context, ip string) error {
	if ip == "" {
		disc := pixoo.NewDiscoverer(m.ConfigDir, m.logger)
		found, err := disc.Discover(ctx)
		if err != nil {
			return err
		}
		ip = found
	}

	client := pixoo.NewClient(ip, m.logger)
	if !client.Ping(ctx) {
		return fmt.Errorf("pixoo at %s not responding", ip)
	}
	m.logger.Infof("manager", "connected to pixoo at %s", ip)

	m.mu.Lock()
	m.device = client
	m.mu.Unlock()

	// Restore the brightness the user last picked, if any.
	if level := m.settings.Snapshot().Brightness; level >= 0 {
		if err := client.SetBrightness(ctx, level); err != nil {
			m.logger.Errorf("manager", "restore brightness: %v", err)
		}
	}
	return nil
}

// SetBrightness forwards the level to the device and remembers it so a
// restart restores it.
func (m *DisplayManager) SetBrightness(ctx context.Context, level int) error {
	device := m.Device()
	if device == nil {
		return fmt.Errorf("no device connected")
	}
	if err := device.SetBrightness(ctx, level); err != nil {
		return err
	}
	m.settings.SetBrightness(level)
	if err := m.settings.Save(); err != nil {
		m.logger.Errorf("manager", "save settings: %v", err)
	}
	return nil
}

func (m *DisplayManager) Device() *pixoo.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.device
}

// SetDevice injects an already built client. Tests and the simulator
// target use it to bypass discovery.
func (m *DisplayManager) SetDevice(c *pixoo.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device = c
}

// LoadLayout reads a layout file and makes it current. Relative names
// resolve against LayoutDir.
func (m *DisplayManager) LoadLayout(path string) error {
	name := path
	if !filepath.IsAbs(path) && m.LayoutDir != "" {
		if candidate := filepath.Join(m.LayoutDir, path); fileExists(candidate) {
			path = candidate
		}
	}
	l, err := layout.Load(path)
	if err != nil {
		return err
	}
	m.SetLayout(l)

	m.settings.SetActiveLayout(name)
	if err := m.settings.Save(); err != nil {
		m.logger.Errorf("manager", "save settings: %v", err)
	}
	return nil
}

// RestoreLayout loads the layout that was active when the process last
// ran. It is a no-op when none was recorded.
func (m *DisplayManager) RestoreLayout() error {
	name := m.settings.Snapshot().ActiveLayout
	if name == "" {
		return nil
	}
	return m.LoadLayout(name)
}

func (m *DisplayManager) SetLayout(l *layout.Layout) {
	m.mu.Lock()
	m.layout = l
	m.mu.Unlock()
	m.logger.Infof("manager", "layout %q active", l.Name)
	m.rescheduleLayoutRefresh(l)
}

func (m *DisplayManager) Layout() *layout.Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layout
}

// LoadDataSources reads datasources.json from the config directory.
func (m *DisplayManager) LoadDataSources() error {
	return m.sources.LoadConfig(filepath.Join(m.ConfigDir, "datasources.json"))
}

// Render produces a frame from the current layout and data context and
// keeps it as the current frame. Returns nil when no layout is loaded.
func (m *DisplayManager) Render() *canvas.Canvas {
	m.mu.RLock()
	l := m.layout
	m.mu.RUnlock()
	if l == nil {
		return nil
	}

	frame := m.renderer.Render(l, m.sources.Data())

	m.mu.Lock()
	m.frame = frame
	m.lastRender = time.Now()
	m.mu.Unlock()
	return frame
}

// Frame returns the most recently rendered frame, rendering one first
// if none exists yet.
func (m *DisplayManager) Frame() *canvas.Canvas {
	m.mu.RLock()
	frame := m.frame
	m.mu.RUnlock()
	if frame != nil {
		return frame
	}
	return m.Render()
}

// Push sends a frame to the device and every registered sink. A device
// send failure is recorded in the status but does not stop the mirrors.
func (m *DisplayManager) Push(ctx context.Context, frame *canvas.Canvas) error {
	if frame == nil {
		return fmt.Errorf("no frame to push")
	}

	m.mu.RLock()
	device := m.device
	sinks := make([]output.Sink, len(m.sinks))
	copy(sinks, m.sinks)
	m.mu.RUnlock()

	var sendErr error
	if device != nil {
		sendErr = device.SendCanvas(ctx, frame)
		if sendErr != nil {
			m.logger.Errorf("manager", "send frame: %v", sendErr)
		}
	}
	for _, s := range sinks {
		if err := s.Push(frame); err != nil {
			m.logger.Errorf("manager", "mirror frame: %v", err)
		}
	}

	m.mu.Lock()
	if sendErr != nil {
		m.lastSendErr = sendErr.Error()
	} else {
		m.lastSendErr = ""
	}
	m.mu.Unlock()
	return sendErr
}

// RenderAndPush is the pipeline tick: render the layout against the
// current context and push the result.
func (m *DisplayManager) RenderAndPush(ctx context.Context) error {
	frame := m.Render()
	if frame == nil {
		return fmt.Errorf("no layout loaded")
	}
	return m.Push(ctx, frame)
}

// Start schedules per-source refresh jobs plus the layout redraw job,
// performs the initial fetch, and pushes the first frame.
func (m *DisplayManager) Start(ctx context.Context) {
	for _, name := range m.sources.Names() {
		src, ok := m.sources.Source(name)
		if !ok {
			continue
		}
		interval := time.Duration(src.RefreshSeconds()) * time.Second
		name := name
		m.scheduler.AddJob("datasource_"+name, interval, func(ctx context.Context) {
			if _, err := m.sources.Refresh(ctx, name); err != nil {
				return
			}
			_ = m.RenderAndPush(ctx)
		})
	}

	m.mu.RLock()
	l := m.layout
	m.mu.RUnlock()
	if l != nil {
		m.rescheduleLayoutRefresh(l)
	}

	m.scheduler.Start(ctx)

	m.sources.RefreshAll(ctx)
	if l != nil {
		_ = m.RenderAndPush(ctx)
	}
	m.logger.Infof("manager", "display pipeline started")
}

func (m *DisplayManager) rescheduleLayoutRefresh(l *layout.Layout) {
	if l.RefreshSeconds <= 0 {
		m.scheduler.RemoveJob(layoutRefreshJob)
		return
	}
	interval := time.Duration(l.RefreshSeconds) * time.Second
	m.scheduler.AddJob(layoutRefreshJob, interval, func(ctx context.Context) {
		_ = m.RenderAndPush(ctx)
	})
}

func (m *DisplayManager) Stop() {
	m.scheduler.Stop()

	m.mu.RLock()
	sinks := make([]output.Sink, len(m.sinks))
	copy(sinks, m.sinks)
	m.mu.RUnlock()
	for _, s := range sinks {
		_ = s.Close()
	}
	m.logger.Infof("manager", "display pipeline stopped")
}

func (m *DisplayManager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := Status{
		DeviceConnected: m.device != nil,
		LayoutLoaded:    m.layout != nil,
		DataSources:     m.sources.Status(),
		SchedulerJobs:   m.scheduler.Jobs(),
		LastRender:      m.lastRender,
		LastSendError:   m.lastSendErr,
	}
	if m.device != nil {
		st.DeviceIP = m.device.IP
	}
	if m.layout != nil {
		st.LayoutName = m.layout.Name
	}
	return st
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
