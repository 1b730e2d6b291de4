package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lumenboard/lumenboard/internal/canvas"
	"github.com/lumenboard/lumenboard/internal/layout"
	"github.com/lumenboard/lumenboard/internal/logging"
	"github.com/lumenboard/lumenboard/internal/manager"
	"github.com/lumenboard/lumenboard/internal/output"
	"github.com/lumenboard/lumenboard/internal/pixoo"
	"github.com/lumenboard/lumenboard/internal/render"
	"github.com/lumenboard/lumenboard/internal/web"
)

const version = "1.0.0"

const usage = `lumenboard - layout renderer for Pixoo 64 displays

Usage: lumenboard <command> [flags]

Commands:
  version     Print the version
  discover    Find Pixoo devices on the local network
  test        Test the connection to a device
  brightness  Set display brightness (0-100)
  on          Turn the display on
  off         Turn the display off
  clear       Fill the display with a solid color
  render      Render a layout once and send or save it
  live        Fetch data, render a layout, send or save it
  fetch       Fetch data from configured sources and print it
  demo        Render a built-in demo frame
  qr          Show a QR code on the display
  serve       Run the display pipeline with the admin server
  status      Print device status

Run 'lumenboard <command> -h' for command flags.
`

// commonOpts are the flags shared by the device-facing commands.
type commonOpts struct {
	ip        string
	configDir string
	assetsDir string
	debug     bool
	stdioLog  string
}

func (o *commonOpts) register(fs *flag.FlagSet) {
	fs.StringVar(&o.ip, "ip", "", "device IP address (auto-discover when empty)")
	fs.StringVar(&o.configDir, "config-dir", "config", "configuration directory")
	fs.StringVar(&o.assetsDir, "assets", "assets", "image assets directory")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging to ./lumenboard-debug.log")
	fs.StringVar(&o.stdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file; also via LUMENBOARD_STDIO_LOG")
}

// setup applies the stdio redirect and builds the logger.
func (o *commonOpts) setup() logging.Logger {
	logPath := o.stdioLog
	if logPath == "" {
		logPath = os.Getenv("LUMENBOARD_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger logging.Logger = logging.NoopLogger{}
	if o.debug {
		f, err := os.OpenFile("./lumenboard-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			logger = logging.NewWriterLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}
	return logger
}

// connect resolves a device client from -ip or discovery and verifies
// it answers.
func (o *commonOpts) connect(ctx context.Context, logger logging.Logger) (*pixoo.Client, error) {
	ip := o.ip
	if ip == "" {
		disc := pixoo.NewDiscoverer(o.configDir, logger)
		found, err := disc.Discover(ctx)
		if err != nil {
			return nil, err
		}
		ip = found
	}
	client := pixoo.NewClient(ip, logger)
	if !client.Ping(ctx) {
		return nil, fmt.Errorf("pixoo at %s not responding", ip)
	}
	return client, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "version":
		fmt.Println("lumenboard", version)
	case "discover":
		err = cmdDiscover(ctx, os.Args[2:])
	case "test":
		err = cmdTest(ctx, os.Args[2:])
	case "brightness":
		err = cmdBrightness(ctx, os.Args[2:])
	case "on":
		err = cmdScreen(ctx, os.Args[2:], true)
	case "off":
		err = cmdScreen(ctx, os.Args[2:], false)
	case "clear":
		err = cmdClear(ctx, os.Args[2:])
	case "render":
		err = cmdRender(ctx, os.Args[2:], false)
	case "live":
		err = cmdRender(ctx, os.Args[2:], true)
	case "fetch":
		err = cmdFetch(ctx, os.Args[2:])
	case "demo":
		err = cmdDemo(ctx, os.Args[2:])
	case "qr":
		err = cmdQR(ctx, os.Args[2:])
	case "serve":
		err = cmdServe(ctx, os.Args[2:])
	case "status":
		err = cmdStatus(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func cmdDiscover(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	save := fs.Bool("save", false, "save the first discovered device to device.json")
	_ = fs.Parse(args)
	logger := opts.setup()

	disc := pixoo.NewDiscoverer(opts.configDir, logger)
	fmt.Println("Scanning for Pixoo devices...")
	found := disc.Scan(ctx)
	if len(found) == 0 {
		return fmt.Errorf("no devices found")
	}
	for _, ip := range found {
		fmt.Println(" ", ip)
	}
	if *save {
		cfg := &pixoo.DeviceConfig{IPAddress: found[0], Brightness: 100}
		if err := pixoo.SaveDeviceConfig(opts.configDir, cfg); err != nil {
			return err
		}
		fmt.Println("Saved", found[0], "to", filepath.Join(opts.configDir, "device.json"))
	}
	return nil
}

func cmdTest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	_ = fs.Parse(args)
	logger := opts.setup()

	client, err := opts.connect(ctx, logger)
	if err != nil {
		return err
	}
	fmt.Println("Connected to Pixoo at", client.IP)

	info, err := client.DeviceInfo(ctx)
	if err != nil {
		fmt.Println("  (could not get device info:", err, ")")
		return nil
	}
	if id, ok := info["DeviceId"]; ok {
		fmt.Println("  Device ID:", id)
	}
	if b, ok := info["Brightness"]; ok {
		fmt.Printf("  Brightness: %v%%\n", b)
	}
	return nil
}

func cmdBrightness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("brightness", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lumenboard brightness [flags] <0-100>")
	}
	var level int
	if _, err := fmt.Sscanf(fs.Arg(0), "%d", &level); err != nil || level < 0 || level > 100 {
		return fmt.Errorf("brightness must be 0-100")
	}
	logger := opts.setup()

	client, err := opts.connect(ctx, logger)
	if err != nil {
		return err
	}
	if err := client.SetBrightness(ctx, level); err != nil {
		return err
	}
	fmt.Printf("Brightness set to %d%%\n", level)
	return nil
}

func cmdScreen(ctx context.Context, args []string, on bool) error {
	fs := flag.NewFlagSet("screen", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	_ = fs.Parse(args)
	logger := opts.setup()

	client, err := opts.connect(ctx, logger)
	if err != nil {
		return err
	}
	if err := client.SetScreenOn(ctx, on); err != nil {
		return err
	}
	if on {
		fmt.Println("Display turned on")
	} else {
		fmt.Println("Display turned off")
	}
	return nil
}

func cmdClear(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	colorHex := fs.String("color", "#000000", "fill color (hex)")
	_ = fs.Parse(args)
	logger := opts.setup()

	col, err := canvas.ParseColor(*colorHex)
	if err != nil {
		return err
	}
	client, err := opts.connect(ctx, logger)
	if err != nil {
		return err
	}
	if err := client.Clear(ctx, col); err != nil {
		return err
	}
	fmt.Println("Display cleared with color", *colorHex)
	return nil
}

// cmdRender renders a layout once. With live=true the configured data
// sources are fetched first; otherwise an optional -data file supplies
// the context.
func cmdRender(ctx context.Context, args []string, live bool) error {
	name := "render"
	if live {
		name = "live"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	outPath := fs.String("output", "", "save the frame as PNG instead of sending to the device")
	dataPath := fs.String("data", "", "JSON file with the data context (render only)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lumenboard %s [flags] <layout.json>", name)
	}
	logger := opts.setup()

	l, err := layout.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	var data map[string]interface{}
	switch {
	case live:
		mgr := manager.New(opts.configDir, "", opts.assetsDir, logger)
		if err := mgr.LoadDataSources(); err != nil {
			return err
		}
		if n := len(mgr.Sources().Names()); n > 0 {
			fmt.Printf("Fetching data from %d source(s)...\n", n)
			data = mgr.Sources().RefreshAll(ctx)
		} else {
			fmt.Println("No data sources configured, using empty data context")
		}
	case *dataPath != "":
		raw, err := os.ReadFile(*dataPath)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("invalid data file: %w", err)
		}
	}

	fmt.Println("Rendering layout:", l.Name)
	frame := render.New(opts.assetsDir, logger).Render(l, data)
	return outputFrame(ctx, &opts, logger, frame, *outPath)
}

// outputFrame saves the frame as a PNG or sends it to the device.
func outputFrame(ctx context.Context, opts *commonOpts, logger logging.Logger, frame *canvas.Canvas, outPath string) error {
	if outPath != "" {
		if err := frame.Save(outPath); err != nil {
			return err
		}
		fmt.Println("Saved to", outPath)
		return nil
	}
	client, err := opts.connect(ctx, logger)
	if err != nil {
		return fmt.Errorf("%w (use -output to save as an image instead)", err)
	}
	if err := client.SendCanvas(ctx, frame); err != nil {
		return err
	}
	fmt.Println("Sent to device at", client.IP)
	return nil
}

func cmdFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	outPath := fs.String("output", "", "save fetched data to a JSON file")
	_ = fs.Parse(args)
	logger := opts.setup()

	mgr := manager.New(opts.configDir, "", opts.assetsDir, logger)
	if err := mgr.LoadDataSources(); err != nil {
		return err
	}
	sources := mgr.Sources()
	if len(sources.Names()) == 0 {
		return fmt.Errorf("no data sources configured in %s", filepath.Join(opts.configDir, "datasources.json"))
	}

	var data map[string]interface{}
	if source := fs.Arg(0); source != "" && source != "all" {
		fresh, err := sources.Refresh(ctx, source)
		if err != nil {
			return err
		}
		data = map[string]interface{}{source: fresh}
	} else {
		fmt.Printf("Fetching data from %d source(s)...\n", len(sources.Names()))
		data = sources.RefreshAll(ctx)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, raw, 0o644); err != nil {
			return err
		}
		fmt.Println("Data saved to", *outPath)
		return nil
	}
	fmt.Println(string(raw))
	return nil
}

func cmdDemo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	outPath := fs.String("output", "", "save the demo frame as PNG instead of sending")
	_ = fs.Parse(args)
	logger := opts.setup()

	demo := `{
		"name": "demo",
		"background": "#000033",
		"widgets": [
			{"type": "rect", "x": 0, "y": 0, "width": 64, "height": 10, "color": "#003264"},
			{"type": "line", "x1": 0, "y1": 10, "x2": 63, "y2": 10, "color": "#646464"},
			{"type": "text", "x": 14, "y": 2, "text": "LUMEN", "color": "#FFFFFF"},
			{"type": "rect", "x": 5, "y": 20, "width": 15, "height": 15, "color": "#FF0000"},
			{"type": "rect", "x": 25, "y": 20, "width": 15, "height": 15, "color": "#00FF00"},
			{"type": "rect", "x": 45, "y": 20, "width": 15, "height": 15, "color": "#0000FF"},
			{"type": "text", "x": 5, "y": 45, "text": "$123.45", "color": "#00FF64"},
			{"type": "clock", "x": 5, "y": 55, "format_24h": true, "color": "#FFFF00"}
		]
	}`
	l, err := layout.Parse([]byte(demo))
	if err != nil {
		return err
	}
	frame := render.New(opts.assetsDir, logger).Render(l, nil)
	return outputFrame(ctx, &opts, logger, frame, *outPath)
}

func cmdQR(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("qr", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	outPath := fs.String("output", "", "save the QR frame as PNG instead of sending")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lumenboard qr [flags] <payload>")
	}
	logger := opts.setup()

	frame, err := render.BuildQRCanvas(fs.Arg(0))
	if err != nil {
		return err
	}
	return outputFrame(ctx, &opts, logger, frame, *outPath)
}

func cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	listen := fs.String("listen", "", "admin server address (default :8080, or LUMENBOARD_LISTEN)")
	noDevice := fs.Bool("no-device", false, "run without connecting to a device")
	mirror := fs.String("mirror", "", "also write every frame to this PNG file")
	useFB := fs.Bool("framebuffer", false, "also mirror frames to the Linux framebuffer")
	_ = fs.Parse(args)
	if fs.NArg() > 1 {
		return fmt.Errorf("usage: lumenboard serve [flags] [layout.json]")
	}
	logger := opts.setup()

	cfg, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}

	mgr := manager.New(opts.configDir, filepath.Join(opts.configDir, "layouts"), opts.assetsDir, logger)
	if fs.NArg() == 1 {
		if err := mgr.LoadLayout(fs.Arg(0)); err != nil {
			return err
		}
	} else if err := mgr.RestoreLayout(); err != nil {
		logger.Errorf("main", "restore layout: %v", err)
	}
	if err := mgr.LoadDataSources(); err != nil {
		return err
	}

	if !*noDevice {
		if err := mgr.Connect(ctx, opts.ip); err != nil {
			return fmt.Errorf("%w (use -no-device to run without one)", err)
		}
		fmt.Println("Connected to Pixoo at", mgr.Device().IP)
	}
	if *mirror != "" {
		mgr.AddSink(&output.FileSink{Path: *mirror})
	}
	if *useFB {
		sink, err := output.OpenFramebuffer("", logger)
		if err != nil {
			return err
		}
		mgr.AddSink(sink)
	}

	srv := web.NewHTTPServer(cfg.ListenAddr, mgr, logger)
	srv.DevMode = cfg.DevMode
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Stop()
	fmt.Println("Admin server listening on", srv.ListenAddr())

	mgr.Start(ctx)
	defer mgr.Stop()

	<-ctx.Done()
	fmt.Println("Shutting down")
	return nil
}

func cmdStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	var opts commonOpts
	opts.register(fs)
	_ = fs.Parse(args)
	logger := opts.setup()

	client, err := opts.connect(ctx, logger)
	if err != nil {
		return err
	}
	info, err := client.DeviceInfo(ctx)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("Device:", client.IP)
	fmt.Println(string(raw))
	return nil
}
