// Command simulator is a fake Pixoo 64 device. It speaks the same HTTP
// command protocol on /post, keeps the last received frame, and exposes
// it at /frame.png so the renderer can be exercised without hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumenboard/lumenboard/internal/logging"
)

func main() {
	listenAddr := flag.String("listen", ":9080", "http listen address for the fake device")
	frameFile := flag.String("frame-file", "", "also write every received frame to this PNG file")
	scale := flag.Int("scale", 4, "magnification of the /frame.png preview")
	debug := flag.Bool("debug", false, "log received commands to stderr")
	flag.Parse()

	var logger logging.Logger = logging.NoopLogger{}
	if *debug {
		logger = logging.NewWriterLogger(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev := NewDevice(*frameFile, *scale, logger)
	if err := dev.Start(ctx, *listenAddr); err != nil {
		fmt.Println("simulator start error:", err)
		os.Exit(1)
	}

	fmt.Println("Pixoo simulator listening on", dev.Addr())
	fmt.Println("Preview: http://" + displayAddr(dev.Addr()) + "/frame.png")

	<-ctx.Done()
	_ = dev.Stop()
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if addr == "" {
		return "127.0.0.1:9080"
	}
	return addr
}
