package pixoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lumenboard/lumenboard/internal/logging"
)

const (
	discoveryPort    = 8888
	discoveryTimeout = 3 * time.Second
	httpScanTimeout  = 500 * time.Millisecond
	httpScanWorkers  = 50

	deviceConfigName = "device.json"
)

var discoveryMessage = []byte("divoom")

// DeviceConfig persists the last known device between runs so startup
// can skip the network scan.
type DeviceConfig struct {
	IPAddress  string `json:"ip_address"`
	DeviceID   int    `json:"device_id,omitempty"`
	Brightness int    `json:"brightness,omitempty"`
}

// LoadDeviceConfig reads device.json from configDir. A missing or
// unparsable file is not an error; it just means nothing is saved.
func LoadDeviceConfig(configDir string) *DeviceConfig {
	raw, err := os.ReadFile(filepath.Join(configDir, deviceConfigName))
	if err != nil {
		return nil
	}
	var cfg DeviceConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil
	}
	return &cfg
}

func SaveDeviceConfig(configDir string, cfg *DeviceConfig) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, deviceConfigName), raw, 0o644)
}

// Discoverer finds Pixoo devices on the local network, preferring a
// saved configuration over scanning.
type Discoverer struct {
	ConfigDir string
	Logger    logging.Logger

	// ScanBase overrides the local /24 prefix for the HTTP sweep, for
	// tests. Empty means autodetect.
	ScanBase string

	// probe checks a single IP over HTTP and broadcast collects UDP
	// replies; tests replace both.
	probe     func(ctx context.Context, ip string) bool
	broadcast func() []string
}

func NewDiscoverer(configDir string, logger logging.Logger) *Discoverer {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	d := &Discoverer{ConfigDir: configDir, Logger: logger}
	d.probe = d.probeHTTP
	d.broadcast = d.scanUDP
	return d
}

// Discover returns the device IP, consulting the saved config first and
// scanning the network otherwise. A freshly scanned IP is persisted so
// the next run connects immediately.
func (d *Discoverer) Discover(ctx context.Context) (string, error) {
	if cfg := LoadDeviceConfig(d.ConfigDir); cfg != nil && cfg.IPAddress != "" {
		d.Logger.Infof("discovery", "using configured device at %s", cfg.IPAddress)
		return cfg.IPAddress, nil
	}

	d.Logger.Infof("discovery", "no configured device, scanning network")
	found := d.Scan(ctx)
	if len(found) == 0 {
		return "", fmt.Errorf("no pixoo devices found")
	}

	ip := found[0]
	if err := SaveDeviceConfig(d.ConfigDir, &DeviceConfig{IPAddress: ip, Brightness: 100}); err != nil {
		d.Logger.Errorf("discovery", "save device config: %v", err)
	}
	return ip, nil
}

// Scan tries the UDP broadcast first and falls back to sweeping the
// local /24 over HTTP, which is slower but works on networks that drop
// broadcast traffic.
func (d *Discoverer) Scan(ctx context.Context) []string {
	if found := d.broadcast(); len(found) > 0 {
		return found
	}
	d.Logger.Infof("discovery", "broadcast found nothing, sweeping subnet over http")
	return d.scanHTTP(ctx)
}

// scanUDP broadcasts the divoom discovery datagram and collects replies
// until the listen window closes.
func (d *Discoverer) scanUDP() []string {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		d.Logger.Errorf("discovery", "udp listen: %v", err)
		return nil
	}
	defer conn.Close()

	dest := &net.UDPAddr{IP: net.IPv4bcast, Port: discoveryPort}
	if _, err := conn.WriteToUDP(discoveryMessage, dest); err != nil {
		d.Logger.Errorf("discovery", "udp broadcast: %v", err)
		return nil
	}
	_ = conn.SetReadDeadline(time.Now().Add(discoveryTimeout))

	var found []string
	buf := make([]byte, 1024)
	for {
		_, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return found
		}
		ip := addr.IP.String()
		d.Logger.Infof("discovery", "device answered broadcast from %s", ip)
		found = append(found, ip)
	}
}

// scanHTTP probes every host of the local /24 in parallel.
func (d *Discoverer) scanHTTP(ctx context.Context) []string {
	base := d.ScanBase
	if base == "" {
		base = localSubnet()
	}
	if base == "" {
		d.Logger.Errorf("discovery", "could not determine local subnet")
		return nil
	}

	ips := make(chan string)
	results := make(chan string, 254)
	var wg sync.WaitGroup
	for i := 0; i < httpScanWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ip := range ips {
				if d.probe(ctx, ip) {
					results <- ip
				}
			}
		}()
	}

	for i := 1; i < 255; i++ {
		ips <- fmt.Sprintf("%s.%d", base, i)
	}
	close(ips)
	wg.Wait()
	close(results)

	var found []string
	for ip := range results {
		d.Logger.Infof("discovery", "found pixoo at %s", ip)
		found = append(found, ip)
	}
	return found
}

// probeHTTP sends the cheap Channel/GetIndex command and treats any
// response carrying an error_code field as a Pixoo answering.
func (d *Discoverer) probeHTTP(ctx context.Context, ip string) bool {
	ctx, cancel := context.WithTimeout(ctx, httpScanTimeout)
	defer cancel()

	body := bytes.NewReader([]byte(`{"Command":"Channel/GetIndex"}`))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://%s:80/post", ip), body)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false
	}
	_, ok := data["error_code"]
	return ok
}

// localSubnet derives the /24 prefix of the interface routing to the
// internet, without sending any packets.
func localSubnet() string {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()
	host, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return ""
	}
	return strings.Join(parts[:3], ".")
}
