package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/example/panbox/internal/status"
)

const (
	configDirName  = "panbox"
	configFileName = "config.yaml"

	defaultCallTimeout     = 25 * time.Second
	defaultRefreshInterval = 30 * time.Second
)

// Transport names the mechanism used to reach the backend.
type Transport string

const (
	TransportDBus Transport = "dbus"
	TransportIPC  Transport = "ipc"
)

// Config represents the client configuration file. Values from the
// environment take precedence over the file.
type Config struct {
	Transport          Transport `yaml:"transport"`
	ServiceAddr        string    `yaml:"service_addr"`
	CallTimeoutStr     string    `yaml:"call_timeout"`
	Report             string    `yaml:"report"`
	Color              *bool     `yaml:"color"`
	MountPoint         string    `yaml:"mount_point"`
	RefreshIntervalStr string    `yaml:"refresh_interval"`
	Token              string    `yaml:"token"`
	Debug              bool      `yaml:"debug"`

	CallTimeout     time.Duration `yaml:"-"` // Parsed from CallTimeoutStr
	RefreshInterval time.Duration `yaml:"-"` // Parsed from RefreshIntervalStr
	Policy          status.Policy `yaml:"-"` // Parsed from Report
	// Secret is only taken from the environment and never persisted.
	Secret string `yaml:"-"`
}

// Path returns the resolved configuration file path.
func Path() (string, error) {
	if custom := strings.TrimSpace(os.Getenv("PANBOX_CONFIG_PATH")); custom != "" {
		return custom, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config dir: %w", err)
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// Load reads the configuration at path, or at Path() when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		resolved, err := Path()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return loadWith(path, os.Getenv)
}

func loadWith(path string, getenv func(string) string) (*Config, error) {
	var cfg Config

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("unable to parse YAML config file: %w", err)
		}
	}

	applyEnv(&cfg, getenv)
	if err := validateAndPrepare(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(c *Config, getenv func(string) string) {
	c.Transport = Transport(firstNonEmpty(getenv("PANBOX_TRANSPORT"), string(c.Transport)))
	c.ServiceAddr = firstNonEmpty(getenv("PANBOX_SERVICE_ADDR"), c.ServiceAddr)
	c.Token = firstNonEmpty(getenv("PANBOX_SERVICE_TOKEN"), c.Token)
	c.MountPoint = firstNonEmpty(getenv("PANBOX_MOUNT_POINT"), c.MountPoint)
	c.Secret = strings.TrimSpace(getenv("PANBOX_SECRET"))

	if debug, err := strconv.ParseBool(strings.TrimSpace(getenv("PANBOX_DEBUG"))); err == nil && debug {
		c.Debug = true
	}
	if getenv("NO_COLOR") != "" {
		off := false
		c.Color = &off
	}
}

// validateAndPrepare checks values and fills in derived fields and defaults.
func validateAndPrepare(c *Config) error {
	switch c.Transport {
	case "":
		c.Transport = defaultTransport()
	case TransportDBus, TransportIPC:
	default:
		return fmt.Errorf("transport must be %q or %q, got %q", TransportDBus, TransportIPC, c.Transport)
	}

	var err error
	if c.CallTimeout, err = parseDuration(c.CallTimeoutStr, defaultCallTimeout); err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}
	if c.RefreshInterval, err = parseDuration(c.RefreshIntervalStr, defaultRefreshInterval); err != nil {
		return fmt.Errorf("invalid refresh_interval: %w", err)
	}

	if c.Policy, err = status.ParsePolicy(c.Report); err != nil {
		return err
	}

	if c.Color == nil {
		on := true
		c.Color = &on
	}

	if c.MountPoint == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("determine home dir for mount_point: %w", err)
		}
		c.MountPoint = filepath.Join(home, "Panbox")
	}
	return nil
}

// UseColor reports whether coloured output is enabled.
func (c *Config) UseColor() bool {
	return c.Color == nil || *c.Color
}

func defaultTransport() Transport {
	if runtime.GOOS == "linux" {
		return TransportDBus
	}
	return TransportIPC
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
