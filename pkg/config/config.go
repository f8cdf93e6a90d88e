// Package config holds the daemon settings. Values come from built-in
// defaults, then an optional YAML file, then command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ovs-container-lab/ovsd/pkg/bus"
	"github.com/ovs-container-lab/ovsd/pkg/notify"
	"github.com/ovs-container-lab/ovsd/pkg/ovs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultSocket       = bus.DefaultSocket
	DefaultNetifdSocket = notify.DefaultSocket
	DefaultVsctlPath    = ovs.DefaultVsctlPath
	DefaultLogLevel     = "notice"
)

// Config is the daemon configuration
type Config struct {
	Socket         string `yaml:"socket"`
	NetifdSocket   string `yaml:"netifd-socket"`
	VsctlPath      string `yaml:"ovs-vsctl"`
	LogLevel       string `yaml:"log-level"`
	Stderr         bool   `yaml:"stderr"`
	MetricsAddress string `yaml:"metrics-address"`

	ShowVersion bool `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Socket:       DefaultSocket,
		NetifdSocket: DefaultNetifdSocket,
		VsctlPath:    DefaultVsctlPath,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads a YAML file on top of the defaults
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse builds the configuration from the command line. Flags that were
// set explicitly win over the file named by --config.
func Parse(name string, args []string) (*Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	flags := Default()
	fs.StringVarP(&flags.Socket, "socket", "s", DefaultSocket, "Path to the bus socket")
	fs.StringVar(&flags.NetifdSocket, "netifd-socket", DefaultNetifdSocket, "Path to the netifd socket notifications are sent to")
	fs.StringVar(&flags.VsctlPath, "ovs-vsctl", DefaultVsctlPath, "Path to the ovs-vsctl binary")
	fs.StringVarP(&flags.LogLevel, "log-level", "l", DefaultLogLevel, "Log level: crit, warning, notice, info, debug or 0-4")
	fs.BoolVarP(&flags.Stderr, "stderr", "S", false, "Log to stderr instead of syslog")
	fs.StringVar(&flags.MetricsAddress, "metrics-address", "", "Address to serve prometheus metrics on, empty disables")
	fs.BoolVarP(&flags.ShowVersion, "version", "v", false, "Print version and exit")
	configPath := fs.String("config", "", "Path to a YAML configuration file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "socket":
			cfg.Socket = flags.Socket
		case "netifd-socket":
			cfg.NetifdSocket = flags.NetifdSocket
		case "ovs-vsctl":
			cfg.VsctlPath = flags.VsctlPath
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "stderr":
			cfg.Stderr = flags.Stderr
		case "metrics-address":
			cfg.MetricsAddress = flags.MetricsAddress
		}
	})
	cfg.ShowVersion = flags.ShowVersion

	if cfg.ShowVersion {
		return cfg, nil
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Socket == "" {
		return errors.New("socket path must not be empty")
	}
	if c.NetifdSocket == "" {
		return errors.New("netifd socket path must not be empty")
	}
	if c.VsctlPath == "" {
		return errors.New("ovs-vsctl path must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Syslog style levels accepted by --log-level, in numeric order
var levels = []struct {
	name  string
	level logrus.Level
}{
	{name: "crit", level: logrus.ErrorLevel},
	{name: "warning", level: logrus.WarnLevel},
	{name: "notice", level: logrus.InfoLevel},
	{name: "info", level: logrus.InfoLevel},
	{name: "debug", level: logrus.DebugLevel},
}

// ParseLevel maps a level name or number to a logrus level. Numbers above
// the highest level select debug.
func ParseLevel(s string) (logrus.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid log level %d", n)
		}
		if n >= len(levels) {
			n = len(levels) - 1
		}
		return levels[n].level, nil
	}

	for _, l := range levels {
		if l.name == s {
			return l.level, nil
		}
	}

	level, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
