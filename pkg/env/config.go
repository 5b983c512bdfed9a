// Package env provides the configuration shared by the binaries.
//
// Values come from, in increasing precedence, built-in defaults, the YAML
// file named by -config or COLDPLATE_CONFIG, environment variables and
// command line flags.
package env

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/coldplate.go/pkg/coldplate"
	"github.com/robotalks/coldplate.go/pkg/comm"
	"github.com/robotalks/coldplate.go/pkg/port"
	"github.com/robotalks/coldplate.go/pkg/telemetry/mqtt"
)

// DefaultDeviceType is the device type in telemetry topics.
const DefaultDeviceType = "coldplate"

// ErrNoPortConfigured indicates no port URL is known.
var ErrNoPortConfigured = errors.New("port not specified, use -port or COLDPLATE_PORT")

// Config provides common options to open and operate a device.
type Config struct {
	// Port is a port URL, e.g. /dev/ttyUSB0, tcp://host:4001 or sim://.
	Port string `yaml:"port"`
	// MQTTURL is the telemetry broker, e.g. mqtt://localhost:1883/lab/.
	// Telemetry is off when empty.
	MQTTURL    string  `yaml:"mqtt"`
	DeviceType string  `yaml:"device_type"`
	DeviceID   string  `yaml:"device_id"`
	Delta      float64 `yaml:"delta"`

	Settle comm.Settle      `yaml:"settle"`
	Timing coldplate.Timing `yaml:"timing"`

	ConfigFile string `yaml:"-"`
}

func builtinConfig() Config {
	return Config{
		DeviceType: DefaultDeviceType,
		Delta:      coldplate.DefaultDelta,
		Settle:     comm.DefaultSettle(),
		Timing:     coldplate.DefaultTiming(),
	}
}

var defaultConfig = builtinConfig()

func init() {
	applyEnv(&defaultConfig)
}

func applyEnv(c *Config) {
	if val := os.Getenv("COLDPLATE_PORT"); val != "" {
		c.Port = val
	}
	if val := os.Getenv("COLDPLATE_MQTT_URL"); val != "" {
		c.MQTTURL = val
	}
	if val := os.Getenv("COLDPLATE_ID"); val != "" {
		c.DeviceID = val
	}
	if val := os.Getenv("COLDPLATE_CONFIG"); val != "" {
		c.ConfigFile = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Port URL of the ColdPlate.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for telemetry.")
	flag.StringVar(&defaultConfig.DeviceID, "device-id", defaultConfig.DeviceID, "Device ID in telemetry topics, machine ID by default.")
	flag.StringVar(&defaultConfig.ConfigFile, "config", defaultConfig.ConfigFile, "YAML configuration file.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load reads a YAML configuration file. ${VAR} references are expanded
// from the environment and missing values take the built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	conf := builtinConfig()
	if err := yaml.Unmarshal([]byte(expanded), &conf); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	conf.setDefaults()
	return &conf, nil
}

func (c *Config) setDefaults() {
	builtin := builtinConfig()
	if c.DeviceType == "" {
		c.DeviceType = builtin.DeviceType
	}
	if c.Delta <= 0 {
		c.Delta = builtin.Delta
	}
	if c.Settle.Default == 0 {
		c.Settle.Default = builtin.Settle.Default
	}
	if c.Settle.Flash == 0 {
		c.Settle.Flash = builtin.Settle.Flash
	}
	if c.Settle.Reset == 0 {
		c.Settle.Reset = builtin.Settle.Reset
	}
	if c.Timing.Poll == 0 {
		c.Timing.Poll = builtin.Timing.Poll
	}
	if c.Timing.ConvergeTimeout == 0 {
		c.Timing.ConvergeTimeout = builtin.Timing.ConvergeTimeout
	}
	if c.Timing.HoldTick == 0 {
		c.Timing.HoldTick = builtin.Timing.HoldTick
	}
}

// LoadFile merges ConfigFile, if set, underneath the current values:
// a field still holding its built-in default takes the file's value.
func (c *Config) LoadFile() error {
	if c.ConfigFile == "" {
		return nil
	}
	file, err := Load(c.ConfigFile)
	if err != nil {
		return err
	}
	builtin := builtinConfig()
	if c.Port == builtin.Port {
		c.Port = file.Port
	}
	if c.MQTTURL == builtin.MQTTURL {
		c.MQTTURL = file.MQTTURL
	}
	if c.DeviceID == builtin.DeviceID {
		c.DeviceID = file.DeviceID
	}
	if c.DeviceType == builtin.DeviceType {
		c.DeviceType = file.DeviceType
	}
	if c.Delta == builtin.Delta {
		c.Delta = file.Delta
	}
	if c.Settle == builtin.Settle {
		c.Settle = file.Settle
	}
	if c.Timing == builtin.Timing {
		c.Timing = file.Timing
	}
	glog.V(1).Infof("loaded config %s", c.ConfigFile)
	return nil
}

// ID returns DeviceID, falling back to the machine ID.
func (c *Config) ID() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return MachineID()
}

// NewDevice opens the port and creates a Device using current config.
func (c *Config) NewDevice() (*coldplate.Device, error) {
	if c.Port == "" {
		return nil, ErrNoPortConfigured
	}
	p, err := port.Open(c.Port)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Port, err)
	}
	conn := comm.NewConn(p)
	conn.Settle = c.Settle
	dev := coldplate.New(conn)
	dev.Timing = c.Timing
	return dev, nil
}

// NewPublisher connects a telemetry Publisher. It returns nil when
// MQTTURL is empty.
func (c *Config) NewPublisher(ctx context.Context) (*mqtt.Publisher, error) {
	if c.MQTTURL == "" {
		return nil, nil
	}
	pub, err := mqtt.NewPublisher(c.MQTTURL, c.DeviceType, c.ID())
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}
	if err := pub.Connect(ctx); err != nil {
		return nil, err
	}
	return pub, nil
}

// NewQueue creates an unconnected MQTT queue for monitoring.
func (c *Config) NewQueue() (*mqtt.Queue, error) {
	if c.MQTTURL == "" {
		return nil, errors.New("MQTT URL not specified, use -mqtt or COLDPLATE_MQTT_URL")
	}
	return mqtt.NewQueueFromURL(c.MQTTURL)
}
