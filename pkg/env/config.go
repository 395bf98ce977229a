// Package env builds the comm layer of an application from configuration
// taken from defaults, CELLULAR_* environment variables, an optional YAML
// file and command line flags.
package env

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"

	"github.com/robotalks/cellular.go/pkg/comm"
	"github.com/robotalks/cellular.go/pkg/platform"
	"github.com/robotalks/cellular.go/pkg/uart"
)

// Config provides the options of a modem endpoint.
type Config struct {
	// ID names the device in trace records.
	ID string `yaml:"id"`

	Port     int `yaml:"port"`
	TxPin    int `yaml:"tx_pin"`
	RxPin    int `yaml:"rx_pin"`
	BaudRate int `yaml:"baud_rate"`
	// Device is the host serial device of Port, e.g. /dev/ttyUSB0.
	Device string `yaml:"device"`
	// Simulate replaces the device with an in-memory line.
	Simulate bool `yaml:"simulate"`
	// Echo makes the simulated line loop transmitted bytes back.
	Echo bool `yaml:"echo"`

	TickRateHz int `yaml:"tick_rate_hz"`

	// MQTTURL enables trace publishing, e.g. mqtt://host:1883/cellular/
	MQTTURL string `yaml:"mqtt_url"`
	// WebsocketAddr enables trace streaming on ws://<addr>/trace.
	WebsocketAddr string `yaml:"websocket_addr"`
}

var (
	defaultConfig = Config{
		Port:       2,
		TxPin:      17,
		RxPin:      16,
		BaudRate:   uart.DefaultBaudRate,
		TickRateHz: int(time.Second / platform.DefaultTickPeriod),
	}
	configFile string
)

func init() {
	applyEnv(&defaultConfig, os.Getenv)
	configFile = os.Getenv("CELLULAR_CONFIG")
	if defaultConfig.ID == "" {
		defaultConfig.ID = MachineID()
	}
}

func applyEnv(c *Config, getenv func(string) string) {
	str := func(name string, p *string) {
		if val := getenv(name); val != "" {
			*p = val
		}
	}
	num := func(name string, p *int) {
		if val := getenv(name); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*p = n
			} else {
				glog.Warningf("ignore %s=%q: %v", name, val, err)
			}
		}
	}
	boolean := func(name string, p *bool) {
		if val := getenv(name); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*p = b
			} else {
				glog.Warningf("ignore %s=%q: %v", name, val, err)
			}
		}
	}
	str("CELLULAR_ID", &c.ID)
	num("CELLULAR_PORT", &c.Port)
	num("CELLULAR_TX_PIN", &c.TxPin)
	num("CELLULAR_RX_PIN", &c.RxPin)
	num("CELLULAR_BAUD_RATE", &c.BaudRate)
	str("CELLULAR_DEVICE", &c.Device)
	boolean("CELLULAR_SIMULATE", &c.Simulate)
	boolean("CELLULAR_ECHO", &c.Echo)
	num("CELLULAR_TICK_RATE_HZ", &c.TickRateHz)
	str("CELLULAR_MQTT_URL", &c.MQTTURL)
	str("CELLULAR_WS_ADDR", &c.WebsocketAddr)
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file, flags take precedence.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Device ID in trace records.")
	flag.IntVar(&defaultConfig.Port, "port", defaultConfig.Port, "UART port number.")
	flag.IntVar(&defaultConfig.TxPin, "tx", defaultConfig.TxPin, "TX pin.")
	flag.IntVar(&defaultConfig.RxPin, "rx", defaultConfig.RxPin, "RX pin.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate.")
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device of the port.")
	flag.BoolVar(&defaultConfig.Simulate, "simulate", defaultConfig.Simulate, "Use an in-memory line.")
	flag.BoolVar(&defaultConfig.Echo, "echo", defaultConfig.Echo, "Echo transmitted bytes on the in-memory line.")
	flag.IntVar(&defaultConfig.TickRateHz, "tick-rate", defaultConfig.TickRateHz, "Scheduler tick rate in Hz.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for traces.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Listen address for websocket traces.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config from the config file, if any, with flags set
// explicitly applied on top.
func NewConfig() (*Config, error) {
	conf := defaultConfig
	if configFile == "" {
		return &conf, nil
	}
	if err := conf.Load(configFile); err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		overrideFlag(&conf, &defaultConfig, f.Name)
	})
	return &conf, nil
}

// MustNewConfig creates a Config and exits on error.
func MustNewConfig() *Config {
	conf, err := NewConfig()
	if err != nil {
		glog.Exitln(err)
	}
	return conf
}

func overrideFlag(dst, src *Config, name string) {
	switch name {
	case "id":
		dst.ID = src.ID
	case "port":
		dst.Port = src.Port
	case "tx":
		dst.TxPin = src.TxPin
	case "rx":
		dst.RxPin = src.RxPin
	case "baud":
		dst.BaudRate = src.BaudRate
	case "device":
		dst.Device = src.Device
	case "simulate":
		dst.Simulate = src.Simulate
	case "echo":
		dst.Echo = src.Echo
	case "tick-rate":
		dst.TickRateHz = src.TickRateHz
	case "mqtt":
		dst.MQTTURL = src.MQTTURL
	case "ws":
		dst.WebsocketAddr = src.WebsocketAddr
	}
}

// Load reads a YAML file over c. Keys absent from the file keep their values.
func (c *Config) Load(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the values are usable.
func (c *Config) Validate() error {
	if c.Port < 0 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.TxPin < int(uart.PinNoChange) || c.RxPin < int(uart.PinNoChange) {
		return fmt.Errorf("invalid pins tx=%d rx=%d", c.TxPin, c.RxPin)
	}
	if c.TickRateHz <= 0 || c.TickRateHz > 1000 {
		return fmt.Errorf("tick rate %dHz out of range 1-1000", c.TickRateHz)
	}
	if !c.Simulate && c.Device == "" {
		return fmt.Errorf("serial device must be specified unless simulating")
	}
	return nil
}

// Endpoint returns the endpoint configuration.
func (c *Config) Endpoint() comm.EndpointConfig {
	cfg := comm.NewEndpointConfig(uart.Port(c.Port), uart.Pin(c.TxPin), uart.Pin(c.RxPin))
	if c.BaudRate > 0 {
		cfg.UART.BaudRate = c.BaudRate
	}
	return cfg
}

// NewPlatform creates the Platform ticking at TickRateHz.
func (c *Config) NewPlatform() *platform.Platform {
	p := platform.New()
	if c.TickRateHz > 0 {
		p.TickPeriod = time.Second / time.Duration(c.TickRateHz)
	}
	return p
}

// NewDriver creates the UART driver on the serial device or, when
// simulating, on an in-memory bus.
func (c *Config) NewDriver() *uart.Driver {
	if c.Simulate {
		bus := uart.NewSimBus()
		bus.Echo = c.Echo
		return uart.NewDriver(bus)
	}
	return uart.NewDriver(&uart.SerialOpener{
		Devices: map[uart.Port]string{uart.Port(c.Port): c.Device},
	})
}

// NewTransport validates the config and creates the Transport.
func (c *Config) NewTransport() (*comm.Transport, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	t := comm.NewTransport(c.Endpoint(), c.NewDriver(), c.NewPlatform())
	t.Device = c.ID
	return t, nil
}

// MustNewTransport creates the Transport and exits on error.
func (c *Config) MustNewTransport() *comm.Transport {
	t, err := c.NewTransport()
	if err != nil {
		glog.Exitln(err)
	}
	return t
}
