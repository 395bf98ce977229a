package env

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cellular.go/pkg/trace"
	"github.com/robotalks/cellular.go/pkg/uart"
)

func TestDefaults(t *testing.T) {
	conf := Config{
		Port:       defaultConfig.Port,
		TxPin:      defaultConfig.TxPin,
		RxPin:      defaultConfig.RxPin,
		BaudRate:   defaultConfig.BaudRate,
		TickRateHz: defaultConfig.TickRateHz,
	}
	applyEnv(&conf, func(string) string { return "" })
	require.Equal(t, 2, conf.Port)
	require.Equal(t, 17, conf.TxPin)
	require.Equal(t, 16, conf.RxPin)
	require.Equal(t, 100, conf.TickRateHz)

	ep := conf.Endpoint()
	require.Equal(t, uart.Port(2), ep.Port)
	require.Equal(t, uart.Pin(17), ep.TxPin)
	require.Equal(t, uart.Pin(16), ep.RxPin)
	require.Equal(t, "115200-8N1", ep.UART.String())
	require.NotEmpty(t, newDefaultConfig(t).ID)
}

func newDefaultConfig(t *testing.T) *Config {
	conf, err := NewConfig()
	require.NoError(t, err)
	return conf
}

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		"CELLULAR_ID":           "modem-7",
		"CELLULAR_PORT":         "1",
		"CELLULAR_TX_PIN":       "4",
		"CELLULAR_RX_PIN":       "5",
		"CELLULAR_DEVICE":       "/dev/ttyUSB1",
		"CELLULAR_SIMULATE":     "true",
		"CELLULAR_ECHO":         "1",
		"CELLULAR_TICK_RATE_HZ": "not-a-number",
		"CELLULAR_MQTT_URL":     "mqtt://broker/cell/",
	}
	conf := Config{TickRateHz: 100}
	applyEnv(&conf, func(name string) string { return vars[name] })
	require.Equal(t, Config{
		ID:         "modem-7",
		Port:       1,
		TxPin:      4,
		RxPin:      5,
		Device:     "/dev/ttyUSB1",
		Simulate:   true,
		Echo:       true,
		TickRateHz: 100,
		MQTTURL:    "mqtt://broker/cell/",
	}, conf)
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "cellular-env")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "cellular.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("port: 1\ndevice: /dev/ttyS1\ntick_rate_hz: 1000\n"), 0644))
	conf := Config{Port: 2, TxPin: 17, RxPin: 16, TickRateHz: 100}
	require.NoError(t, conf.Load(path))
	require.Equal(t, 1, conf.Port)
	require.Equal(t, 17, conf.TxPin)
	require.Equal(t, "/dev/ttyS1", conf.Device)
	require.NoError(t, conf.Validate())
	require.Equal(t, time.Millisecond, conf.NewPlatform().TickPeriod)

	require.NoError(t, ioutil.WriteFile(path, []byte("bogus_key: 1\n"), 0644))
	require.Error(t, conf.Load(path))
	require.Error(t, conf.Load(filepath.Join(dir, "missing.yaml")))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		conf Config
		ok   bool
	}{
		{"simulated", Config{Port: 2, TxPin: 17, RxPin: 16, TickRateHz: 100, Simulate: true}, true},
		{"device", Config{Port: 2, TxPin: -1, RxPin: -1, TickRateHz: 100, Device: "/dev/ttyUSB0"}, true},
		{"no device", Config{Port: 2, TxPin: 17, RxPin: 16, TickRateHz: 100}, false},
		{"port", Config{Port: -1, TickRateHz: 100, Simulate: true}, false},
		{"pins", Config{TxPin: -2, TickRateHz: 100, Simulate: true}, false},
		{"tick rate", Config{TickRateHz: 0, Simulate: true}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.conf.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestNewTransport(t *testing.T) {
	conf := &Config{ID: "sim", Port: 2, TxPin: 17, RxPin: 16, BaudRate: 9600, TickRateHz: 100, Simulate: true}
	tr, err := conf.NewTransport()
	require.NoError(t, err)
	require.Equal(t, "sim", tr.Device)
	require.Equal(t, 9600, tr.Config.UART.BaudRate)
	_, ok := tr.Driver.Opener.(*uart.SimBus)
	require.True(t, ok)

	conf.Simulate = false
	_, err = conf.NewTransport()
	require.Error(t, err)
	conf.Device = "/dev/ttyUSB0"
	tr, err = conf.NewTransport()
	require.NoError(t, err)
	opener, ok := tr.Driver.Opener.(*uart.SerialOpener)
	require.True(t, ok)
	require.Equal(t, "/dev/ttyUSB0", opener.Devices[2])
}

func TestTracing(t *testing.T) {
	tr, err := (&Config{}).NewTracing()
	require.NoError(t, err)
	require.Nil(t, tr.Tracer())

	tr, err = (&Config{ID: "m", MQTTURL: "mqtt://localhost:1883/cell/", WebsocketAddr: "127.0.0.1:0"}).NewTracing()
	require.NoError(t, err)
	require.NotNil(t, tr.Publisher)
	require.NotNil(t, tr.Hub)
	require.Equal(t, "cell/m/tx", tr.Publisher.Topic(&trace.Record{Device: "m", Kind: trace.KindTx}))
	_, ok := tr.Tracer().(trace.Multi)
	require.True(t, ok)
}

func TestTracingRunStopsOnCancel(t *testing.T) {
	tr, err := (&Config{ID: "m", WebsocketAddr: "127.0.0.1:0"}).NewTracing()
	require.NoError(t, err)
	for _, tracing := range []*Tracing{tr, {}} {
		ctx, cancel := context.WithCancel(context.Background())
		doneCh := make(chan error, 1)
		go func(tracing *Tracing) { doneCh <- tracing.Run(ctx) }(tracing)
		time.Sleep(10 * time.Millisecond)
		cancel()
		select {
		case err := <-doneCh:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("tracing not stopped")
		}
	}
}
