package serial

import (
	"errors"
	"flag"

	goserial "github.com/albenik/go-serial/v2"
	"github.com/albenik/go-serial/v2/enumerator"
	"github.com/golang/glog"
)

// Config provides options to open the telemetry radio port.
type Config struct {
	// Port is the device path, e.g. /dev/ttyUSB0. When empty, the port
	// is located by USB VID/PID.
	Port string
	// VID/PID identify the radio by USB IDs when Port is empty.
	VID string
	PID string
	// Baud is the line rate.
	Baud int
}

// DefaultBaud matches common telemetry radios.
const DefaultBaud = 57600

var defaultConfig = Config{
	Baud: DefaultBaud,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "serial", defaultConfig.Port, "Serial port of the telemetry radio.")
	flag.StringVar(&defaultConfig.VID, "serial-vid", defaultConfig.VID, "USB vendor ID to locate the radio.")
	flag.StringVar(&defaultConfig.PID, "serial-pid", defaultConfig.PID, "USB product ID to locate the radio.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewReadWriter opens the radio port and wraps it with frame handling.
func (c *Config) NewReadWriter() (*ReadWriter, error) {
	name := c.Port
	if name == "" {
		var err error
		if name, err = findUSBPort(c.VID, c.PID); err != nil {
			return nil, err
		}
	}
	port, err := goserial.Open(name,
		goserial.WithBaudrate(c.Baud),
		goserial.WithDataBits(8),
		goserial.WithParity(goserial.NoParity),
		goserial.WithStopBits(goserial.OneStopBit),
	)
	if err != nil {
		return nil, err
	}
	glog.Infof("telemetry radio on %s at %d baud", name, c.Baud)
	return New(port), nil
}

func findUSBPort(vid, pid string) (string, error) {
	if vid == "" || pid == "" {
		return "", errors.New("no serial port specified")
	}
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}
	for _, port := range ports {
		if port.IsUSB && port.VID == vid && port.PID == pid {
			return port.Name, nil
		}
	}
	return "", errors.New("no matching USB serial port found")
}
