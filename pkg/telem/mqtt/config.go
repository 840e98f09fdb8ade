package mqtt

import (
	"flag"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// Config provides options to reach the ground link over MQTT.
type Config struct {
	// BrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	BrokerURL string
	// VehicleID names this vehicle in the topic space. Defaults to the
	// machine ID.
	VehicleID string
}

var defaultConfig = Config{
	BrokerURL: "mqtt://localhost:1883/param/",
}

func init() {
	if val := os.Getenv("PARAM_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.VehicleID, "vehicle-id", defaultConfig.VehicleID, "Vehicle ID, defaults to the machine ID.")
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

// MachineID retrieves the unique ID identifying the machine.
func MachineID() string {
	id, err := machineid.ID()
	if err != nil {
		panic(err)
	}
	return id
}

// NewReadWriter connects to the broker and returns the packet transport
// for this vehicle. The connection auto-reconnects afterwards.
func (c *Config) NewReadWriter() (*ReadWriter, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(c.BrokerURL)
	if err != nil {
		return nil, err
	}
	id := c.VehicleID
	if id == "" {
		id = MachineID()
	}
	if opts.ClientID == "" {
		opts.SetClientID("param:" + id)
	}
	q := NewQueue(opts, topicPrefix)
	if err = q.Connect(); err != nil {
		return nil, err
	}
	return NewPacketReadWriter(q).ForVehicle(id), nil
}
