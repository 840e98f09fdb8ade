package param

import (
	"flag"

	"github.com/robotalks/param.go/pkg/storage"
)

// Config defines the configuration for the parameter store.
type Config struct {
	// Count is the number of parameter slots. Slot order never changes
	// at runtime; a slot's meaning is defined entirely by its position.
	Count int
}

// DefaultCount is the default number of parameter slots.
const DefaultCount = 24

var defaultConfig = Config{
	Count: DefaultCount,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.Count, "params", defaultConfig.Count, "Number of parameter slots.")
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

// NewStore creates a Store over dev using the config.
func (c *Config) NewStore(dev storage.Device) (*Store, error) {
	return NewStore(dev, *c)
}
