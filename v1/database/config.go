package database

import "time"

// DefaultMaxRetries is the attempt budget used when Config.MaxRetries is
// left at zero.
const DefaultMaxRetries = 10

// Config contains the settings for a connection provided through FXModule.
type Config struct {
	// URI selects the engine by its scheme and carries the connection
	// details, for example "pgsql://app:secret@db:5432/inventory" or
	// "sqlite:///var/lib/app/state.db".
	URI string `yaml:"uri" envconfig:"SQL_URI"`

	// MaxRetries bounds the attempts made by transactions run with this
	// configuration. Zero selects DefaultMaxRetries, a negative value
	// retries without bound.
	MaxRetries int `yaml:"max_retries" envconfig:"SQL_MAX_RETRIES"`

	// Consistent opens transactions with repeatable read isolation.
	Consistent bool `yaml:"consistent" envconfig:"SQL_CONSISTENT"`

	// MonitorInterval enables a background health check that reconnects
	// the connection when the engine stops answering. Zero disables it.
	MonitorInterval time.Duration `yaml:"monitor_interval" envconfig:"SQL_MONITOR_INTERVAL"`
}

// TxMode returns the transaction mode selected by Consistent.
func (c Config) TxMode() TxMode {
	if c.Consistent {
		return TxConsistent
	}
	return TxDefault
}

// Retries returns the attempt budget for Perform.
func (c Config) Retries() int {
	if c.MaxRetries == 0 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}
