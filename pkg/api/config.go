package api

import (
	"fmt"
	"time"
)

// APIConfig configures the HTTP server.
//
// The server carries both the JSON control surface (login, browse,
// clipboard) and the streaming data surface (download, upload), so the
// usual whole-request timeouts do not apply uniformly: a multi-gigabyte
// download is not a hung request.
type APIConfig struct {
	// Port is the HTTP port for all endpoints.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadHeaderTimeout is the maximum duration for reading request
	// headers. Bodies are exempt so large uploads are not cut off.
	// Default: 10s
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// RequestTimeout bounds the JSON endpoints. Download and upload are
	// exempt.
	// Default: 30s
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *APIConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// Validate checks the server configuration.
func (c *APIConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.Port)
	}
	return nil
}
