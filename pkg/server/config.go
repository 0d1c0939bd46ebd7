package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config controls the HTTP server and its live sessions.
type Config struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// ReadTimeout bounds how long a websocket read may idle before the
	// session is considered dead (default 60s). Pongs extend it.
	ReadTimeout time.Duration

	// WriteTimeout bounds each websocket write (default 10s).
	WriteTimeout time.Duration

	// HeartbeatInterval is the websocket ping cadence (default 25s).
	// Must be shorter than ReadTimeout.
	HeartbeatInterval time.Duration

	// MaxEventQueue caps events buffered per session before the client
	// is told to slow down (default 64).
	MaxEventQueue int

	// MaxMessageSize caps inbound websocket messages in bytes
	// (default 64KB).
	MaxMessageSize int64

	// Registry receives the server's Prometheus metrics
	// (default prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 25 * time.Second
	}
	if c.MaxEventQueue == 0 {
		c.MaxEventQueue = 64
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 64 * 1024
	}
	if c.Registry == nil {
		c.Registry = prometheus.DefaultRegisterer
	}
}
