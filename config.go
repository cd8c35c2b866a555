package codereview

import (
	"errors"
	"strings"
	"time"

	"github.com/ant-lat/code-review-sub000/session"
)

// Config defines the client core's configuration.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Routes  RouteConfig
	Notify  NotifyConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig carries the transport settings for the backend client.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	// SilentHeader is the per-request header that opts out of global error
	// notifications. Defaults to "X-Silent".
	SilentHeader string
	UserAgent    string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig carries durable-storage settings.
type SessionConfig struct {
	// Keys overrides the fixed storage key names. Zero value selects
	// [session.DefaultKeys].
	Keys session.Keys
	// FilePath backs the default file store when no backend is injected.
	FilePath string
	// RedisPrefix namespaces keys when [Builder.WithRedis] is used.
	RedisPrefix string
}

/*
====================================
ROUTE CONFIG
====================================
*/

// RouteConfig fixes the well-known paths of the route authorizer.
type RouteConfig struct {
	LoginPath     string
	ForbiddenPath string
	DashboardPath string
	// FallbackPaths is the static default page set authorized while no menu
	// tree is loaded.
	FallbackPaths []string
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig configures the user-notification dispatcher.
type NotifyConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops notifications instead of blocking the emitter when
	// the buffer is full.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig configures the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the production client starts from.
// API.BaseURL must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:      15 * time.Second,
			SilentHeader: "X-Silent",
		},
		Session: SessionConfig{
			FilePath:    "session.json",
			RedisPrefix: "crclient",
		},
		Routes: RouteConfig{
			LoginPath:     "/login",
			ForbiddenPath: "/403",
			DashboardPath: "/dashboard",
		},
		Notify: NotifyConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("config: API.BaseURL is required")
	}
	if c.Notify.Enabled && c.Notify.BufferSize <= 0 {
		return errors.New("config: Notify.BufferSize must be positive when enabled")
	}
	return nil
}
