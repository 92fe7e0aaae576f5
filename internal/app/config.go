package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete front end configuration, loadable from
// environment variables (ROS_ prefix), flags, or YAML config files. Both
// binaries share the same shape; they differ only in deployment values.
type Config struct {
	Addr           string        `default:"0.0.0.0:8080" usage:"front end listen address"`
	BackendURL     string        `usage:"order backend base URL (ROS_BACKEND_URL or BACKEND_BASE_URL)" flag:"backend-url"`
	BackendTimeout time.Duration `default:"5s" usage:"per-call backend timeout" flag:"backend-timeout"`
	Session        SessionConfig
	RateLimit      RateLimitConfig
	CORS           CORSConfig
	Graceful       GracefulConfig
}

// SessionConfig controls the browser session cookie and store.
type SessionConfig struct {
	CookieName string        `default:"ros_session" usage:"session cookie name" flag:"session-cookie"`
	TTL        time.Duration `default:"24h" usage:"idle session lifetime before eviction" flag:"session-ttl"`
	Secure     bool          `default:"false" usage:"mark the session cookie Secure (TLS only)" flag:"secure-cookie"`
}

// RateLimitConfig controls the per-client request budget.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ROS",
		Files:     []string{"config.yaml", "/etc/ros/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.BackendURL == "" {
		return nil, errors.New("backend URL is required: set ROS_BACKEND_URL or BACKEND_BASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps environment variables with conventional names
// (BACKEND_BASE_URL as used by the backend launcher, PORT on PaaS hosts) to
// the ROS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.BackendURL == "" {
		if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
			c.BackendURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
