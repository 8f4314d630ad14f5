package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/photonlayout/pkg/errors"
)

// Server configures the HTTP API. Every field is read from the
// environment with the PHOTONLAYOUT_ prefix, e.g. PHOTONLAYOUT_ADDR.
type Server struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	SessionConfig   string        `envconfig:"SESSION_CONFIG"` // optional TOML file
	RedisURL        string        `envconfig:"REDIS_URL"`      // route cache; empty disables
	MongoURI        string        `envconfig:"MONGO_URI"`      // design store; empty uses StoreDir
	MongoDatabase   string        `envconfig:"MONGO_DATABASE" default:"photonlayout"`
	StoreDir        string        `envconfig:"STORE_DIR" default:"./data/designs"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"8388608"`
	RouteTimeout    time.Duration `envconfig:"ROUTE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoadServer reads the server configuration from the environment.
func LoadServer() (*Server, error) {
	var cfg Server
	if err := envconfig.Process("photonlayout", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "server environment")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "PHOTONLAYOUT_MAX_BODY_BYTES must be positive")
	}
	return &cfg, nil
}

// Session loads the session configuration the server applies to every
// request, falling back to the defaults.
func (s *Server) Session() (Session, error) {
	if s.SessionConfig == "" {
		return Default(), nil
	}
	return Load(s.SessionConfig)
}
