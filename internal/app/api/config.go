package api

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
)

// Kind selects which resource a process serves.
type Kind string

const (
	KindProducts Kind = "products"
	KindOrders   Kind = "orders"
)

// DefaultDatabaseURI is used when neither DATABASE_URI nor POSTGRES_DSN is set.
const DefaultDatabaseURI = "postgres://localhost:5432/storefront?sslmode=disable"

// ServiceName is the name reported by /health and telemetry.
func (k Kind) ServiceName() string {
	switch k {
	case KindProducts:
		return "product-service"
	case KindOrders:
		return "order-service"
	default:
		return string(k)
	}
}

func (k Kind) defaultPort() string {
	if k == KindOrders {
		return "3002"
	}
	return "3001"
}

// Config carries environment-driven settings for a service process.
type Config struct {
	Kind                  Kind
	Port                  string
	DatabaseURI           string
	ReconnectInterval     time.Duration
	LivenessProbeInterval time.Duration
	AMQPURL               string
	EventsDisabled        bool
	ShutdownTimeout       time.Duration
	// Temporal settings only matter to the order service and its worker.
	TemporalDisabled  bool
	TemporalAddress   string
	TemporalNamespace string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig(kind Kind) (Config, error) {
	if kind != KindProducts && kind != KindOrders {
		return Config{}, fmt.Errorf("unknown service kind %q", kind)
	}
	cfg := Config{
		Kind:           kind,
		Port:           envDefault("PORT", kind.defaultPort()),
		DatabaseURI:    envDefault("DATABASE_URI", envDefault("POSTGRES_DSN", DefaultDatabaseURI)),
		AMQPURL:        strings.TrimSpace(os.Getenv("AMQP_URL")),
		EventsDisabled: isTruthy(os.Getenv("EVENTS_DISABLED")),

		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
	}
	var err error
	if cfg.ReconnectInterval, err = durationEnv("RECONNECT_INTERVAL", docstore.DefaultRetryInterval, false); err != nil {
		return Config{}, err
	}
	if cfg.LivenessProbeInterval, err = durationEnv("LIVENESS_PROBE_INTERVAL", 0, true); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second, false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func durationEnv(key string, fallback time.Duration, allowZero bool) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		if allowZero {
			return 0, fmt.Errorf("%s must be a non-negative duration such as 30s", key)
		}
		return 0, fmt.Errorf("%s must be a positive duration such as 5s", key)
	}
	return d, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
