package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port           string
	MongoURI       string
	StoreDriver    string
	JWTSecret      string
	JWTExpiresIn   time.Duration
	RateLimit      int
	AllowedOrigins []string
	LogDir         string
	AppEnv         string
	UploadsDir     string
	SeedData       bool
	NatsURL        string
	NatsToken      string
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads the service configuration from the environment.
func Load() (Config, error) {
	c := Config{
		Port:           getenv("CARD_SERVICE_PORT", "3000"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", StoreMongo)),
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogDir:         getenv("LOG_DIR", "logs"),
		AppEnv:         os.Getenv("APP_ENV"),
		UploadsDir:     getenv("UPLOADS_DIR", "uploads"),
		NatsURL:        os.Getenv("NATS_URL"),
		NatsToken:      os.Getenv("NATS_TOKEN"),
	}

	if c.JWTSecret == "" {
		return c, errors.New("JWT_SECRET_KEY is required")
	}

	var err error
	c.JWTExpiresIn, err = time.ParseDuration(getenv("JWT_EXPIRES_IN", "24h"))
	if err != nil || c.JWTExpiresIn <= 0 {
		return c, errors.Errorf("invalid JWT_EXPIRES_IN value %q", os.Getenv("JWT_EXPIRES_IN"))
	}

	c.RateLimit, err = strconv.Atoi(getenv("RATE_LIMIT", "100"))
	if err != nil || c.RateLimit <= 0 {
		return c, errors.Errorf("invalid RATE_LIMIT value %q", os.Getenv("RATE_LIMIT"))
	}

	c.SeedData, err = strconv.ParseBool(getenv("SEED_DATA", "true"))
	if err != nil {
		return c, errors.Wrap(err, "invalid SEED_DATA value")
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return c, errors.New("MONGODB_URI is required when STORE_DRIVER is mongo")
		}
	case StoreMemory:
	default:
		return c, errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	return c, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
