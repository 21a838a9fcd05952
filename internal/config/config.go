package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config carries everything the loader needs from the environment. It is
// built once at startup and passed in explicitly; nothing reads the
// environment after New returns.
type Config struct {
	Host              string
	Port              int
	Database          string
	User              string
	Password          string
	RawFilesRootDir   string
	RetryInterval     time.Duration
	ChecksumAlgorithm string
}

// New reads the configuration from the environment. The connection
// settings and the raw-files root directory are required; everything else
// has defaults.
func New() (*Config, error) {
	cfg := &Config{
		Port:              5432,
		RetryInterval:     30 * time.Second,
		ChecksumAlgorithm: "sha256",
	}

	var err error
	if cfg.Host, err = requireEnv("POSTGRES_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database, err = requireEnv("POSTGRES_DB"); err != nil {
		return nil, err
	}
	if cfg.User, err = requireEnv("POSTGRES_USER"); err != nil {
		return nil, err
	}
	if cfg.Password, err = requireEnv("POSTGRES_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.RawFilesRootDir, err = requireEnv("RAW_FILES_ROOT_DIR"); err != nil {
		return nil, err
	}

	if cfg.Port, err = getEnvAsInt("POSTGRES_PORT", cfg.Port); err != nil {
		return nil, err
	}

	retrySeconds, err := getEnvAsInt("DB_RETRY_INTERVAL_SECONDS", int(cfg.RetryInterval.Seconds()))
	if err != nil {
		return nil, err
	}
	cfg.RetryInterval = time.Duration(retrySeconds) * time.Second

	if algo := os.Getenv("CHECKSUM_ALGORITHM"); algo != "" {
		cfg.ChecksumAlgorithm = algo
	}

	return cfg, nil
}

// DatabaseURL assembles the pgx connection string.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}
	return u.String()
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is not set", key)
	}
	return value, nil
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}
