package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultURL is the wiki page listing the exchange codes
	DefaultURL = "https://honkaiimpact3.fandom.com/wiki/Exchange_Rewards"

	// DefaultRetryDelay is used after a failed check
	DefaultRetryDelay = 10 * time.Minute

	// MinRetryDelay is the floor applied to RETRY_DELAY
	MinRetryDelay = time.Minute

	// maxRetryMinutes is the largest minute count a time.Duration can hold
	maxRetryMinutes = int(math.MaxInt64 / int64(time.Minute))
)

// Config represents the application configuration
type Config struct {
	// Promo code source
	URL         string
	HTTPTimeout time.Duration
	RetryDelay  time.Duration

	// Persisted state
	StateDir  string
	StateFile string

	// Home Assistant MQTT configuration
	HassHost            string
	HassPort            int
	HassUser            string
	HassPass            string
	HassDiscoveryPrefix string

	// Memcache configuration, empty disables the rate-limit cache
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Redis configuration, empty disables the stream mirror
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	LogLevel string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	hassPort, _ := strconv.Atoi(getEnv("HASS_PORT", "1883"))
	httpTimeout, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "30"))
	rateLimitBlock, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "600"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "100"))

	return &Config{
		URL:                  getEnv("PROMO_URL", DefaultURL),
		HTTPTimeout:          time.Duration(httpTimeout) * time.Second,
		RetryDelay:           ParseRetryDelay(os.Getenv("RETRY_DELAY")),
		StateDir:             getEnv("STATE_DIR", "/mnt"),
		StateFile:            getEnv("STATE_FILE", "last.msgpack"),
		HassHost:             os.Getenv("HASS_HOST"),
		HassPort:             hassPort,
		HassUser:             os.Getenv("HASS_USER"),
		HassPass:             os.Getenv("HASS_PASS"),
		HassDiscoveryPrefix:  getEnv("HASS_DISCOVERY_PREFIX", "homeassistant"),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RateLimitBlock:       time.Duration(rateLimitBlock) * time.Second,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "promo_codes"),
		RedisStreamMaxLength: redisStreamMaxLength,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

// ParseRetryDelay converts a minute count to a duration.
// Unparsable values fall back to the default; values below one minute are raised to it.
func ParseRetryDelay(minutes string) time.Duration {
	n, err := strconv.Atoi(minutes)
	if err != nil {
		return DefaultRetryDelay
	}
	if n > maxRetryMinutes {
		n = maxRetryMinutes
	}
	return ClampRetryDelay(time.Duration(n) * time.Minute)
}

// ClampRetryDelay enforces the retry delay floor
func ClampRetryDelay(d time.Duration) time.Duration {
	if d < MinRetryDelay {
		return MinRetryDelay
	}
	return d
}

// HassBroker returns the MQTT broker URL for Home Assistant
func (c *Config) HassBroker() string {
	return fmt.Sprintf("tcp://%s:%d", c.HassHost, c.HassPort)
}

// Validate checks the configuration for values the notifier cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid PROMO_URL %q", c.URL)
	}
	if c.HassHost == "" {
		return fmt.Errorf("HASS_HOST is required")
	}
	if c.HassPort <= 0 || c.HassPort > 65535 {
		return fmt.Errorf("invalid HASS_PORT %d", c.HassPort)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS %v", c.HTTPTimeout)
	}
	if c.StateDir == "" || c.StateFile == "" {
		return fmt.Errorf("STATE_DIR and STATE_FILE must not be empty")
	}
	if c.RetryDelay < MinRetryDelay {
		return fmt.Errorf("retry delay %v is below %v", c.RetryDelay, MinRetryDelay)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
