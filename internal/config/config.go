package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	// OpenTelemetry (traces)
	OTELExporterOTLPEndpoint string
	OTELServiceName          string
	OTELSampleRatio          float64

	// MaxConcurrentTasks caps how many document tasks run at once.
	MaxConcurrentTasks int

	// ShutdownTimeout bounds how long in-flight tasks and open HTTP
	// requests get to finish after SIGTERM.
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", ""),
		OTELSampleRatio:          getEnvAsFloat("OTEL_SAMPLE_RATIO", 0.1),

		MaxConcurrentTasks: getEnvAsInt("MAX_CONCURRENT_TASKS", 5),
		ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if c.MaxConcurrentTasks < 1 {
		return fmt.Errorf("MAX_CONCURRENT_TASKS must be >= 1")
	}
	if c.MaxConcurrentTasks > 1000 {
		return fmt.Errorf("MAX_CONCURRENT_TASKS must be <= 1000")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.OTELSampleRatio < 0 || c.OTELSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be in [0, 1]")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvAsFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
