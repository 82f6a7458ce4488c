package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all runtime configuration for the exchange process.
type Config struct {
	GatewayAddr     string
	GatewayPort     int
	HTTPAddr        string
	Symbols         []string
	LogLevel        zerolog.Level
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies
// defaults, and validates values.
func Load() (*Config, error) {
	gatewayAddr := getStr("GATEWAY_ADDR", "0.0.0.0")

	gatewayPort, err := getInt("GATEWAY_PORT", 9001)
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_PORT: %w", err)
	}
	if gatewayPort < 1 || gatewayPort > 65535 {
		return nil, fmt.Errorf("invalid GATEWAY_PORT: %d out of range", gatewayPort)
	}

	httpAddr := getStr("HTTP_ADDR", ":8080")

	symbols := splitList(getStr("SYMBOLS", "AAPL,NVDA"))
	if len(symbols) == 0 {
		return nil, fmt.Errorf("SYMBOLS must name at least one instrument")
	}

	level, err := zerolog.ParseLevel(getStr("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		GatewayAddr:     gatewayAddr,
		GatewayPort:     gatewayPort,
		HTTPAddr:        httpAddr,
		Symbols:         symbols,
		LogLevel:        level,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
