package cmd

import (
	"dispatch/internal/core/domain/services"
)

// Config carries the process configuration loaded from the environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string

	DefaultAlgorithm     string
	OverdueSweepInterval string
}

// Validate rejects a default algorithm no strategy is registered under, so a
// misconfigured process fails at startup instead of at the first routing call.
func (c Config) Validate() error {
	_, err := services.NewRegistry().Get(c.DefaultAlgorithm)
	return err
}
