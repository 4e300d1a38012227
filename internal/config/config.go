// Package config loads the server's startup configuration, grounded on
// the struct-with-tagged-fields shape of
// _examples/presbrey-pkg/irc/config/config.go and the
// flag/godotenv-autoload wiring of
// _examples/presbrey-pkg/irc/ircd/main.go. Unlike the teacher's
// multi-source (file/URL/env) loader, this server takes its two
// required values positionally on the command line, per spec.md
// section 6, and only reaches for the environment for the one optional
// override (SERVER_HOSTNAME).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config holds everything the server needs to start.
type Config struct {
	Port      int    `validate:"min=1,max=65535"`
	Password  string `validate:"required"`
	Hostname  string `validate:"required"`
	AdminAddr string // empty disables the admin HTTP surface
}

var validate = validator.New()

// Load builds a Config from the CLI's positional arguments
// (port, password) plus an optional --admin-addr flag value, applying
// the SERVER_HOSTNAME environment override and a local-hostname
// default the way the teacher's config.Load applies defaults before
// environment overrides.
func Load(portArg, passwordArg, adminAddr string) (*Config, error) {
	port, err := strconv.Atoi(portArg)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portArg, err)
	}

	hostname := os.Getenv("SERVER_HOSTNAME")
	if hostname == "" {
		hostname, err = os.Hostname()
		if err != nil {
			hostname = "irc.local"
		}
	}

	cfg := &Config{
		Port:      port,
		Password:  passwordArg,
		Hostname:  hostname,
		AdminAddr: adminAddr,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
