// Package config manages user-level settings stored at ~/.gpm/settings.yaml.
// Every key can be overridden from the environment with the GPM_ prefix,
// e.g. GPM_LOG_LEVEL=debug.
package config
