// Package config handles loading and parsing of configuration from YAML files,
// environment variables and command-line flags. It defines the application
// configuration structure including listener addresses, timeouts, request
// limits, metrics buffering and log level.
package config
