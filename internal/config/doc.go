// Package config manages actions-runner-manager configuration.
//
// It handles:
//   - Built-in defaults (organization, API URL, retry bound, log file)
//   - An optional YAML config file
//   - Environment and command line overrides
package config
