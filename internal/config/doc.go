// Package config provides configuration for tokfactory.
//
// This package defines the configuration structure and validation:
//
//   - spec.go: Config struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation
//   - load.go: Loading through internal/infra/confloader
//
// Configuration supports multiple sources: files, environment variables
// (TOKFACTORY_SECTION_KEY) and flag overrides.
package config
