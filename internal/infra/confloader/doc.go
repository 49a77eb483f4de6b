// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that merges several
// sources using koanf as the underlying library.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags, maps)
//  2. Environment variables (TOKFACTORY_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Default values
//
// A Watcher reports changes to a configuration file so that callers can
// reload settings that are safe to change at runtime.
package confloader
