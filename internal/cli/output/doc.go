// Package output provides output formatting for tokfactory-admin.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//
// Table output is for humans; json and yaml are stable for scripting.
package output
