// Package command provides the tokfactory-admin commands.
//
// Commands open a persisted registry read-only, load it, and print what
// they find:
//
//   - root.go: application, global flags, factory opening
//   - tokens.go: token listing and details
//   - balance.go: single balance lookup
//   - audit.go: supply conservation report
//   - backup.go: offline backup of the data directory
//
// Output goes through the output package (table, json or yaml).
package command
