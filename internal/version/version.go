// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Local view, eclipse search (-eclipses), event log, Prometheus metrics
// 0.2.0 - Two-vector and caching frames, scene files, light-time readout
// 0.1.0 - Initial release: frame trees, timelines, rotation models, orrery TUI
