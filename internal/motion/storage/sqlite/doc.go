// Package sqlite persists detector runs, their events and the
// trajectories of objects that left the scene.
//
// The detector layers (L1-L6) never import this package; callers feed
// it the per-frame Metadata. The schema is versioned with embedded
// golang-migrate migrations applied by Open.
package sqlite
