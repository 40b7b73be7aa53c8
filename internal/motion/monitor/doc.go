// Package monitor renders offline diagnostics for detector runs: a PNG
// of reported trajectories (gonum/plot) and an HTML timeline of
// per-frame activity (go-echarts).
package monitor
