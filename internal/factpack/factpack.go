// Package factpack derives higher-level semantic facts from a compiled
// snapshot: dialogs, forms, page classification, and ranked actions (§4.5).
//
// Grounded on the teacher's profiler package (domwatch/internal/profiler):
// Profile orchestrates a fixed sequence of named, independent analysis
// steps over one DOM read and assembles them into a single result struct.
// Extract follows the same shape, over a snapshot instead of a live tab.
package factpack

import "github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"

// FactPack is the aggregate of page-level semantic extractions derived
// from a single snapshot (§3 glossary).
type FactPack struct {
	Dialogs  []Dialog
	Forms    []Form
	PageType PageType
	Actions  ActionSet
}

// Config tunes extraction thresholds.
type Config struct {
	MinPageTypeScore float64
	MaxActions       int
	MinActionScore   float64
	// ClusterDistancePx is the max gap, in CSS pixels, between two form
	// fields' bounding boxes for them to be considered part of the same
	// implicit (unwrapped) form cluster.
	ClusterDistancePx int
}

func (c *Config) defaults() {
	if c.MinPageTypeScore <= 0 {
		c.MinPageTypeScore = 0.34
	}
	if c.MaxActions <= 0 {
		c.MaxActions = 5
	}
	if c.ClusterDistancePx <= 0 {
		c.ClusterDistancePx = 24
	}
}

// Extract runs all four sub-extractors over snap (§4.5, steps 1-4).
func Extract(snap *snapshot.BaseSnapshot, cfg Config) FactPack {
	cfg.defaults()

	return FactPack{
		Dialogs:  detectDialogs(snap),
		Forms:    detectForms(snap, cfg),
		PageType: classifyPageType(snap, cfg),
		Actions:  selectActions(snap, cfg),
	}
}
