// Package worker provides background job processing for Swellbot.
package worker

import (
	"sort"
	"time"
)

// WarmTarget is a surf spot whose forecast gets pre-warmed.
type WarmTarget struct {
	// Name is the spot name handed to the geocoder.
	Name string

	// Priority determines warm order (lower = higher priority).
	Priority int
}

// WarmConfig holds configuration for the forecast warm job.
type WarmConfig struct {
	// Targets are the surf spots to warm.
	// If empty, uses DefaultWarmTargets.
	Targets []WarmTarget

	// Days are the time references to warm per spot.
	// Default: today and tomorrow.
	Days []string

	// Concurrency is the number of concurrent warm operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each warm operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultWarmConfig returns the default warm configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:     DefaultWarmTargets(),
		Days:        []string{"today", "tomorrow"},
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultWarmTargets returns the default spots to warm: the Australian
// breaks that dominate chat traffic.
func DefaultWarmTargets() []WarmTarget {
	return []WarmTarget{
		{Name: "Bondi Beach", Priority: 1},
		{Name: "Manly Beach", Priority: 1},
		{Name: "Snapper Rocks", Priority: 1},
		{Name: "Bells Beach", Priority: 1},
		{Name: "Byron Bay", Priority: 2},
		{Name: "Burleigh Heads", Priority: 2},
		{Name: "Noosa Heads", Priority: 2},
		{Name: "Cronulla", Priority: 2},
		{Name: "Torquay", Priority: 3},
		{Name: "Margaret River", Priority: 3},
	}
}

// warmRequest is one (spot, day) pair to warm.
type warmRequest struct {
	Spot string
	When string
}

// allRequests expands the targets into (spot, day) pairs in priority order.
func (c WarmConfig) allRequests() []warmRequest {
	targets := make([]WarmTarget, len(c.Targets))
	copy(targets, c.Targets)
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].Priority < targets[j].Priority })

	var reqs []warmRequest
	for _, target := range targets {
		for _, day := range c.Days {
			reqs = append(reqs, warmRequest{Spot: target.Name, When: day})
		}
	}
	return reqs
}

// TotalRequests returns the number of (spot, day) pairs to warm.
func (c WarmConfig) TotalRequests() int {
	return len(c.Targets) * len(c.Days)
}
