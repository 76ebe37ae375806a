// Package faults implements the probability-gated checkpoints that make the
// order and payment pipelines fail or slow down on purpose.
package faults

import (
	"errors"
	"fmt"
	"time"
)

// LatencyMode selects how a triggered latency checkpoint waits.
type LatencyMode string

const (
	// LatencyCooperative pauses only the request that hit the checkpoint.
	LatencyCooperative LatencyMode = "cooperative"
	// LatencyGlobal stalls every in-flight request until the delay is over.
	LatencyGlobal LatencyMode = "global"
)

// Policy holds the checkpoint rates and thresholds.
type Policy struct {
	InventoryFailureRate  float64       `yaml:"inventory_failure_rate"`
	AvailableStock        int           `yaml:"available_stock"`
	DependencyFailureRate float64       `yaml:"dependency_failure_rate"`
	DependencyName        string        `yaml:"dependency_name"`
	DependencyTimeout     time.Duration `yaml:"dependency_timeout"`
	LatencyRate           float64       `yaml:"latency_rate"`
	LatencyDelay          time.Duration `yaml:"latency_delay"`
	LatencyMode           LatencyMode   `yaml:"latency_mode"`
	ItemLimit             int           `yaml:"item_limit"`
	PaymentFailureRate    float64       `yaml:"payment_failure_rate"`
}

func DefaultPolicy() Policy {
	return Policy{
		InventoryFailureRate:  0.20,
		AvailableStock:        5,
		DependencyFailureRate: 0.15,
		DependencyName:        "inventory-service",
		DependencyTimeout:     3000 * time.Millisecond,
		LatencyRate:           0.20,
		LatencyDelay:          3000 * time.Millisecond,
		LatencyMode:           LatencyCooperative,
		ItemLimit:             11,
		PaymentFailureRate:    0.15,
	}
}

// Validate reports every invalid field at once.
func (p Policy) Validate() error {
	var errs []error
	rates := []struct {
		name string
		v    float64
	}{
		{"inventory_failure_rate", p.InventoryFailureRate},
		{"dependency_failure_rate", p.DependencyFailureRate},
		{"latency_rate", p.LatencyRate},
		{"payment_failure_rate", p.PaymentFailureRate},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", r.name, r.v))
		}
	}
	if p.AvailableStock < 0 {
		errs = append(errs, fmt.Errorf("available_stock must not be negative, got %d", p.AvailableStock))
	}
	if p.ItemLimit <= 0 {
		errs = append(errs, fmt.Errorf("item_limit must be positive, got %d", p.ItemLimit))
	}
	if p.LatencyDelay < 0 || p.DependencyTimeout < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	switch p.LatencyMode {
	case LatencyCooperative, LatencyGlobal:
	default:
		errs = append(errs, fmt.Errorf("latency_mode must be %q or %q, got %q", LatencyCooperative, LatencyGlobal, p.LatencyMode))
	}
	if len(errs) > 0 {
		return fmt.Errorf("faults: invalid policy: %w", errors.Join(errs...))
	}
	return nil
}
