// Package device decides whether the host is constrained enough to warrant
// the lightweight speech model.
package device

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Thresholds below which a host counts as constrained.
type Thresholds struct {
	MinLogicalCPUs int
	MinMemoryBytes uint64
}

var DefaultThresholds = Thresholds{
	MinLogicalCPUs: 4,
	MinMemoryBytes: 4 << 30,
}

type Host struct {
	LogicalCPUs int
	MemoryBytes uint64
}

type Classifier struct {
	t     Thresholds
	probe func(ctx context.Context) (Host, error)
}

func New(t Thresholds) *Classifier {
	return &Classifier{t: t, probe: probeHost}
}

func (c *Classifier) Constrained(ctx context.Context) (bool, error) {
	h, err := c.probe(ctx)
	if err != nil {
		return false, err
	}
	return c.t.Constrained(h), nil
}

func (t Thresholds) Constrained(h Host) bool {
	return h.LogicalCPUs < t.MinLogicalCPUs || h.MemoryBytes < t.MinMemoryBytes
}

func probeHost(ctx context.Context) (Host, error) {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Host{}, fmt.Errorf("count cpus: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Host{}, fmt.Errorf("read memory: %w", err)
	}
	return Host{LogicalCPUs: n, MemoryBytes: vm.Total}, nil
}
