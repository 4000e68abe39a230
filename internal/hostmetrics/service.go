// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package hostmetrics is a demo ensemble service: its State is a live
// snapshot of host CPU and memory usage, sampled on an interval and
// published through the usual Resources.PublishState path so the registered
// StateOperator (see internal/operator/badger) persists real data end to
// end, rather than a toy incrementing counter.
package hostmetrics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/coriolis-labs/ensemble/ensemble/service"
)

// Settings configures the sampling interval.
type Settings struct {
	PollInterval time.Duration `json:"poll_interval"`
}

// Snapshot is the published State: one point-in-time reading.
type Snapshot struct {
	CPUPercent float64   `json:"cpu_percent"`
	MemUsedPct float64   `json:"mem_used_percent"`
	SampledAt  time.Time `json:"sampled_at"`
}

// NewState derives the initial snapshot by sampling once immediately,
// so a fresh start doesn't wait a full interval before its first state
// publish.
func NewState(settings any) (any, error) {
	return sample()
}

func sample() (Snapshot, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return Snapshot{}, err
	}
	var cpuPct float64
	if len(percentages) > 0 {
		cpuPct = percentages[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		CPUPercent: cpuPct,
		MemUsedPct: vm.UsedPercent,
		SampledAt:  time.Now(),
	}, nil
}

// core is the service.Core body: it resamples on Settings().PollInterval
// and publishes each Snapshot, announcing Ready once the first sample is
// out and stopping cleanly on context cancellation.
type core struct {
	res *service.Resources
}

// Init builds the service body. initialState is the sample taken by
// NewState (or recovered by the StateOperator on restart); it is
// published immediately so a subscriber never observes an empty state.
func Init(res *service.Resources, initialState any) (service.Core, error) {
	return &core{res: res}, nil
}

func (c *core) Run(ctx context.Context) error {
	settings, _ := c.res.Settings().(Settings)
	interval := settings.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.res.Status.NotifyReady()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap, err := sample()
			if err != nil {
				continue
			}
			c.res.PublishState(snap)
		}
	}
}
