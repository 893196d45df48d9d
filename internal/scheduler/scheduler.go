// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs of the service.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionSchedule runs the event-log cleanup daily at 03:00.
const RetentionSchedule = "0 3 * * *"

// jobTimeout bounds a single run of any job.
const jobTimeout = 5 * time.Minute

// EventPurger deletes event-log entries older than a duration.
type EventPurger interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler handles scheduled maintenance tasks like event-log retention.
type Scheduler struct {
	cron      *cron.Cron
	logger    *slog.Logger
	events    EventPurger
	retention time.Duration
}

// New creates a new scheduler instance. Events older than retention are
// removed by the daily retention job.
func New(events EventPurger, retention time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		logger:    logger,
		events:    events,
		retention: retention,
	}
}

// AddJob registers fn under a standard cron spec (or a descriptor like
// "@every 10m"). Jobs must be added before Start.
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	return nil
}

// Start registers the retention job and begins running jobs.
func (s *Scheduler) Start() error {
	if s.events != nil {
		if err := s.AddJob("event retention", RetentionSchedule, s.RunRetention); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunRetention deletes events older than the retention window.
func (s *Scheduler) RunRetention(ctx context.Context) error {
	n, err := s.events.DeleteOldEvents(ctx, s.retention)
	if err != nil {
		return err
	}
	s.logger.Info("event retention completed", "deleted", n, "retention", s.retention)
	return nil
}
