// Zaparoo Covers
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Covers.
//
// Zaparoo Covers is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Covers is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Covers.  If not, see <http://www.gnu.org/licenses/>.

package covers

import (
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/notifications"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/helpers/syncutil"
)

const (
	StatusIdle       = "idle"
	StatusValidating = "validating"
	StatusRunning    = "running"
	StatusCompleted  = "completed"
	StatusAborted    = "aborted"
	StatusCancelled  = "cancelled"
)

// Progress is a snapshot of the current or last batch run.
type Progress struct {
	Status      string `json:"status"`
	RunID       string `json:"runId,omitempty"`
	Provider    string `json:"provider,omitempty"`
	CurrentGame string `json:"currentGame,omitempty"`
	LastError   string `json:"lastError,omitempty"`
	Processed   int    `json:"processed"`
	Total       int    `json:"total"`
	Found       int    `json:"found"`
	ErrorCount  int    `json:"errorCount"`
}

// ProgressTracker manages batch progress tracking and notifications
type ProgressTracker struct {
	progress      *Progress
	notifications chan<- models.Notification
	progressMu    syncutil.RWMutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(notificationsChan chan<- models.Notification) *ProgressTracker {
	return &ProgressTracker{
		progress:      &Progress{Status: StatusIdle},
		notifications: notificationsChan,
	}
}

// Update updates the progress with the given function
func (pt *ProgressTracker) Update(updateFunc func(*Progress)) {
	pt.progressMu.Lock()
	defer pt.progressMu.Unlock()

	updateFunc(pt.progress)

	progressCopy := *pt.progress
	notifications.CoversProgress(pt.notifications, progressCopy)
}

// Get returns a copy of the current progress
func (pt *ProgressTracker) Get() *Progress {
	pt.progressMu.RLock()
	defer pt.progressMu.RUnlock()

	progressCopy := *pt.progress
	return &progressCopy
}

// Start resets the tracker for a new run and enters the validating state
func (pt *ProgressTracker) Start(runID, provider string) {
	pt.Update(func(p *Progress) {
		*p = Progress{
			Status:   StatusValidating,
			RunID:    runID,
			Provider: provider,
		}
	})
}

// SetRunning enters the running state with the number of items to process
func (pt *ProgressTracker) SetRunning(total int) {
	pt.Update(func(p *Progress) {
		p.Status = StatusRunning
		p.Total = total
	})
}

// SetCurrentGame sets the title currently being looked up
func (pt *ProgressTracker) SetCurrentGame(title string) {
	pt.Update(func(p *Progress) {
		p.CurrentGame = title
	})
}

// ItemDone records a finished item
func (pt *ProgressTracker) ItemDone(found bool) {
	pt.Update(func(p *Progress) {
		p.Processed++
		if found {
			p.Found++
		}
	})
}

// SetError records an item-level error
func (pt *ProgressTracker) SetError(err error) {
	pt.Update(func(p *Progress) {
		if err != nil {
			p.LastError = err.Error()
			p.ErrorCount++
		} else {
			p.LastError = ""
		}
	})
}

// Abort marks the run as failed before any item was processed
func (pt *ProgressTracker) Abort(err error) {
	pt.Update(func(p *Progress) {
		p.Status = StatusAborted
		p.CurrentGame = ""
		if err != nil {
			p.LastError = err.Error()
		}
	})
}

// Cancel marks the run as stopped by its caller
func (pt *ProgressTracker) Cancel() {
	pt.Update(func(p *Progress) {
		p.Status = StatusCancelled
		p.CurrentGame = ""
	})
}

// Complete marks the run as completed
func (pt *ProgressTracker) Complete() {
	pt.Update(func(p *Progress) {
		p.Status = StatusCompleted
		p.Processed = p.Total
		p.CurrentGame = ""
	})

	notifications.CoversComplete(pt.notifications, pt.Get())
}
