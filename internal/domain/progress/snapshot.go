// Package progress contains the derived side of the system.
package progress

import (
	"math"
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/timeutil"
)

// ContentProgress is the derived state of one content item for one user.
type ContentProgress struct {
	ContentID    shared.ContentID
	ContentType  course.ContentType
	Status       Status
	Percentage   float64
	TimeSpent    int
	Submitted    bool
	LastUpdated  time.Time
	RevisitCount int
}

// ModuleProgress is the derived state of one module for one user.
type ModuleProgress struct {
	ModuleID             shared.ModuleID
	Status               Status
	CompletionPercentage float64
	Contents             []ContentProgress
}

// IsCompleted reports whether every content item in the module is completed.
func (m ModuleProgress) IsCompleted() bool {
	return m.CompletionPercentage >= 100
}

// Snapshot is the full derived progress state for a (user, course) pair.
// It is rebuilt from scratch on every recompute and replaced wholesale in
// storage; it carries no incremental state of its own.
type Snapshot struct {
	UserID          shared.UserID
	CourseID        shared.CourseID
	Modules         []ModuleProgress
	OverallProgress float64
	TotalTimeSpent  int
	LastActivity    time.Time
	UpdatedAt       time.Time
}

// CompletedModules returns the number of fully completed modules.
func (s *Snapshot) CompletedModules() int {
	count := 0
	for _, m := range s.Modules {
		if m.IsCompleted() {
			count++
		}
	}
	return count
}

// IsCourseCompleted reports whether overall progress has reached 100 percent.
func (s *Snapshot) IsCourseCompleted() bool {
	return s.OverallProgress >= 100
}

// FindContent returns the derived state for a structure position, if present.
func (s *Snapshot) FindContent(moduleID shared.ModuleID, contentID shared.ContentID) (ContentProgress, bool) {
	for _, m := range s.Modules {
		if m.ModuleID != moduleID {
			continue
		}
		for _, c := range m.Contents {
			if c.ContentID == contentID {
				return c, true
			}
		}
	}
	return ContentProgress{}, false
}

// BuildSnapshot folds the event stream into a snapshot for the given course
// structure. It is a pure function of its inputs: the same course, events,
// and clock always produce the same snapshot, which is what makes recompute
// idempotent.
//
// Events must be ordered newest first; events whose
// (moduleID, contentID, contentType) triple matches nothing in the course
// structure are ignored. With no events the result is the all-zero snapshot
// used for lazy initialization.
func BuildSnapshot(userID shared.UserID, c *course.Course, events []*learning.Event, now time.Time) *Snapshot {
	snap := &Snapshot{
		UserID:       userID,
		CourseID:     c.ID,
		Modules:      make([]ModuleProgress, 0, len(c.Modules)),
		LastActivity: now,
		UpdatedAt:    now,
	}
	if len(events) > 0 {
		// Newest-first ordering puts the overall last activity at the head.
		snap.LastActivity = events[0].Timestamp
	}

	moduleSum := 0.0
	for _, mod := range c.Modules {
		mp := ModuleProgress{
			ModuleID: mod.ID,
			Contents: make([]ContentProgress, 0, len(mod.Contents)),
		}

		completed := 0
		for _, item := range mod.Contents {
			cp := foldContent(mod.ID, item, events, now)
			if cp.Status == StatusCompleted {
				completed++
			}
			snap.TotalTimeSpent += cp.TimeSpent
			mp.Contents = append(mp.Contents, cp)
		}

		if len(mod.Contents) > 0 {
			mp.CompletionPercentage = roundHalfUp(100 * float64(completed) / float64(len(mod.Contents)))
		}
		mp.Status = StatusForPercentage(mp.CompletionPercentage)

		moduleSum += mp.CompletionPercentage
		snap.Modules = append(snap.Modules, mp)
	}

	if len(snap.Modules) > 0 {
		snap.OverallProgress = roundHalfUp(moduleSum / float64(len(snap.Modules)))
	}

	return snap
}

// foldContent derives one content item's state from the events that match
// its structure position.
func foldContent(moduleID shared.ModuleID, item course.ContentItem, events []*learning.Event, now time.Time) ContentProgress {
	cp := ContentProgress{
		ContentID:   item.ID,
		ContentType: item.Type,
		Status:      StatusNotStarted,
		LastUpdated: now,
	}

	key := item.Key()
	var timestamps []time.Time
	first := true
	for _, e := range events {
		if !e.MatchesContent(moduleID, key) {
			continue
		}
		if first {
			// Newest matching event, given newest-first ordering.
			cp.LastUpdated = e.Timestamp
			first = false
		}
		if p := e.Percentage.Float64(); p > cp.Percentage {
			cp.Percentage = p
		}
		cp.TimeSpent += e.TimeSpent.Int()
		if e.IsSubmission() {
			cp.Submitted = true
		}
		timestamps = append(timestamps, e.Timestamp)
	}

	cp.RevisitCount = timeutil.DistinctDays(timestamps)
	cp.Status = ResolveContentStatus(item.Type, cp.Percentage, cp.Submitted)
	return cp
}

// roundHalfUp rounds to the nearest integer with halves rounding up.
// Inputs here are always non-negative.
func roundHalfUp(v float64) float64 {
	return math.Round(v)
}
