// Package progress contains the derived side of the system: content and
// module status resolution, the progress snapshot aggregate, and the pure
// fold that rebuilds a snapshot from the event stream.
// This is a pure domain layer with zero external dependencies.
package progress

import (
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
)

// Status is the completion state of a content item or module.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// Thresholds for percentage-based status resolution.
const (
	videoCompleteThreshold   = 90.0
	readingCompleteThreshold = 90.0
	readingStartedThreshold  = 10.0
)

// ResolveContentStatus maps observed interaction onto a content status.
// Quizzes are binary: a submission completes them regardless of percentage,
// and without one they have not started. Videos count as completed from 90
// percent watched, and any playback at all counts as in progress. Readings
// also complete at 90 percent but need more than 10 percent scrolled before
// they count as started. Unknown content types resolve to not started.
func ResolveContentStatus(contentType course.ContentType, percentage float64, submitted bool) Status {
	switch contentType {
	case course.ContentTypeQuiz:
		if submitted {
			return StatusCompleted
		}
		return StatusNotStarted

	case course.ContentTypeVideo:
		if percentage >= videoCompleteThreshold {
			return StatusCompleted
		}
		if percentage > 0 {
			return StatusInProgress
		}
		return StatusNotStarted

	case course.ContentTypeReading:
		if percentage >= readingCompleteThreshold {
			return StatusCompleted
		}
		if percentage > readingStartedThreshold {
			return StatusInProgress
		}
		return StatusNotStarted
	}

	return StatusNotStarted
}

// StatusForPercentage is the type-blind bucketing used for module rollup.
// Only an exact 100 counts as completed; anything above zero is in progress.
// It is intentionally separate from ResolveContentStatus, which encodes
// per-content-type thresholds.
func StatusForPercentage(percentage float64) Status {
	if percentage >= 100 {
		return StatusCompleted
	}
	if percentage > 0 {
		return StatusInProgress
	}
	return StatusNotStarted
}
