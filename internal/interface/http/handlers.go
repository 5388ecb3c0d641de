// Package http implements the REST API for the Smart LMS Platform.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/application/command"
	"github.com/Mdsadique5522/smart-lms-platform/internal/application/query"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/logger"
)

// headerUserID carries the caller identity. Authentication happens upstream;
// this service trusts the header as populated by the gateway.
const headerUserID = "X-User-ID"

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Smart LMS Platform API",
		"version":     "v1",
		"description": "REST API for learning event ingestion and derived progress",
		"endpoints": map[string]string{
			"health":    "/health",
			"events":    "/api/v1/events",
			"progress":  "/api/v1/progress/{userID}/{courseID}",
			"dashboard": "/api/v1/dashboard/student",
			"courses":   "/api/v1/courses",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the basic metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING EVENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// recordEventRequest is the ingestion payload.
type recordEventRequest struct {
	UserID      string                 `json:"user_id,omitempty"`
	CourseID    string                 `json:"course_id"`
	ModuleID    string                 `json:"module_id"`
	ContentID   string                 `json:"content_id"`
	ContentType string                 `json:"content_type"`
	EventType   string                 `json:"event_type"`
	Percentage  float64                `json:"percentage,omitempty"`
	TimeSpent   int                    `json:"time_spent,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp,omitempty"`
}

// handleRecordEvent handles POST /api/v1/events
func (s *Server) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordEventHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Event ingestion not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req recordEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	// Header identity wins over the body field.
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		userID = req.UserID
	}
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Caller identity required (X-User-ID header)")
		return
	}

	cmd := command.RecordEventCommand{
		UserID:      userID,
		CourseID:    req.CourseID,
		ModuleID:    req.ModuleID,
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
		EventType:   req.EventType,
		Percentage:  req.Percentage,
		TimeSpent:   req.TimeSpent,
		Metadata:    req.Metadata,
		Timestamp:   req.Timestamp,
	}

	result, err := s.deps.RecordEventHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to record event")
		return
	}

	writeJSON(w, http.StatusCreated, recordEventView{
		ID:          result.ID,
		ContentType: result.ContentType,
		EventType:   result.EventType,
		Percentage:  result.Percentage,
		Timestamp:   result.Timestamp,
	})
}

// handleGetEvents handles GET /api/v1/events
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetEventsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Events handler not configured")
		return
	}

	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Caller identity required (X-User-ID header)")
		return
	}

	q := query.GetEventsQuery{
		UserID:      userID,
		CourseID:    getQueryParam(r, "courseId", ""),
		ContentType: getQueryParam(r, "contentType", ""),
		Limit:       getQueryParamInt(r, "limit", query.DefaultEventsLimit),
	}

	events, err := s.deps.GetEventsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to list events")
		return
	}

	meta := &ResponseMeta{
		TotalCount: len(events),
	}

	writeJSONWithMeta(w, r, http.StatusOK, newEventListView(events), meta)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProgress handles GET /api/v1/progress/{userID}/{courseID}
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	s.handleProgressInternal(w, r, r.PathValue("userID"), r.PathValue("courseID"))
}

// handleGetMyProgress handles GET /api/v1/progress/me/{courseID}
func (s *Server) handleGetMyProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Caller identity required (X-User-ID header)")
		return
	}
	s.handleProgressInternal(w, r, userID, r.PathValue("courseID"))
}

// handleProgressInternal is the internal implementation for progress reads.
func (s *Server) handleProgressInternal(w http.ResponseWriter, r *http.Request, userID, courseID string) {
	if s.deps.GetProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress handler not configured")
		return
	}

	if userID == "" || courseID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID and course ID are required")
		return
	}

	view, err := s.deps.GetProgressHandler.Handle(r.Context(), query.GetProgressQuery{
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to load progress")
		return
	}

	writeJSON(w, http.StatusOK, newProgressView(view))
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleStudentDashboard handles GET /api/v1/dashboard/student
func (s *Server) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentDashboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Dashboard handler not configured")
		return
	}

	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Caller identity required (X-User-ID header)")
		return
	}

	dashboard, err := s.deps.GetStudentDashboardHandler.Handle(r.Context(), query.GetStudentDashboardQuery{
		UserID: userID,
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to build dashboard")
		return
	}

	writeJSON(w, http.StatusOK, newStudentDashboardView(dashboard))
}

// handleInstructorDashboard handles GET /api/v1/dashboard/instructor/{instructorID}
func (s *Server) handleInstructorDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetCourseAnalyticsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Analytics handler not configured")
		return
	}

	instructorID := r.PathValue("instructorID")
	if instructorID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Instructor ID is required")
		return
	}

	analytics, err := s.deps.GetCourseAnalyticsHandler.Handle(r.Context(), query.GetCourseAnalyticsQuery{
		InstructorID: instructorID,
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to load course analytics")
		return
	}

	meta := &ResponseMeta{
		TotalCount: len(analytics),
	}

	writeJSONWithMeta(w, r, http.StatusOK, newCourseAnalyticsListView(analytics), meta)
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListCourses handles GET /api/v1/courses
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListCoursesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Courses handler not configured")
		return
	}

	courses, err := s.deps.ListCoursesHandler.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to list courses")
		return
	}

	meta := &ResponseMeta{
		TotalCount: len(courses),
	}

	writeJSONWithMeta(w, r, http.StatusOK, newCourseListView(courses), meta)
}

// handleGetCourse handles GET /api/v1/courses/{id}
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetCourseHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Courses handler not configured")
		return
	}

	courseID := r.PathValue("id")
	if courseID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Course ID is required")
		return
	}

	crs, err := s.deps.GetCourseHandler.Handle(r.Context(), courseID)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to load course")
		return
	}

	writeJSON(w, http.StatusOK, newCourseView(crs))
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain error kinds onto HTTP statuses. Unknown errors
// are logged and surfaced as an opaque 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrAlreadyProcessed):
		writeJSONError(w, http.StatusConflict, "already_processed", "Event was already recorded")
	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	default:
		s.logger.Error(fallback,
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
