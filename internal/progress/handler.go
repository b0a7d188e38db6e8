package progress

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taiwoajasa245/reading-engine-api/internal/auth"
	"github.com/taiwoajasa245/reading-engine-api/pkg/response"
	"github.com/taiwoajasa245/reading-engine-api/pkg/util"
)

type ProgressHandler struct {
	service  *ProgressService
	validate *validator.Validate
}

func NewProgressHandler(service *ProgressService) ProgressHandler {
	return ProgressHandler{service: service, validate: util.NewValidator()}
}

// writeError maps the engine's error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(w, http.StatusNotFound, message, err.Error())
	case errors.Is(err, ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, ErrStorageUnavailable):
		w.Header().Set("Retry-After", "1")
		response.Error(w, http.StatusServiceUnavailable, message, "storage temporarily unavailable")
	default:
		response.Error(w, http.StatusInternalServerError, message, "internal error")
	}
}

func (h *ProgressHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Missing required fields", response.ValidationErrors(err))
		return false
	}
	return true
}

func (h *ProgressHandler) NextUnreadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	next, err := h.service.NextUnread(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to get next verse", err)
		return
	}

	response.Success(w, next, "successfully")
}

func (h *ProgressHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	var req MarkReadRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.MarkRead(r.Context(), userID, req.VerseID)
	if err != nil {
		writeError(w, "Failed to mark verse as read", err)
		return
	}

	message := "verse marked as read"
	if !result.Credited {
		message = "verse already read"
	}
	response.Success(w, result, message)
}

func (h *ProgressHandler) ShareReflectionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	var req ShareReflectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.ShareReflection(r.Context(), userID, req.VerseID, req.Text)
	if err != nil {
		writeError(w, "Failed to share reflection", err)
		return
	}

	response.Created(w, result, "reflection shared")
}

func (h *ProgressHandler) ListReflectionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(w, http.StatusBadRequest, "Invalid limit", map[string]string{
				"limit": "limit must be a non-negative integer",
			})
			return
		}
		limit = n
	}

	reflections, err := h.service.ListReflections(r.Context(), userID, limit)
	if err != nil {
		writeError(w, "Failed to get reflections", err)
		return
	}

	response.Success(w, reflections, "successfully")
}

func (h *ProgressHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	profile, err := h.service.GetSummary(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to get summary", err)
		return
	}

	response.Success(w, profile.Summary, "successfully")
}

func (h *ProgressHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to get dashboard", err)
		return
	}

	response.Success(w, dashboard, "successfully")
}

func (h *ProgressHandler) MissionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	missions, err := h.service.Missions(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to get missions", err)
		return
	}

	response.Success(w, missions, "successfully")
}

func (h *ProgressHandler) ClaimMissionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	result, err := h.service.ClaimMission(r.Context(), userID, chi.URLParam(r, "missionID"))
	if err != nil {
		writeError(w, "Failed to claim mission", err)
		return
	}

	message := "mission claimed"
	if !result.Credited {
		message = "mission already claimed today"
	}
	response.Success(w, result, message)
}

func (h *ProgressHandler) SetTimezoneHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "user not logged in")
		return
	}

	var req SetTimezoneRequest
	if !h.decode(w, r, &req) {
		return
	}

	profile, err := h.service.SetTimezone(r.Context(), userID, req.Timezone)
	if err != nil {
		writeError(w, "Failed to update timezone", err)
		return
	}

	response.Success(w, map[string]string{"timezone": profile.Timezone}, "timezone updated")
}
