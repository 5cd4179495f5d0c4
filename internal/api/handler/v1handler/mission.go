package v1handler

import (
	"context"
	"net/http"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/serrors"
	"strconv"
	"time"
)

// CreateMissionRequest is the body of POST /api/v1/create_mission.
type CreateMissionRequest struct {
	Topic  string `json:"topic"`
	UserID string `json:"user_id,omitempty"`
}

// MissionStatusResponse is the body of GET /api/v1/mission_status/{id}.
type MissionStatusResponse struct {
	MissionID domain.MissionID     `json:"mission_id"`
	Status    domain.MissionStatus `json:"status"`
}

// MissionList is a page of missions.
type MissionList struct {
	Items      []domain.Mission `json:"items"`
	NextCursor *string          `json:"next_cursor"`
}

func missionID(r *http.Request) (domain.MissionID, error) {
	id, err := domain.ParseMissionID(r.PathValue("id"))
	if err != nil {
		return domain.MissionID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid mission id")
	}

	return id, nil
}

// Root greets the client.
func (h Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"message": "Welcome to the Radio Mirchi API"})
}

// Healthz reports whether the database is reachable.
func (h Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.deps.Health.Ping(ctx); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrUnavailable, err, "database is unreachable"))

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateMission stores a mission and schedules its generation.
func (h Handler) CreateMission(w http.ResponseWriter, r *http.Request) {
	var req CreateMissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)

		return
	}

	m, err := h.deps.Missions.Create(r.Context(), resolveUser(r.Context(), req.UserID), req.Topic)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusCreated, m)
}

// MissionStatus returns the generation status of a mission.
func (h Handler) MissionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := missionID(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	status, err := h.deps.Missions.Status(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, MissionStatusResponse{MissionID: id, Status: status})
}

// GetMission returns a mission of the caller.
func (h Handler) GetMission(w http.ResponseWriter, r *http.Request) {
	id, err := missionID(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	m, err := h.deps.Missions.Get(r.Context(), resolveUser(r.Context(), r.URL.Query().Get("user_id")), id)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, m)
}

// ListMissions returns a page of the caller's missions, newest first.
func (h Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := uint64(DefaultLimit)
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "limit must be a positive integer"))

			return
		}
		limit = v
	}

	items, next, err := h.deps.Missions.List(r.Context(),
		resolveUser(r.Context(), q.Get("user_id")),
		domain.MissionStatus(q.Get("status")),
		q.Get("cursor"),
		uint(limit))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	res := MissionList{Items: items}
	if res.Items == nil {
		res.Items = []domain.Mission{}
	}
	if next != "" {
		res.NextCursor = &next
	}

	writeJSON(r.Context(), w, http.StatusOK, res)
}

// DeleteMission removes a mission of the caller.
func (h Handler) DeleteMission(w http.ResponseWriter, r *http.Request) {
	id, err := missionID(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if err := h.deps.Missions.Delete(r.Context(), resolveUser(r.Context(), r.URL.Query().Get("user_id")), id); err != nil {
		h.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
