package v1handler

import (
	"net/http"
	"radiomirchi/pkg/logger"

	"go.uber.org/zap"
)

// Play upgrades the request to a WebSocket and runs the game session of the
// mission on it. Missions that are not playable or already in play are
// rejected before the upgrade.
func (h Handler) Play(w http.ResponseWriter, r *http.Request) {
	id, err := missionID(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	ctx := logger.WithFields(r.Context(), zap.Stringer("missionID", id))

	mission, err := h.deps.Missions.Playable(ctx, id)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	reservation, err := h.deps.Sessions.Reserve(id)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		reservation.Release()
		logger.Debug(ctx, "websocket upgrade failed", zap.Error(err))

		return
	}

	if err := reservation.Play(ctx, conn, mission); err != nil {
		logger.Warn(ctx, "game session ended with error", zap.Error(err))
	}
}
