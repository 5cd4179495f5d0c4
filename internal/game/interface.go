// Package game runs live broadcasts: the hosts of a mission talk over a
// WebSocket while the player tries to turn their audience.
package game

import (
	"context"
	"radiomirchi/pkg/domain"
)

// Conn is the subset of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Manager tracks the live sessions. A mission has at most one.
//
//go:generate mockgen -package mockgame -source=interface.go -destination=mock/mockgame.go *
type Manager interface {
	// Reserve claims the mission for a new session. It fails with
	// serrors.ErrConflict while another session of the mission is active.
	Reserve(ID domain.MissionID) (Reservation, error)
	// Active returns the number of reserved missions.
	Active() int
	// Shutdown stops all sessions and waits for them to return.
	Shutdown(ctx context.Context) error
}

// Reservation is a claimed session slot. Exactly one of Play or Release
// must be called.
type Reservation interface {
	// Play runs the session on conn until the client leaves, ctx ends or
	// the manager shuts down. conn is closed when Play returns.
	Play(ctx context.Context, conn Conn, mission *domain.Mission) error
	// Release frees the slot without playing.
	Release()
}
