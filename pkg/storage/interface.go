// Package storage defines the persistence contracts the application relies on.
// Backends (e.g. MongoDB) live under pkg/storage/<backend>/.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"radiomirchi/pkg/domain"
	"strings"
	"time"
)

// MissionUpdates describes optional fields applied to a stored mission.
// Only non-nil fields are written; updated_at is always refreshed.
type MissionUpdates struct {
	Status            *domain.MissionStatus
	Propaganda        *domain.Propaganda
	DialoguePrompt    *string
	AwakenedListeners *int
	// LastError sets the last error text; an empty string clears it.
	LastError *string
	// IncAttempts increments the attempts counter by one.
	IncAttempts bool
}

// Empty reports whether u would not change any field.
func (u MissionUpdates) Empty() bool {
	return u.Status == nil && u.Propaganda == nil && u.DialoguePrompt == nil &&
		u.AwakenedListeners == nil && u.LastError == nil && !u.IncAttempts
}

// Cursor is the position of a mission in the newest-first listing order.
// Missions created in the same millisecond are ordered by ID.
type Cursor struct {
	CreatedAt time.Time
	ID        domain.MissionID
}

// IsZero reports whether c points at the start of the listing.
func (c Cursor) IsZero() bool { return c.CreatedAt.IsZero() && c.ID.IsZero() }

// String encodes c as an opaque URL-safe token.
func (c Cursor) String() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by Cursor.String.
func ParseCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("could not decode cursor: %w", err)
	}
	at, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return Cursor{}, errors.New("malformed cursor")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Cursor{}, fmt.Errorf("could not parse cursor time: %w", err)
	}
	missionID, err := domain.ParseMissionID(id)
	if err != nil {
		return Cursor{}, err
	}

	return Cursor{CreatedAt: createdAt, ID: missionID}, nil
}

// UserMissions is a page of a user's missions.
type UserMissions struct {
	Missions []domain.Mission
	// NextCursor points at the last returned mission when more missions
	// exist, nil otherwise.
	NextCursor *Cursor
}

// MissionStorage defines operations on missions.
type MissionStorage interface {
	// StoreMission inserts a mission and returns it as stored.
	StoreMission(ctx context.Context, mission domain.Mission) (*domain.Mission, error)
	// MissionByID returns the mission or nil when it does not exist.
	MissionByID(ctx context.Context, ID domain.MissionID) (*domain.Mission, error)
	// UserMission returns the mission owned by userID or nil.
	UserMission(ctx context.Context, userID domain.UserID, ID domain.MissionID) (*domain.Mission, error)
	// UpdateMission applies updates and returns the updated mission, or nil
	// when the mission does not exist.
	UpdateMission(ctx context.Context, ID domain.MissionID, updates MissionUpdates) (*domain.Mission, error)
	// MissionsByStatus returns all missions in any of the given states, oldest first.
	MissionsByStatus(ctx context.Context, statuses ...domain.MissionStatus) ([]domain.Mission, error)
	// UserMissions returns missions of userID that come after cursor (zero
	// cursor means from the newest), newest first. An empty status matches all.
	UserMissions(ctx context.Context,
		userID domain.UserID,
		status domain.MissionStatus,
		cursor Cursor,
		limit uint) (UserMissions, error)
	// DeleteMission removes the mission owned by userID and returns it, or nil
	// when it was not found.
	DeleteMission(ctx context.Context, userID domain.UserID, ID domain.MissionID) (*domain.Mission, error)
}

// Storage is a storage backend handle.
type Storage interface {
	MissionStorage

	// EnsureIndexes creates the indexes queries rely on. It is idempotent.
	EnsureIndexes(ctx context.Context) error
	// Ping checks connectivity to the backend.
	Ping(ctx context.Context) error
	// Close releases the underlying connections.
	Close(ctx context.Context) error
}
