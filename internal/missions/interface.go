package missions

import (
	"context"
	"radiomirchi/pkg/domain"
)

//go:generate mockgen -package mockmissions -source=interface.go -destination=mock/mockmissions.go *
type Service interface {
	Create(ctx context.Context, userID domain.UserID, topic string) (*domain.Mission, error)
	Status(ctx context.Context, ID domain.MissionID) (domain.MissionStatus, error)
	Get(ctx context.Context, userID domain.UserID, ID domain.MissionID) (*domain.Mission, error)
	List(ctx context.Context,
		userID domain.UserID,
		status domain.MissionStatus,
		cursor string,
		limit uint) ([]domain.Mission, string, error)
	Delete(ctx context.Context, userID domain.UserID, ID domain.MissionID) error

	// Playable returns the mission if a game session may be opened for it.
	Playable(ctx context.Context, ID domain.MissionID) (*domain.Mission, error)
	// AdjustAwakened applies a change, in percent of the initial audience, to
	// the awakened listener count and returns the new count.
	AdjustAwakened(ctx context.Context, ID domain.MissionID, changePercent float64) (int, error)

	// Generate advances a mission through the generation stages. It is
	// resumable and a no-op for missions that are already playable.
	Generate(ctx context.Context, ID domain.MissionID) error
	// Fail marks a mission failed with cause.
	Fail(ctx context.Context, ID domain.MissionID, cause error) error
	// Resumable returns the missions whose generation has not finished.
	Resumable(ctx context.Context) ([]domain.MissionID, error)
}

// Queue schedules background generation of missions.
type Queue interface {
	// Enqueue schedules generation of the mission. It fails with
	// serrors.ErrUnavailable when the queue is full.
	Enqueue(ctx context.Context, ID domain.MissionID) error
}
