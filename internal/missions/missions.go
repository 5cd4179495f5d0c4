// Package missions implements the mission lifecycle: creation, background
// generation of the propaganda and the show briefing, lookup and the
// awakened listener score kept while a mission is played.
package missions

import (
	"context"
	"errors"
	"fmt"
	"radiomirchi/internal/config"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/llm"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/serrors"
	"radiomirchi/pkg/storage"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultPageSize uint = 20
	maxPageSize     uint = 100
)

// Options configure the service.
type Options struct {
	// DefaultPageSize is used when List is called with a zero limit.
	DefaultPageSize uint
	// MaxPageSize caps the limit passed to List.
	MaxPageSize uint
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(_ *config.Config) Options {
	return Options{
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,
	}
}

// Deps are the collaborators of the service.
type Deps struct {
	Storage storage.MissionStorage
	LLM     llm.Client
	Queue   Queue
}

type service struct {
	options Options
	deps    Deps
}

// New creates a Service.
func New(deps Deps, options Options) Service {
	if options.DefaultPageSize == 0 {
		options.DefaultPageSize = defaultPageSize
	}
	if options.MaxPageSize == 0 {
		options.MaxPageSize = maxPageSize
	}

	return &service{
		options: options,
		deps:    deps,
	}
}

func notFound() error { return serrors.With(serrors.ErrNotFound, "mission not found") }

// Create stores a pending mission for topic and schedules its generation.
func (s *service) Create(ctx context.Context, userID domain.UserID, topic string) (*domain.Mission, error) {
	topic, err := NormalizeTopic(topic)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid topic")
	}

	mission, err := s.deps.Storage.StoreMission(ctx, domain.Mission{
		ID:     domain.NewMissionID(),
		UserID: userID,
		Topic:  topic,
		Status: domain.MissionStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("could not store mission: %w", err)
	}

	if err := s.deps.Queue.Enqueue(ctx, mission.ID); err != nil {
		// a stored mission nobody will generate would stay pending until restart
		if _, delErr := s.deps.Storage.DeleteMission(context.WithoutCancel(ctx), userID, mission.ID); delErr != nil {
			logger.Warn(ctx, "could not remove unscheduled mission",
				zap.Stringer("missionID", mission.ID), zap.Error(delErr))
		}
		if serrors.KindOf(err) != nil {
			return nil, err
		}

		return nil, fmt.Errorf("could not schedule mission generation: %w", err)
	}

	logger.Info(ctx, "mission created", zap.Stringer("missionID", mission.ID))

	return mission, nil
}

// Status returns the status of any mission.
func (s *service) Status(ctx context.Context, id domain.MissionID) (domain.MissionStatus, error) {
	m, err := s.deps.Storage.MissionByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("could not get mission: %w", err)
	}
	if m == nil {
		return "", notFound()
	}

	return m.Status, nil
}

// Get returns a mission owned by userID.
func (s *service) Get(ctx context.Context, userID domain.UserID, id domain.MissionID) (*domain.Mission, error) {
	m, err := s.deps.Storage.UserMission(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("could not get mission: %w", err)
	}
	if m == nil {
		return nil, notFound()
	}

	return m, nil
}

// List returns a page of missions of the given user filtered by status.
// The cursor is the opaque token returned with the previous page; the next
// one is empty on the last page.
func (s *service) List(ctx context.Context,
	userID domain.UserID,
	status domain.MissionStatus,
	cursor string,
	limit uint) ([]domain.Mission, string, error) {
	if status != "" && !status.Valid() {
		return nil, "", serrors.With(serrors.ErrBadRequest, "invalid status %q", status)
	}

	var after storage.Cursor
	if cursor != "" {
		c, err := storage.ParseCursor(cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		after = c
	}

	switch {
	case limit == 0:
		limit = s.options.DefaultPageSize
	case limit > s.options.MaxPageSize:
		limit = s.options.MaxPageSize
	}

	page, err := s.deps.Storage.UserMissions(ctx, userID, status, after, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user missions: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.String()
	}

	return page.Missions, next, nil
}

// Delete removes a mission owned by userID. A queued generation of the
// mission finds nothing to do and ends.
func (s *service) Delete(ctx context.Context, userID domain.UserID, id domain.MissionID) error {
	m, err := s.deps.Storage.DeleteMission(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("could not delete mission: %w", err)
	}
	if m == nil {
		return notFound()
	}

	return nil
}

// Playable returns the mission when its dialogue briefing is ready.
func (s *service) Playable(ctx context.Context, id domain.MissionID) (*domain.Mission, error) {
	m, err := s.deps.Storage.MissionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get mission: %w", err)
	}
	if m == nil {
		return nil, notFound()
	}
	if !m.Status.Playable() || m.DialoguePrompt == "" || m.Propaganda == nil {
		return nil, serrors.With(serrors.ErrConflict, "mission not ready")
	}

	return m, nil
}

// AdjustAwakened implements Service. Only the session of a mission updates
// its score, so the read-modify-write is not raced.
func (s *service) AdjustAwakened(ctx context.Context, id domain.MissionID, changePercent float64) (int, error) {
	m, err := s.deps.Storage.MissionByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("could not get mission: %w", err)
	}
	if m == nil {
		return 0, notFound()
	}

	awakened := domain.ApplyAwakening(m.AwakenedListeners, m.InitialListeners(), changePercent)
	if awakened == m.AwakenedListeners {
		return awakened, nil
	}

	updated, err := s.deps.Storage.UpdateMission(ctx, id, storage.MissionUpdates{AwakenedListeners: &awakened})
	if err != nil {
		return 0, fmt.Errorf("could not update awakened listeners: %w", err)
	}
	if updated == nil {
		return 0, notFound()
	}

	return updated.AwakenedListeners, nil
}

// Generate implements Service.
func (s *service) Generate(ctx context.Context, id domain.MissionID) error {
	ctx = logger.WithFields(ctx, zap.Stringer("missionID", id))

	m, err := s.deps.Storage.MissionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("could not get mission: %w", err)
	}
	if m == nil {
		return notFound()
	}

	switch m.Status {
	case domain.MissionStatusStage2:
		return nil
	case domain.MissionStatusFailed:
		return serrors.With(serrors.ErrConflict, "mission generation already failed")
	}

	if m.Status == domain.MissionStatusPending || m.Propaganda == nil {
		propaganda, err := s.deps.LLM.GeneratePropaganda(ctx, m.Topic)
		if err != nil {
			return s.recordFailure(ctx, id, err)
		}

		stage1 := domain.MissionStatusStage1
		m, err = s.deps.Storage.UpdateMission(ctx, id, storage.MissionUpdates{
			Status:     &stage1,
			Propaganda: propaganda,
			LastError:  new(string),
		})
		if err != nil {
			return fmt.Errorf("could not store propaganda: %w", err)
		}
		if m == nil {
			return notFound()
		}
		logger.Info(ctx, "propaganda generated", zap.Int("speakers", len(propaganda.Speakers)))
	}

	prompt, err := s.deps.LLM.GenerateDialoguePrompt(ctx, m.Topic, m.Propaganda)
	if err == nil && strings.TrimSpace(prompt) == "" {
		err = errors.New("empty dialogue prompt")
	}
	if err != nil {
		return s.recordFailure(ctx, id, err)
	}

	stage2 := domain.MissionStatusStage2
	m, err = s.deps.Storage.UpdateMission(ctx, id, storage.MissionUpdates{
		Status:         &stage2,
		DialoguePrompt: &prompt,
		LastError:      new(string),
	})
	if err != nil {
		return fmt.Errorf("could not store dialogue prompt: %w", err)
	}
	if m == nil {
		return notFound()
	}
	logger.Info(ctx, "mission ready")

	return nil
}

// recordFailure counts a failed attempt on the mission and returns cause.
func (s *service) recordFailure(ctx context.Context, id domain.MissionID, cause error) error {
	if ctx.Err() != nil {
		// interrupted, not failed
		return cause
	}

	msg := cause.Error()
	if _, err := s.deps.Storage.UpdateMission(context.WithoutCancel(ctx), id, storage.MissionUpdates{
		LastError:   &msg,
		IncAttempts: true,
	}); err != nil {
		logger.Warn(ctx, "could not record generation failure", zap.Error(err))
	}

	return cause
}

// Fail implements Service.
func (s *service) Fail(ctx context.Context, id domain.MissionID, cause error) error {
	failed := domain.MissionStatusFailed
	msg := "generation failed"
	if cause != nil {
		msg = cause.Error()
	}

	m, err := s.deps.Storage.UpdateMission(ctx, id, storage.MissionUpdates{
		Status:    &failed,
		LastError: &msg,
	})
	if err != nil {
		return fmt.Errorf("could not mark mission failed: %w", err)
	}
	if m == nil {
		return notFound()
	}

	return nil
}

// Resumable implements Service.
func (s *service) Resumable(ctx context.Context) ([]domain.MissionID, error) {
	ms, err := s.deps.Storage.MissionsByStatus(ctx, domain.MissionStatusPending, domain.MissionStatusStage1)
	if err != nil {
		return nil, fmt.Errorf("could not get unfinished missions: %w", err)
	}

	ids := make([]domain.MissionID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}

	return ids, nil
}
