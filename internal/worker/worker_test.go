package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockmissions "radiomirchi/internal/missions/mock"
	"radiomirchi/internal/worker"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/serrors"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func testOptions() worker.Options {
	return worker.Options{
		Concurrency:    2,
		QueueSize:      10,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func startPool(t *testing.T, gen worker.Generator, options worker.Options) *worker.Pool {
	t.Helper()

	pool := worker.New(options)
	require.NoError(t, pool.Start(context.Background(), gen))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Stop(ctx)
	})

	return pool
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func stop(t *testing.T, pool *worker.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
}

func TestPool_GeneratesEnqueuedMission(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	id := domain.NewMissionID()
	done := make(chan struct{})

	gen.EXPECT().Resumable(gomock.Any()).Return(nil, nil)
	gen.EXPECT().Generate(gomock.Any(), id).DoAndReturn(func(context.Context, domain.MissionID) error {
		close(done)

		return nil
	})

	pool := startPool(t, gen, testOptions())
	require.NoError(t, pool.Enqueue(context.Background(), id))
	waitFor(t, done)
	stop(t, pool)
}

func TestPool_RetriesTemporaryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	id := domain.NewMissionID()
	done := make(chan struct{})

	gomock.InOrder(
		gen.EXPECT().Generate(gomock.Any(), id).Return(serrors.With(serrors.ErrRateLimited, "slow down")),
		gen.EXPECT().Generate(gomock.Any(), id).Return(errors.New("bad json")),
		gen.EXPECT().Generate(gomock.Any(), id).DoAndReturn(func(context.Context, domain.MissionID) error {
			close(done)

			return nil
		}),
	)
	gen.EXPECT().Resumable(gomock.Any()).Return(nil, nil)

	pool := startPool(t, gen, testOptions())
	require.NoError(t, pool.Enqueue(context.Background(), id))
	waitFor(t, done)
	stop(t, pool)
}

func TestPool_FailsMissionWhenAttemptsExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	id := domain.NewMissionID()
	done := make(chan struct{})
	cause := serrors.With(serrors.ErrUnavailable, "llm down")

	gen.EXPECT().Resumable(gomock.Any()).Return(nil, nil)
	gen.EXPECT().Generate(gomock.Any(), id).Return(cause).Times(3)
	gen.EXPECT().Fail(gomock.Any(), id, gomock.Any()).DoAndReturn(func(_ context.Context, _ domain.MissionID, err error) error {
		require.ErrorIs(t, err, serrors.ErrUnavailable)
		close(done)

		return nil
	})

	pool := startPool(t, gen, testOptions())
	require.NoError(t, pool.Enqueue(context.Background(), id))
	waitFor(t, done)
	stop(t, pool)
}

func TestPool_PermanentErrorFailsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	id := domain.NewMissionID()
	done := make(chan struct{})

	gen.EXPECT().Resumable(gomock.Any()).Return(nil, nil)
	gen.EXPECT().Generate(gomock.Any(), id).Return(serrors.With(serrors.ErrBadRequest, "prompt blocked"))
	gen.EXPECT().Fail(gomock.Any(), id, gomock.Any()).DoAndReturn(func(context.Context, domain.MissionID, error) error {
		close(done)

		return nil
	})

	pool := startPool(t, gen, testOptions())
	require.NoError(t, pool.Enqueue(context.Background(), id))
	waitFor(t, done)
	stop(t, pool)
}

func TestPool_DropsDeletedMission(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	id := domain.NewMissionID()
	done := make(chan struct{})

	gen.EXPECT().Resumable(gomock.Any()).Return(nil, nil)
	gen.EXPECT().Generate(gomock.Any(), id).DoAndReturn(func(context.Context, domain.MissionID) error {
		close(done)

		return serrors.KindOnly(serrors.ErrNotFound)
	})
	// no Fail call expected

	pool := startPool(t, gen, testOptions())
	require.NoError(t, pool.Enqueue(context.Background(), id))
	waitFor(t, done)
	stop(t, pool)
}

func TestPool_ResumesUnfinishedMissions(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	a, b := domain.NewMissionID(), domain.NewMissionID()
	doneA, doneB := make(chan struct{}), make(chan struct{})

	gen.EXPECT().Resumable(gomock.Any()).Return([]domain.MissionID{a, b}, nil)
	gen.EXPECT().Generate(gomock.Any(), a).DoAndReturn(func(context.Context, domain.MissionID) error {
		close(doneA)

		return nil
	})
	gen.EXPECT().Generate(gomock.Any(), b).DoAndReturn(func(context.Context, domain.MissionID) error {
		close(doneB)

		return nil
	})

	pool := startPool(t, gen, testOptions())
	waitFor(t, doneA)
	waitFor(t, doneB)
	stop(t, pool)
}

func TestPool_StartFailsWhenRecoveryFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	gen.EXPECT().Resumable(gomock.Any()).Return(nil, errors.New("mongo down"))

	pool := worker.New(testOptions())
	require.Error(t, pool.Start(context.Background(), gen))
}

func TestPool_Enqueue(t *testing.T) {
	options := testOptions()
	options.QueueSize = 1
	pool := worker.New(options)
	ctx := context.Background()

	a := domain.NewMissionID()
	require.NoError(t, pool.Enqueue(ctx, a))
	require.NoError(t, pool.Enqueue(ctx, a), "duplicates are ignored")

	err := pool.Enqueue(ctx, domain.NewMissionID())
	require.ErrorIs(t, err, serrors.ErrUnavailable)

	require.NoError(t, pool.Stop(ctx))
	err = pool.Enqueue(ctx, domain.NewMissionID())
	require.ErrorIs(t, err, serrors.ErrUnavailable)
}

func TestPool_StopInterruptsRunningJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mockmissions.NewMockService(ctrl)
	id := domain.NewMissionID()
	started := make(chan struct{})

	gen.EXPECT().Resumable(gomock.Any()).Return(nil, nil)
	gen.EXPECT().Generate(gomock.Any(), id).DoAndReturn(func(ctx context.Context, _ domain.MissionID) error {
		close(started)
		<-ctx.Done()

		return ctx.Err()
	})
	// interrupted jobs are not failed

	pool := worker.New(testOptions())
	require.NoError(t, pool.Start(context.Background(), gen))
	require.NoError(t, pool.Enqueue(context.Background(), id))
	waitFor(t, started)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := pool.Stop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
