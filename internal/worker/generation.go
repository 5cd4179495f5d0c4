package worker

import (
	"context"
	"errors"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/metrics"
	"radiomirchi/pkg/serrors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// generationJob runs Generator.Generate for one mission with exponential
// backoff.
//
// Errors of kind BAD_REQUEST, NOT_FOUND, CONFLICT and UNAUTHORIZED are
// permanent: retrying cannot fix them. Everything else, upstream rate
// limiting and unavailability included, is retried until MaxAttempts is
// reached. A mission whose attempts are exhausted is marked failed. A
// mission that disappeared (deleted while queued) is dropped silently.
// Jobs interrupted by shutdown leave the mission as it is so that the
// next start resumes it.
type generationJob struct {
	gen     Generator
	options Options

	// newBackOff is replaced in tests.
	newBackOff func() backoff.BackOff
}

func newGenerationJob(gen Generator, options Options) *generationJob {
	j := &generationJob{gen: gen, options: options}
	j.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		if options.InitialBackoff > 0 {
			b.InitialInterval = options.InitialBackoff
		}
		if options.MaxBackoff > 0 {
			b.MaxInterval = options.MaxBackoff
		}
		b.MaxElapsedTime = 0

		return b
	}

	return j
}

func permanent(err error) bool {
	return errors.Is(err, serrors.ErrBadRequest) ||
		errors.Is(err, serrors.ErrNotFound) ||
		errors.Is(err, serrors.ErrConflict) ||
		errors.Is(err, serrors.ErrUnauthorized)
}

// Run executes the job. It does not return an error; the outcome is
// recorded on the mission.
func (j *generationJob) Run(ctx context.Context, id domain.MissionID) {
	ctx = logger.WithFields(ctx, zap.Stringer("missionID", id))
	start := time.Now()
	defer func() {
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}()

	attempt := 0
	operation := func() error {
		attempt++
		metrics.GenerationAttempts.Inc()

		err := j.gen.Generate(ctx, id)
		if err != nil && permanent(err) {
			return backoff.Permanent(err)
		}

		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn(ctx, "mission generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Duration("retryIn", next),
			zap.Bool("temporary", serrors.Temporary(err)),
			zap.Error(err))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(j.newBackOff(), uint64(j.options.MaxAttempts-1)), //nolint: gosec
		ctx)
	err := backoff.RetryNotify(operation, policy, notify)

	switch {
	case err == nil:
		metrics.GenerationJobs.WithLabelValues("succeeded").Inc()
		logger.Info(ctx, "mission generation finished", zap.Int("attempts", attempt))
	case ctx.Err() != nil:
		metrics.GenerationJobs.WithLabelValues("interrupted").Inc()
		logger.Info(ctx, "mission generation interrupted", zap.Int("attempts", attempt))
	case errors.Is(err, serrors.ErrNotFound):
		metrics.GenerationJobs.WithLabelValues("dropped").Inc()
		logger.Info(ctx, "mission no longer exists, dropping job")
	case errors.Is(err, serrors.ErrConflict):
		metrics.GenerationJobs.WithLabelValues("dropped").Inc()
		logger.Info(ctx, "mission cannot be generated, dropping job", zap.Error(err))
	default:
		metrics.GenerationJobs.WithLabelValues("failed").Inc()
		logger.Error(ctx, "mission generation failed", zap.Int("attempts", attempt), zap.Error(err))
		if err := j.gen.Fail(ctx, id, err); err != nil {
			logger.Error(ctx, "could not mark mission failed", zap.Error(err))
		}
	}
}
