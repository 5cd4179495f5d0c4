package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"radiomirchi/internal/api"
	"radiomirchi/internal/api/handler/v1handler"
	"radiomirchi/internal/config"
	"radiomirchi/internal/game"
	"radiomirchi/internal/missions"
	"radiomirchi/internal/worker"
	"radiomirchi/pkg/llm/gemini"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/metrics"
	"radiomirchi/pkg/speech/deepgram"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server, generation workers and game sessions",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := cfg.Validate(); err != nil {
				logger.Fatal(ctx, "invalid configuration", zap.Error(err))
			}

			strg, closeStrg := getMongo(ctx, cfg)
			defer closeStrg()
			if err := strg.EnsureIndexes(ctx); err != nil {
				logger.Fatal(ctx, "could not ensure mongodb indexes", zap.Error(err))
			}

			meterProvider, err := metrics.NewMeterProvider(nil)
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			otel.SetMeterProvider(meterProvider)

			llmClient := gemini.New(&http.Client{Timeout: cfg.LLM.Timeout}, gemini.Options{
				APIKey:  cfg.LLM.APIKey,
				Model:   cfg.LLM.Model,
				BaseURL: cfg.LLM.BaseURL,
			})
			speechClient := deepgram.New(&http.Client{Timeout: cfg.Deepgram.Timeout}, deepgram.Options{
				APIKey:        cfg.Deepgram.APIKey,
				BaseURL:       cfg.Deepgram.BaseURL,
				ListenURL:     cfg.Deepgram.ListenURL,
				TTSSampleRate: cfg.Deepgram.TTSSampleRate,
				STTSampleRate: cfg.Deepgram.STTSampleRate,
			})

			pool := worker.New(worker.NewOptions(cfg))
			missionsSvc := missions.New(missions.Deps{
				Storage: strg,
				LLM:     llmClient,
				Queue:   pool,
			}, missions.NewOptions(cfg))

			sessions, err := game.New(game.Deps{
				Missions:    missionsSvc,
				LLM:         llmClient,
				Synthesizer: speechClient,
				Transcriber: speechClient,
				Meter:       meterProvider.Meter("radiomirchi/game"),
			}, game.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create game session manager", zap.Error(err))
			}

			if err := pool.Start(ctx, missionsSvc); err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{Deps: v1handler.Deps{
				Missions: missionsSvc,
				Sessions: sessions,
				Health:   strg,
			}})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			// hijacked game connections are not tracked by the webserver
			stopWebserver(shutdownCtx)
			if err := sessions.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not stop game sessions", zap.Error(err))
			}
			if err := pool.Stop(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not stop workers", zap.Error(err))
			}
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not stop meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
