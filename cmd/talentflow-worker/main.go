// Package main provides the talentflow background worker: the queued
// transition consumer and the stage deadline sweeper.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/talentflow/talentflow/pkg/cmd"
	"github.com/talentflow/talentflow/pkg/deadline"
	"github.com/talentflow/talentflow/pkg/log"
	"github.com/talentflow/talentflow/pkg/otelhelper"
	"github.com/talentflow/talentflow/pkg/queue"
	"github.com/talentflow/talentflow/pkg/transition"
	"github.com/talentflow/talentflow/pkg/validation"
)

func main() {
	logger := log.WithModule("worker")

	command := &cli.Command{
		Name:                  "talentflow-worker",
		Usage:                 "Process queued transitions and sweep stage deadlines",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the transition queue",
				Value:   "localhost:6379",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				Sources: cli.EnvVars("REDIS_DB"),
			},
			&cli.StringFlag{
				Name:    "transition-queue",
				Usage:   "Redis list holding queued transition requests",
				Value:   queue.DefaultQueue,
				Sources: cli.EnvVars("TRANSITION_QUEUE"),
			},
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron expression for the deadline sweep",
				Value:   deadline.DefaultSchedule,
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Talentflow worker")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "talentflow-worker", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tracer, err := otelhelper.NewTracer(ctx, "talentflow-worker")
			if err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)
			}

			orchestrator := transition.NewOrchestrator(
				persistence,
				validation.NewEngine(),
				eventBus,
				logger,
				tracer,
			)

			consumer, err := queue.NewConsumer(ctx, queue.Config{
				Addr:     command.String("redis-addr"),
				Password: command.String("redis-password"),
				DB:       command.Int("redis-db"),
				Queue:    command.String("transition-queue"),
			}, orchestrator, logger)
			if err != nil {
				return err
			}

			sweeper, err := deadline.NewSweeper(persistence, eventBus, command.String("sweep-schedule"), logger)
			if err != nil {
				return err
			}

			consumer.Start(ctx)
			sweeper.Start(ctx)

			<-ctx.Done()

			logger.Info("Shutting down worker")

			shutdownCtx := context.Background()
			sweeper.Stop(shutdownCtx)

			return consumer.Stop(shutdownCtx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
