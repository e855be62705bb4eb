// Package main provides the talentflow API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/talentflow/talentflow/pkg/eventbus"
	"github.com/talentflow/talentflow/pkg/persistence"
	"github.com/talentflow/talentflow/pkg/services"
	"github.com/talentflow/talentflow/pkg/transition"
	"github.com/talentflow/talentflow/pkg/validation"
	"github.com/talentflow/talentflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App(ctx context.Context) *fiber.App {
	workflowService := services.NewWorkflow(a.persistence)
	fieldService := services.NewCustomField(a.persistence)
	ruleService := services.NewValidationRule(a.persistence)
	candidateService := services.NewCandidate(a.persistence)

	orchestrator := transition.NewOrchestrator(
		a.persistence,
		validation.NewEngine(),
		a.eventBus,
		a.logger,
		a.tracer,
	)

	handlers := web.NewAPIHandlers(workflowService, fieldService, ruleService, candidateService, orchestrator, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Talentflow API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	// Stage endpoints:
	w.Get("/:id/stages", handlers.GetStages)
	w.Post("/:id/stages", handlers.CreateStage)

	// Custom field endpoints:
	w.Get("/:id/fields", handlers.GetCustomFields)
	w.Post("/:id/fields", handlers.CreateCustomField)

	s := app.Group("/stages")
	s.Get("/:stageId", handlers.GetStage)
	s.Patch("/:stageId", handlers.UpdateStage)
	s.Delete("/:stageId", handlers.DeleteStage)
	s.Post("/:stageId/activate", handlers.ActivateStage)
	s.Post("/:stageId/deactivate", handlers.DeactivateStage)
	s.Get("/:stageId/field-configurations", handlers.GetFieldConfigurations)
	s.Put("/:stageId/field-configurations", handlers.ConfigureField)
	s.Get("/:stageId/validation-rules", handlers.GetValidationRules)
	s.Post("/:stageId/validation-rules", handlers.CreateValidationRule)

	f := app.Group("/fields")
	f.Patch("/:fieldId", handlers.UpdateCustomField)
	f.Delete("/:fieldId", handlers.DeleteCustomField)

	r := app.Group("/validation-rules")
	r.Patch("/:ruleId", handlers.UpdateValidationRule)
	r.Delete("/:ruleId", handlers.DeleteValidationRule)
	r.Post("/:ruleId/activate", handlers.ActivateValidationRule)
	r.Post("/:ruleId/deactivate", handlers.DeactivateValidationRule)

	c := app.Group("/candidates")
	c.Get("/", handlers.GetCandidates)
	c.Post("/", handlers.CreateCandidate)
	c.Get("/:id", handlers.GetCandidate)
	c.Patch("/:id/field-values", handlers.UpdateCandidateFieldValues)
	c.Get("/:id/history", handlers.GetCandidateHistory)
	c.Post("/:id/transition", handlers.TransitionCandidate)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int) error {
	app := a.App(ctx)

	return app.Listen(":" + strconv.Itoa(port))
}
