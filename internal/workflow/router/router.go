package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/creditdesk/backend/internal/auth"
	"github.com/creditdesk/backend/internal/workflow/model"
	"github.com/creditdesk/backend/internal/workflow/service"
)

// Engine is the workflow surface the router dispatches to.
type Engine interface {
	SubmitRequest(ctx context.Context, createReq *model.CreateRequestDTO) (*model.CreditLimitRequest, error)
	CreateWorkflow(ctx context.Context, requestID uuid.UUID) (uuid.UUID, error)
	RecordDecision(ctx context.Context, stepID uuid.UUID, outcome model.DecisionOutcome, approverID uuid.UUID, comment *string) (*service.DecisionTransition, error)
	GetCurrentStep(ctx context.Context, orderID uuid.UUID) (*model.CurrentStepDTO, error)
	DeriveRequestStatus(ctx context.Context, requestID uuid.UUID) (model.RequestStatus, error)
	GetWorkflowHistory(ctx context.Context, customerID uuid.UUID) ([]model.HistoryEntryDTO, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*model.CreditLimitRequest, error)
	ListRequests(ctx context.Context, filter model.RequestFilter) ([]model.CreditLimitRequest, error)
	DeleteRequest(ctx context.Context, requestID uuid.UUID) error
	Jurisdictions(ctx context.Context) ([]model.JurisdictionRole, error)
	Jurisdiction(ctx context.Context, jurisdictionID uuid.UUID) (*model.JurisdictionRole, error)
	Rules(ctx context.Context) ([]model.ApprovalRule, error)
}

// Router exposes the workflow engine over HTTP.
type Router struct {
	engine Engine
	authMW *auth.Middleware
	health func() error
}

// NewRouter creates a Router dispatching to the given engine.
func NewRouter(engine Engine, authMW *auth.Middleware, health func() error) *Router {
	return &Router{engine: engine, authMW: authMW, health: health}
}

// RegisterRoutes attaches all workflow endpoints to the gin engine.
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", rt.HandleHealth)

	api := r.Group("/api")
	api.Use(rt.authMW.Extract())

	api.POST("/requests", rt.authMW.Require(), rt.HandleSubmitRequest)
	api.GET("/requests", rt.HandleListRequests)
	api.GET("/requests/:id", rt.HandleGetRequest)
	api.GET("/requests/:id/status", rt.HandleGetRequestStatus)
	api.DELETE("/requests/:id", rt.authMW.Require(), rt.HandleDeleteRequest)

	api.POST("/requests/:id/workflow", rt.authMW.Require(), rt.HandleCreateWorkflow)
	api.POST("/steps/:id/decision", rt.authMW.Require(auth.RoleApprover, auth.RoleAnalyst), rt.HandleRecordDecision)
	api.GET("/orders/:id/current-step", rt.HandleGetCurrentStep)
	api.GET("/customers/:id/history", rt.HandleGetHistory)

	api.GET("/jurisdictions", rt.HandleGetJurisdictions)
	api.GET("/jurisdictions/:id", rt.HandleGetJurisdiction)
	api.GET("/rules", rt.HandleGetRules)
}

// errorResponse maps engine error kinds to HTTP statuses so the UI can react
// differently to each (a stale approve button on 409, a configuration alert
// on 422, a retry hint on 503).
func (rt *Router) errorResponse(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrStepNotActive):
		status = http.StatusConflict
	case errors.Is(err, model.ErrOrderExists):
		status = http.StatusConflict
	case errors.Is(err, model.ErrRequestNotDeletable):
		status = http.StatusConflict
	case errors.Is(err, model.ErrNoJurisdictions):
		status = http.StatusUnprocessableEntity
	case model.IsTransient(err):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		log.WithField("error", err).Error("request failed")
	}
	ctx.JSON(status, gin.H{
		"status":      "error",
		"description": err.Error(),
	})
}
