package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creditdesk/backend/internal/auth"
	"github.com/creditdesk/backend/internal/retry"
	"github.com/creditdesk/backend/internal/workflow/model"
)

// HandleCreateWorkflow handles POST /api/requests/:id/workflow, provisioning
// the approval chain for a request created without one.
func (rt *Router) HandleCreateWorkflow(ctx *gin.Context) {
	requestID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	orderID, err := rt.engine.CreateWorkflow(ctx.Request.Context(), requestID)
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"orderId": orderID})
}

// HandleRecordDecision handles POST /api/steps/:id/decision. The approver
// identity always comes from the bearer token, never from the payload.
func (rt *Router) HandleRecordDecision(ctx *gin.Context) {
	stepID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	var req model.DecisionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "description": err.Error()})
		return
	}
	if !req.Outcome.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "description": "outcome must be approve or reject"})
		return
	}

	identity := auth.GetIdentity(ctx)
	if identity == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "description": "authentication required"})
		return
	}

	var comment *string
	if req.Comment != "" {
		comment = &req.Comment
	}

	transition, err := rt.engine.RecordDecision(ctx.Request.Context(), stepID, req.Outcome, identity.UserID, comment)
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	result := model.DecisionResultDTO{
		Step:          model.NewStepResponseDTO(&transition.Step),
		RequestStatus: transition.DerivedStatus,
		Terminal:      transition.Terminal(),
	}
	if transition.NextStep != nil {
		next := model.NewStepResponseDTO(transition.NextStep)
		result.NextStep = &next
	}
	ctx.JSON(http.StatusOK, result)
}

// HandleGetCurrentStep handles GET /api/orders/:id/current-step.
func (rt *Router) HandleGetCurrentStep(ctx *gin.Context) {
	orderID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	var current *model.CurrentStepDTO
	err := retry.Do(ctx.Request.Context(), "get current step", func() error {
		var opErr error
		current, opErr = rt.engine.GetCurrentStep(ctx.Request.Context(), orderID)
		return opErr
	})
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, current)
}

// HandleGetHistory handles GET /api/customers/:id/history.
func (rt *Router) HandleGetHistory(ctx *gin.Context) {
	customerID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	var history []model.HistoryEntryDTO
	err := retry.Do(ctx.Request.Context(), "get workflow history", func() error {
		var opErr error
		history, opErr = rt.engine.GetWorkflowHistory(ctx.Request.Context(), customerID)
		return opErr
	})
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, history)
}

// HandleGetJurisdictions handles GET /api/jurisdictions.
func (rt *Router) HandleGetJurisdictions(ctx *gin.Context) {
	var jurisdictions []model.JurisdictionRole
	err := retry.Do(ctx.Request.Context(), "list jurisdictions", func() error {
		var opErr error
		jurisdictions, opErr = rt.engine.Jurisdictions(ctx.Request.Context())
		return opErr
	})
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, jurisdictions)
}

// HandleGetJurisdiction handles GET /api/jurisdictions/:id.
func (rt *Router) HandleGetJurisdiction(ctx *gin.Context) {
	jurisdictionID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	jurisdiction, err := rt.engine.Jurisdiction(ctx.Request.Context(), jurisdictionID)
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, jurisdiction)
}

// HandleGetRules handles GET /api/rules.
func (rt *Router) HandleGetRules(ctx *gin.Context) {
	rules, err := rt.engine.Rules(ctx.Request.Context())
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rules)
}

// HandleHealth handles GET /healthz.
func (rt *Router) HandleHealth(ctx *gin.Context) {
	if rt.health != nil {
		if err := rt.health(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "description": err.Error()})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
