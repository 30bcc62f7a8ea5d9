package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/creditdesk/backend/internal/retry"
	"github.com/creditdesk/backend/internal/workflow/model"
)

// HandleSubmitRequest handles POST /api/requests.
// The request and its full workflow order are created atomically.
func (rt *Router) HandleSubmitRequest(ctx *gin.Context) {
	var req model.CreateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "description": err.Error()})
		return
	}

	request, err := rt.engine.SubmitRequest(ctx.Request.Context(), &req)
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, model.NewRequestResponseDTO(request))
}

// HandleListRequests handles GET /api/requests.
// Optional query filters: status, customerId, branch, offset, limit.
func (rt *Router) HandleListRequests(ctx *gin.Context) {
	var filter model.RequestFilter

	if statusStr := ctx.Query("status"); statusStr != "" {
		statusInt, err := strconv.Atoi(statusStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "description": "status must be an integer"})
			return
		}
		status := model.RequestStatus(statusInt)
		filter.Status = &status
	}
	if customerStr := ctx.Query("customerId"); customerStr != "" {
		customerID, err := uuid.Parse(customerStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "description": "invalid customerId"})
			return
		}
		filter.CustomerID = &customerID
	}
	if branch := ctx.Query("branch"); branch != "" {
		filter.Branch = &branch
	}
	if offsetStr := ctx.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "description": "offset must be an integer"})
			return
		}
		filter.Offset = &offset
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "description": "limit must be an integer"})
			return
		}
		filter.Limit = &limit
	}

	var requests []model.CreditLimitRequest
	err := retry.Do(ctx.Request.Context(), "list requests", func() error {
		var opErr error
		requests, opErr = rt.engine.ListRequests(ctx.Request.Context(), filter)
		return opErr
	})
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	dtos := make([]model.RequestResponseDTO, len(requests))
	for i := range requests {
		dtos[i] = model.NewRequestResponseDTO(&requests[i])
	}
	ctx.JSON(http.StatusOK, dtos)
}

// HandleGetRequest handles GET /api/requests/:id.
func (rt *Router) HandleGetRequest(ctx *gin.Context) {
	requestID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	var request *model.CreditLimitRequest
	err := retry.Do(ctx.Request.Context(), "get request", func() error {
		var opErr error
		request, opErr = rt.engine.GetRequest(ctx.Request.Context(), requestID)
		return opErr
	})
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.NewRequestResponseDTO(request))
}

// HandleGetRequestStatus handles GET /api/requests/:id/status. The status is
// recomputed from the step rows on every call.
func (rt *Router) HandleGetRequestStatus(ctx *gin.Context) {
	requestID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	var status model.RequestStatus
	err := retry.Do(ctx.Request.Context(), "derive request status", func() error {
		var opErr error
		status, opErr = rt.engine.DeriveRequestStatus(ctx.Request.Context(), requestID)
		return opErr
	})
	if err != nil {
		rt.errorResponse(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"requestId": requestID,
		"statusId":  status,
		"status":    status.String(),
	})
}

// HandleDeleteRequest handles DELETE /api/requests/:id. Deletion is refused
// once any step of the request's order is resolved.
func (rt *Router) HandleDeleteRequest(ctx *gin.Context) {
	requestID, ok := rt.pathUUID(ctx, "id")
	if !ok {
		return
	}

	if err := rt.engine.DeleteRequest(ctx.Request.Context(), requestID); err != nil {
		rt.errorResponse(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// pathUUID parses a UUID path parameter, answering 400 on failure.
func (rt *Router) pathUUID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"status":      "error",
			"description": "invalid " + name + " parameter",
		})
		return uuid.Nil, false
	}
	return id, true
}
