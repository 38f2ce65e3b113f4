package controller

import (
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CooperationController struct {
	CooperationService *service.CooperationService
}

func NewCooperationController(cooperationService *service.CooperationService) *CooperationController {
	return &CooperationController{CooperationService: cooperationService}
}

// swagger:model CooperationRequestBody
type CooperationRequestBody struct {
	AdID        uint   `json:"adId" form:"adId" binding:"required"`
	RecipientID uint   `json:"recipientId" form:"recipientId" binding:"required"`
	Message     string `json:"message" form:"message" binding:"max=1500"`
}

// swagger:model CooperationResponseBody
type CooperationResponseBody struct {
	Action string `json:"action" form:"action" binding:"required,oneof=accept decline"`
}

// ListRequests godoc
// @Summary List cooperation requests
// @Tags Cooperation
// @Produce json
// @Security ApiKeyAuth
// @Param box query string false "sent or received; both when omitted"
// @Param ad query int false "Ad ID"
// @Param status query string false "pending, accepted or declined"
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.CooperationRequest}}
// @Router /api/cooperation-requests [get]
func (c *CooperationController) ListRequests(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	var q service.CooperationQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.HandleError(ctx, util.NewError(util.KindValidation, "invalid query parameters"))
		return
	}

	list, total, err := c.CooperationService.List(ctx.Request.Context(), accountID, q)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page(list, total, q.Page, q.Limit))
}

// CreateRequest godoc
// @Summary Send a cooperation request
// @Description One request per ad and sender. Senders cannot target their own ads.
// @Tags Cooperation
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CooperationRequestBody true "Request"
// @Success 201 {object} util.Response{data=model.CooperationRequest}
// @Failure 400 {object} util.Response "Validation error"
// @Failure 404 {object} util.Response "Ad or recipient not found"
// @Failure 409 {object} util.Response "Already requested"
// @Router /api/cooperation-requests [post]
func (c *CooperationController) CreateRequest(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	var body CooperationRequestBody
	if !bind(ctx, &body) {
		return
	}

	req, err := c.CooperationService.Create(ctx.Request.Context(), accountID, service.CooperationInput{
		AdID:        body.AdID,
		RecipientID: body.RecipientID,
		Message:     body.Message,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, req)
}

// GetRequest godoc
// @Summary Get a cooperation request
// @Tags Cooperation
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Request ID"
// @Success 200 {object} util.Response{data=model.CooperationRequest}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/cooperation-requests/{id} [get]
func (c *CooperationController) GetRequest(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	req, err := c.CooperationService.Get(ctx.Request.Context(), accountID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, req)
}

// RespondRequest godoc
// @Summary Accept or decline
// @Description Recipient only. Accepting discloses both phone numbers.
// @Tags Cooperation
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Request ID"
// @Param body body CooperationResponseBody true "accept or decline"
// @Success 200 {object} util.Response{data=model.CooperationRequest}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response "No longer pending"
// @Router /api/cooperation-requests/{id} [patch]
func (c *CooperationController) RespondRequest(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var body CooperationResponseBody
	if !bind(ctx, &body) {
		return
	}

	req, err := c.CooperationService.Respond(ctx.Request.Context(), accountID, id, body.Action == "accept")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, req)
}

// CancelRequest godoc
// @Summary Withdraw a pending request
// @Tags Cooperation
// @Security ApiKeyAuth
// @Param id path int true "Request ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/cooperation-requests/{id} [delete]
func (c *CooperationController) CancelRequest(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CooperationService.Cancel(ctx.Request.Context(), accountID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
