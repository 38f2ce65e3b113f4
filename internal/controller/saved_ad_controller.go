package controller

import (
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SavedAdController struct {
	SavedAdService *service.SavedAdService
}

func NewSavedAdController(savedAdService *service.SavedAdService) *SavedAdController {
	return &SavedAdController{SavedAdService: savedAdService}
}

// swagger:model SaveAdRequest
type SaveAdRequest struct {
	AdID uint `json:"adId" form:"adId" binding:"required"`
}

// ListSavedAds godoc
// @Summary List bookmarked ads
// @Tags Saved Ads
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.SavedAdView}
// @Router /api/saved-ads [get]
func (c *SavedAdController) ListSavedAds(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}

	views, err := c.SavedAdService.List(ctx.Request.Context(), accountID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// SaveAd godoc
// @Summary Bookmark an ad
// @Tags Saved Ads
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SaveAdRequest true "Ad"
// @Success 201 {object} util.Response{data=model.SavedAd}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "Already saved"
// @Router /api/saved-ads [post]
func (c *SavedAdController) SaveAd(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	var req SaveAdRequest
	if !bind(ctx, &req) {
		return
	}

	saved, err := c.SavedAdService.Save(ctx.Request.Context(), accountID, req.AdID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, saved)
}

// RemoveSavedAd godoc
// @Summary Remove a bookmark
// @Tags Saved Ads
// @Security ApiKeyAuth
// @Param id path int true "Saved ad ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/saved-ads/{id} [delete]
func (c *SavedAdController) RemoveSavedAd(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.SavedAdService.Remove(ctx.Request.Context(), accountID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
