package controller

import (
	"peymonak_backend/internal/model"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const fieldAdImages = "images"

type AdController struct {
	AdService *service.AdService
}

func NewAdController(adService *service.AdService) *AdController {
	return &AdController{AdService: adService}
}

// swagger:model AdRequest
type AdRequest struct {
	Title           string `json:"title" form:"title" binding:"required,max=38"`
	Description     string `json:"description" form:"description" binding:"required"`
	Fee             string `json:"fee" form:"fee" binding:"required,max=20"`
	Province        string `json:"province" form:"province" binding:"required"`
	City            string `json:"city" form:"city"`
	CooperationKind string `json:"cooperationKind" form:"cooperationKind"`
	Skill           string `json:"skill" form:"skill"`
}

// swagger:model AdUpdateRequest
type AdUpdateRequest struct {
	Title           *string `json:"title" form:"title"`
	Description     *string `json:"description" form:"description"`
	Fee             *string `json:"fee" form:"fee"`
	Province        *string `json:"province" form:"province"`
	City            *string `json:"city" form:"city"`
	CooperationKind *string `json:"cooperationKind" form:"cooperationKind"`
	Skill           *string `json:"skill" form:"skill"`
	Status          *string `json:"status" form:"status"`
}

// swagger:model ReportRequest
type ReportRequest struct {
	Message string `json:"message" form:"message" binding:"required,max=1500"`
}

func (c *AdController) list(ctx *gin.Context, run func(q service.AdQuery) ([]model.Ad, int64, error)) {
	var q service.AdQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.HandleError(ctx, util.NewError(util.KindValidation, "invalid query parameters"))
		return
	}

	ads, total, err := run(q)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page(ads, total, q.Page, q.Limit))
}

// ListAds godoc
// @Summary List ads
// @Description Filters: search, title, skill, province, city, cooperation_kind, selected_professional (comma separated roles), created_from, created_to, status. Ordering by created_at, title, fee, province, city or id, "-" for descending.
// @Tags Ads
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "Words matched against title, owner, province and city"
// @Param ordering query string false "Sort field" default(-created_at)
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.Ad}}
// @Router /api/ads [get]
func (c *AdController) ListAds(ctx *gin.Context) {
	c.list(ctx, func(q service.AdQuery) ([]model.Ad, int64, error) {
		return c.AdService.ListAds(ctx.Request.Context(), q)
	})
}

// ListActiveAds godoc
// @Summary List active ads
// @Tags Ads
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.Ad}}
// @Router /api/ads/active [get]
func (c *AdController) ListActiveAds(ctx *gin.Context) {
	c.list(ctx, func(q service.AdQuery) ([]model.Ad, int64, error) {
		return c.AdService.ListActiveAds(ctx.Request.Context(), q)
	})
}

// ListMyAds godoc
// @Summary List own ads
// @Tags Ads
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.Ad}}
// @Router /api/ads/mine [get]
func (c *AdController) ListMyAds(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	c.list(ctx, func(q service.AdQuery) ([]model.Ad, int64, error) {
		return c.AdService.ListMyAds(ctx.Request.Context(), accountID, q)
	})
}

// GetAd godoc
// @Summary Get an ad
// @Tags Ads
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Ad ID"
// @Success 200 {object} util.Response{data=model.Ad}
// @Failure 404 {object} util.Response
// @Router /api/ads/{id} [get]
func (c *AdController) GetAd(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	ad, err := c.AdService.GetAd(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, ad)
}

// CreateAd godoc
// @Summary Create an ad
// @Description Requires a verified account with a profile. Constructors may own five ads, contractors and workers one.
// @Tags Ads
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param title formData string true "Title, at most 38 characters"
// @Param description formData string true "Description"
// @Param fee formData string true "\"negotiable\" or digits"
// @Param province formData string true "Province"
// @Param city formData string false "City"
// @Param cooperationKind formData string false "individual or company; workers are always individual"
// @Param skill formData string false "Required for contractors and workers"
// @Param images formData file false "Up to five images"
// @Success 201 {object} util.Response{data=model.Ad}
// @Failure 400 {object} util.Response "Validation error"
// @Failure 409 {object} util.Response "Quota exceeded"
// @Failure 412 {object} util.Response "Not verified or no profile"
// @Router /api/ads [post]
func (c *AdController) CreateAd(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	var req AdRequest
	if !bind(ctx, &req) {
		return
	}
	images, err := readImages(ctx, fieldAdImages)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	ad, err := c.AdService.CreateAd(ctx.Request.Context(), accountID, service.AdInput{
		Title:           req.Title,
		Description:     req.Description,
		Fee:             req.Fee,
		Province:        req.Province,
		City:            req.City,
		CooperationKind: req.CooperationKind,
		Skill:           req.Skill,
	}, images)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, ad)
}

// UpdateAd godoc
// @Summary Update an ad
// @Description Owner only. Omitted fields are left unchanged; new images are appended.
// @Tags Ads
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Ad ID"
// @Success 200 {object} util.Response{data=model.Ad}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/ads/{id} [patch]
func (c *AdController) UpdateAd(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req AdUpdateRequest
	if !bind(ctx, &req) {
		return
	}
	images, err := readImages(ctx, fieldAdImages)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	in := service.AdUpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		Fee:             req.Fee,
		Province:        req.Province,
		City:            req.City,
		CooperationKind: req.CooperationKind,
		Skill:           req.Skill,
	}
	if req.Status != nil {
		status := model.AdStatus(*req.Status)
		in.Status = &status
	}

	ad, err := c.AdService.UpdateAd(ctx.Request.Context(), accountID, id, in, images)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, ad)
}

// DeleteAd godoc
// @Summary Delete an ad
// @Tags Ads
// @Security ApiKeyAuth
// @Param id path int true "Ad ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/ads/{id} [delete]
func (c *AdController) DeleteAd(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.AdService.DeleteAd(ctx.Request.Context(), accountID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// ReportAd godoc
// @Summary Report an ad
// @Tags Ads
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Ad ID"
// @Param body body ReportRequest true "Report"
// @Success 201 {object} util.Response{data=model.AdReport}
// @Failure 404 {object} util.Response
// @Router /api/ads/{id}/reports [post]
func (c *AdController) ReportAd(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ReportRequest
	if !bind(ctx, &req) {
		return
	}

	report, err := c.AdService.ReportAd(ctx.Request.Context(), accountID, id, req.Message)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, report)
}
