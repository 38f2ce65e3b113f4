package controller

import (
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProvinceController struct {
	ProvinceService *service.ProvinceService
}

func NewProvinceController(provinceService *service.ProvinceService) *ProvinceController {
	return &ProvinceController{ProvinceService: provinceService}
}

// CheckProvince godoc
// @Summary Check a province name
// @Description Reports whether the name is a known province and counts the visit when it is.
// @Tags Provinces
// @Produce json
// @Param name query string true "Province name"
// @Success 200 {object} util.Response{data=service.ProvinceCheckResult}
// @Failure 400 {object} util.Response
// @Router /api/provinces/check [get]
func (c *ProvinceController) CheckProvince(ctx *gin.Context) {
	res, err := c.ProvinceService.CheckProvince(ctx.Request.Context(), ctx.Query("name"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// SuggestProvinces godoc
// @Summary Province name suggestions
// @Tags Provinces
// @Produce json
// @Param q query string false "Substring"
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/provinces/suggestions [get]
func (c *ProvinceController) SuggestProvinces(ctx *gin.Context) {
	util.Success(ctx, c.ProvinceService.SuggestProvinces(ctx.Query("q")))
}
