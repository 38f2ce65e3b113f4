package controller

import (
	"peymonak_backend/internal/reference"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SupportController struct {
	SupportService *service.SupportService
}

func NewSupportController(supportService *service.SupportService) *SupportController {
	return &SupportController{SupportService: supportService}
}

// ListContacts godoc
// @Summary Support contacts
// @Tags Support
// @Produce json
// @Success 200 {object} util.Response{data=[]model.SupportContact}
// @Router /api/support [get]
func (c *SupportController) ListContacts(ctx *gin.Context) {
	contacts, err := c.SupportService.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, contacts)
}

// ReferenceController serves the fixed lookup sets clients build forms from.
type ReferenceController struct {
	Catalog reference.Lookup
}

func NewReferenceController(catalog reference.Lookup) *ReferenceController {
	return &ReferenceController{Catalog: catalog}
}

// Provinces godoc
// @Summary Known provinces
// @Tags Reference
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/reference/provinces [get]
func (c *ReferenceController) Provinces(ctx *gin.Context) {
	util.Success(ctx, c.Catalog.Provinces())
}

// Skills godoc
// @Summary Known skills
// @Tags Reference
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/reference/skills [get]
func (c *ReferenceController) Skills(ctx *gin.Context) {
	util.Success(ctx, c.Catalog.Skills())
}

// Genders godoc
// @Summary Known genders
// @Tags Reference
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/reference/genders [get]
func (c *ReferenceController) Genders(ctx *gin.Context) {
	util.Success(ctx, c.Catalog.Genders())
}
