package controller

import (
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	fieldProfilePicture = "profilePicture"
	fieldSampleImages   = "sampleImages"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// ProfileRequest is sent as multipart/form-data together with the optional
// profilePicture file and up to five sampleImages files.
// swagger:model ProfileRequest
type ProfileRequest struct {
	Name        *string `json:"name" form:"name"`
	City        *string `json:"city" form:"city"`
	Gender      *string `json:"gender" form:"gender"`
	Skill       *string `json:"skill" form:"skill"`
	Description *string `json:"description" form:"description"`
	ClearAvatar bool    `json:"clearAvatar" form:"clearAvatar"`
}

func (r ProfileRequest) input() service.ProfileInput {
	return service.ProfileInput{
		Name:        r.Name,
		City:        r.City,
		Gender:      r.Gender,
		Skill:       r.Skill,
		Description: r.Description,
		ClearAvatar: r.ClearAvatar,
	}
}

func (c *ProfileController) readProfileRequest(ctx *gin.Context) (*ProfileRequest, *service.ImageFile, []service.ImageFile, bool) {
	var req ProfileRequest
	if !bind(ctx, &req) {
		return nil, nil, nil, false
	}
	avatar, err := readImage(ctx, fieldProfilePicture)
	if err != nil {
		util.HandleError(ctx, err)
		return nil, nil, nil, false
	}
	samples, err := readImages(ctx, fieldSampleImages)
	if err != nil {
		util.HandleError(ctx, err)
		return nil, nil, nil, false
	}
	return &req, avatar, samples, true
}

// GetMyProfile godoc
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Profile}
// @Failure 404 {object} util.Response "No profile yet"
// @Router /api/my-profile [get]
func (c *ProfileController) GetMyProfile(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}

	profile, err := c.ProfileService.GetOwn(ctx.Request.Context(), accountID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// CreateMyProfile godoc
// @Summary Create own profile
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param name formData string true "Full name"
// @Param city formData string true "Province"
// @Param gender formData string true "Gender"
// @Param skill formData string false "Skill"
// @Param description formData string false "About"
// @Param profilePicture formData file false "Avatar"
// @Param sampleImages formData file false "Up to five portfolio images"
// @Success 201 {object} util.Response{data=model.Profile}
// @Failure 400 {object} util.Response "Validation error"
// @Failure 409 {object} util.Response "Profile already exists"
// @Router /api/my-profile [post]
func (c *ProfileController) CreateMyProfile(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	req, avatar, samples, ok := c.readProfileRequest(ctx)
	if !ok {
		return
	}

	profile, err := c.ProfileService.Create(ctx.Request.Context(), accountID, req.input(), avatar, samples)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, profile)
}

// UpdateMyProfile godoc
// @Summary Update own profile
// @Description Partial update. New sampleImages are appended while the total stays at most five.
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Profile}
// @Failure 400 {object} util.Response "Validation error or sample limit"
// @Failure 404 {object} util.Response "No profile yet"
// @Router /api/my-profile [patch]
func (c *ProfileController) UpdateMyProfile(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	req, avatar, samples, ok := c.readProfileRequest(ctx)
	if !ok {
		return
	}

	profile, err := c.ProfileService.Update(ctx.Request.Context(), accountID, req.input(), avatar, samples)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// DeleteMyProfile godoc
// @Summary Profiles cannot be deleted
// @Tags Profile
// @Security ApiKeyAuth
// @Failure 405 {object} util.Response
// @Router /api/my-profile [delete]
func (c *ProfileController) DeleteMyProfile(ctx *gin.Context) {
	util.MethodNotAllowed(ctx)
}

// GetPublicProfile godoc
// @Summary Public profile of another account
// @Tags Profile
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "Account ID"
// @Success 200 {object} util.Response{data=service.PublicProfile}
// @Failure 404 {object} util.Response
// @Router /api/my-profile/{userId}/public [get]
func (c *ProfileController) GetPublicProfile(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	profile, err := c.ProfileService.GetPublic(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// DeleteSampleImage godoc
// @Summary Delete a portfolio image
// @Tags Profile
// @Security ApiKeyAuth
// @Param imageId path int true "Image ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/my-profile/images/{imageId} [delete]
func (c *ProfileController) DeleteSampleImage(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}
	imageID, ok := pathID(ctx, "imageId")
	if !ok {
		return
	}

	if err := c.ProfileService.DeleteSampleImage(ctx.Request.Context(), accountID, imageID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
