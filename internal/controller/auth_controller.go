package controller

import (
	"peymonak_backend/internal/model"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Verification *service.VerificationService
	AuthService  *service.AuthService
	Tokens       *service.TokenService
}

func NewAuthController(verification *service.VerificationService, authService *service.AuthService, tokens *service.TokenService) *AuthController {
	return &AuthController{
		Verification: verification,
		AuthService:  authService,
		Tokens:       tokens,
	}
}

// swagger:model PhoneRequest
type PhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" binding:"required,phone"`
}

// swagger:model VerifyRequest
type VerifyRequest struct {
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" binding:"required,phone"`
	Code        string `json:"code" form:"code" binding:"required,len=6,numeric"`
}

// swagger:model RegisterRequest
type RegisterRequest struct {
	PhoneNumber  string `json:"phoneNumber" form:"phoneNumber" binding:"required,phone"`
	Role         string `json:"role" form:"role" binding:"required,oneof=Constructor Contractor Worker"`
	NationalCode string `json:"nationalCode" form:"nationalCode" binding:"required,nationalcode"`
}

// swagger:model RefreshRequest
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken" binding:"required"`
}

// swagger:model LogoutRequest
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// RequestVerification godoc
// @Summary Send a verification code
// @Description Sends a 6-digit code by SMS to an unverified phone number. Verified numbers are reported as such.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body PhoneRequest true "Phone number"
// @Success 200 {object} util.Response{data=service.RequestCodeResult}
// @Failure 400 {object} util.Response "Invalid phone number"
// @Failure 429 {object} util.Response "Code sent too recently"
// @Failure 502 {object} util.Response "SMS gateway failure"
// @Router /api/request-verification [post]
func (c *AuthController) RequestVerification(ctx *gin.Context) {
	var req PhoneRequest
	if !bind(ctx, &req) {
		return
	}

	res, err := c.Verification.RequestCode(ctx.Request.Context(), req.PhoneNumber)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// RequestLoginCode godoc
// @Summary Send a login code
// @Description Sends a new code to a verified account; submit it to /api/auth/verify to obtain tokens.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body PhoneRequest true "Phone number"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "Unknown phone number"
// @Failure 412 {object} util.Response "Account is not verified"
// @Router /api/auth/login/request-code [post]
func (c *AuthController) RequestLoginCode(ctx *gin.Context) {
	var req PhoneRequest
	if !bind(ctx, &req) {
		return
	}

	if err := c.Verification.RequestLoginCode(ctx.Request.Context(), req.PhoneNumber); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "verification code sent"})
}

// VerifyCode godoc
// @Summary Submit a verification code
// @Description Consumes the pending code. Verified accounts receive a token pair, others continue with registration.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body VerifyRequest true "Phone number and code"
// @Success 200 {object} util.Response{data=service.SubmitCodeResult}
// @Failure 400 {object} util.Response "Code mismatch"
// @Failure 404 {object} util.Response "No pending code"
// @Router /api/auth/verify [post]
func (c *AuthController) VerifyCode(ctx *gin.Context) {
	var req VerifyRequest
	if !bind(ctx, &req) {
		return
	}

	res, err := c.Verification.SubmitCode(ctx.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// Register godoc
// @Summary Complete registration
// @Description Binds a role and national code to the phone number and marks the account verified.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} util.Response{data=service.RegisterResult}
// @Failure 400 {object} util.Response "Validation error"
// @Failure 409 {object} util.Response "Already registered"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if !bind(ctx, &req) {
		return
	}

	res, err := c.AuthService.Register(ctx.Request.Context(), service.RegisterInput{
		PhoneNumber:  req.PhoneNumber,
		Role:         model.Role(req.Role),
		NationalCode: req.NationalCode,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// RefreshToken godoc
// @Summary Rotate tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} util.Response{data=util.TokenPair}
// @Failure 401 {object} util.Response "Invalid refresh token"
// @Router /api/token/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req RefreshRequest
	if !bind(ctx, &req) {
		return
	}

	pair, err := c.Tokens.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pair)
}

// Logout godoc
// @Summary Revoke the current tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body LogoutRequest false "Refresh token to revoke as well"
// @Success 204
// @Failure 401 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req LogoutRequest
	if ctx.Request.ContentLength > 0 && !bind(ctx, &req) {
		return
	}

	if err := c.Tokens.Logout(ctx.Request.Context(), claims, req.RefreshToken); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// CurrentUser godoc
// @Summary Current account
// @Tags Auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Account}
// @Failure 401 {object} util.Response
// @Router /api/user [get]
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	accountID := currentAccountID(ctx)
	if accountID == 0 {
		return
	}

	account, err := c.AuthService.CurrentAccount(ctx.Request.Context(), accountID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, account)
}
