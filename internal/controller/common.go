package controller

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// currentAccountID returns the authenticated account id, or 0 after writing
// a 401 when the request carries no claims.
func currentAccountID(ctx *gin.Context) uint {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0
	}
	return claims.AccountID
}

// pathID parses a positive id path parameter, answering 400 when it is invalid.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.HandleError(ctx, util.FieldError(name, "must be a positive integer"))
	}
	return id, ok
}

func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.ContentType(), "multipart/")
}

// readImages loads the uploaded files under field into memory. Requests that
// are not multipart simply carry no images.
func readImages(ctx *gin.Context, field string) ([]service.ImageFile, error) {
	if !isMultipart(ctx) {
		return nil, nil
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, util.FieldError(field, "malformed multipart form")
	}

	headers := form.File[field]
	files := make([]service.ImageFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > service.MaxImageBytes {
			return nil, util.FieldError(field, fmt.Sprintf("%s is larger than 10MB", fh.Filename))
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, service.ImageFile{Name: fh.Filename, Data: data})
	}
	return files, nil
}

// readImage loads at most one file under field.
func readImage(ctx *gin.Context, field string) (*service.ImageFile, error) {
	files, err := readImages(ctx, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	if len(files) > 1 {
		return nil, util.FieldError(field, "only one file is allowed")
	}
	return &files[0], nil
}

func page(list interface{}, total int64, p, limit int) util.PageResponse {
	p, limit = util.NormalizePage(p, limit)
	return util.PageResponse{List: list, Total: total, Page: p, Limit: limit}
}

// bind decodes the body (JSON or form, by content type) into obj. Any
// failure is rendered as a 400 and reported as false.
func bind(ctx *gin.Context, obj interface{}) bool {
	err := ctx.ShouldBind(obj)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		util.HandleError(ctx, err)
		return false
	}
	util.HandleError(ctx, util.NewError(util.KindValidation, "malformed request body"))
	return false
}
