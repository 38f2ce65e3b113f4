package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfFollowsWrapping(t *testing.T) {
	err := fmt.Errorf("create ad: %w", ErrAdQuotaExceeded)
	assert.Equal(t, KindQuotaExceeded, KindOf(err))
	assert.True(t, errors.Is(err, ErrAdQuotaExceeded))
	assert.False(t, errors.Is(err, ErrAdImageLimit))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestAppErrorStatus(t *testing.T) {
	cases := map[*AppError]int{
		FieldError("phone", "bad"):   http.StatusBadRequest,
		ErrDuplicateRequest:          http.StatusConflict,
		ErrAdNotFound:                http.StatusNotFound,
		ErrNotRecipient:              http.StatusForbidden,
		ErrAdQuotaExceeded:           http.StatusConflict,
		ErrSampleLimit:               http.StatusBadRequest,
		ErrProfileRequired:           http.StatusPreconditionFailed,
		ErrCodeMismatch:              http.StatusBadRequest,
		ErrSMSDeliveryFailed:         http.StatusBadGateway,
		ErrResendTooSoon:             http.StatusTooManyRequests,
		NewError(Kind("other"), "x"): http.StatusInternalServerError,
	}
	for e, status := range cases {
		assert.Equal(t, status, e.Status(), e.Message)
	}
}

func render(t *testing.T, err error) (int, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, err)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHandleErrorRendersAppError(t *testing.T) {
	code, resp := render(t, NewValidationError(map[string]string{"title": "this field is required"}))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(KindValidation), resp.Reason)
	assert.Equal(t, "this field is required", resp.Errors["title"])
}

func TestHandleErrorRendersBindingErrors(t *testing.T) {
	RegisterValidators()
	type payload struct {
		Phone string `json:"phone" binding:"required,phone"`
	}
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	var p payload
	p.Phone = "12345"
	err := bindingValidate(&p)
	require.Error(t, err)
	HandleError(c, err)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Errors["phone"], "09")
}

func TestHandleErrorHidesInternalErrors(t *testing.T) {
	code, resp := render(t, errors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", resp.Message)
}
