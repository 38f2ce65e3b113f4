package util

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func bindingValidate(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}

func TestValidPhone(t *testing.T) {
	valid := []string{"09123456789", "989123456789"}
	invalid := []string{"", "0912345678", "091234567890", "9123456789", "+989123456789", "08123456789", "0912345678a"}

	for _, p := range valid {
		assert.True(t, ValidPhone(p), p)
	}
	for _, p := range invalid {
		assert.False(t, ValidPhone(p), p)
	}
}

func TestValidNationalCode(t *testing.T) {
	assert.True(t, ValidNationalCode("0012345678"))
	assert.False(t, ValidNationalCode("12345"))
	assert.False(t, ValidNationalCode("00123456789"))
	assert.False(t, ValidNationalCode("001234567a"))
}

func TestNormalizePage(t *testing.T) {
	page, limit := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)

	_, limit = NormalizePage(3, 5000)
	assert.Equal(t, MaxPageSize, limit)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"Worker", "Contractor"}, SplitCSV(" Worker, ,Contractor,"))
	assert.Nil(t, SplitCSV(""))
}
