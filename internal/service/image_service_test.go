package service_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"peymonak_backend/internal/service"
	"peymonak_backend/internal/testutil"
	"peymonak_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProducesJPEG(t *testing.T) {
	out, err := service.Normalize(testutil.PNG(t))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 8, img.Bounds().Dx())

	// The transparent corner is flattened onto white.
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Greater(t, r>>8, uint32(200))

	_, err = jpeg.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
}

func TestNormalizeRejectsNonImages(t *testing.T) {
	_, err := service.Normalize([]byte("%PDF-1.4 not an image"))
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = service.Normalize(make([]byte, service.MaxImageBytes+1))
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestNormalizeRejectsOversizedDimensions(t *testing.T) {
	data := testutil.PNGHeader(20000, 20000)
	require.Less(t, len(data), 100)

	_, err := service.Normalize(data)
	require.Error(t, err)
	var appErr *util.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, util.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields["images"], "20000x20000")
}

func TestStoreBatchRejectsOversizedDimensions(t *testing.T) {
	env := testutil.NewEnv(t)
	files := append(testutil.Images(t, 2), service.ImageFile{Name: "huge.png", Data: testutil.PNGHeader(10000, 10000)})

	stored, err := env.Images.StoreBatch(context.Background(), util.ScopeAdImage, files)
	require.Error(t, err)
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	assert.Empty(t, stored)
	assert.Zero(t, env.Storage.Len())
}

func TestImageKey(t *testing.T) {
	a := service.ImageKey(util.ScopeProfileSample)
	b := service.ImageKey(util.ScopeProfileSample)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "profile/sample/"))
	assert.True(t, strings.HasSuffix(a, "_compressed.jpg"))
}

func TestStoreBatchEmpty(t *testing.T) {
	env := testutil.NewEnv(t)
	stored, err := env.Images.StoreBatch(context.Background(), util.ScopeAdImage, nil)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Zero(t, env.Storage.Len())
}
