package service_test

import (
	"context"
	"testing"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportContacts(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	require.NoError(t, env.DB.Create(&model.SupportContact{Email: "help@example.com", TelegramLink: "https://t.me/help"}).Error)
	contacts, err := env.Support.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "help@example.com", contacts[0].Email)
}
