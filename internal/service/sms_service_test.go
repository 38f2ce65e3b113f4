package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"peymonak_backend/internal/config"
	"peymonak_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalReceptor(t *testing.T) {
	assert.Equal(t, "09123456789", LocalReceptor("09123456789"))
	assert.Equal(t, "09123456789", LocalReceptor("989123456789"))
	assert.Equal(t, "09123456789", LocalReceptor("+989123456789"))
}

func TestKavenegarSenderSuccess(t *testing.T) {
	var gotPath, receptor, message string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		receptor = r.PostForm.Get("receptor")
		message = r.PostForm.Get("message")
		w.Write([]byte(`{"return":{"status":200,"message":"ok"}}`))
	}))
	defer srv.Close()

	s := NewKavenegarSender(config.SMSConfig{APIKey: "KEY", BaseURL: srv.URL, TimeoutSeconds: 2})
	err := s.Send(context.Background(), "989121112233", "Your verification code: 123456")

	require.NoError(t, err)
	assert.Equal(t, "/v1/KEY/sms/send.json", gotPath)
	assert.Equal(t, "09121112233", receptor)
	assert.Equal(t, "Your verification code: 123456", message)
}

func TestKavenegarSenderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"return":{"status":401,"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	s := NewKavenegarSender(config.SMSConfig{APIKey: "bad", BaseURL: srv.URL})
	err := s.Send(context.Background(), "09121112233", "hi")

	require.Error(t, err)
	assert.Equal(t, util.KindUpstreamFailure, util.KindOf(err))
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestKavenegarSenderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := NewKavenegarSender(config.SMSConfig{APIKey: "k", BaseURL: srv.URL})
	err := s.Send(context.Background(), "09121112233", "hi")
	assert.Equal(t, util.KindUpstreamFailure, util.KindOf(err))
}

func TestKavenegarSenderTruncatedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "200")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"return":`))
	}))
	defer srv.Close()

	s := NewKavenegarSender(config.SMSConfig{APIKey: "k", BaseURL: srv.URL, TimeoutSeconds: 2})
	err := s.Send(context.Background(), "09121112233", "hi")

	require.Error(t, err)
	assert.Equal(t, util.KindUpstreamFailure, util.KindOf(err))
	assert.Contains(t, err.Error(), "read body")
}
