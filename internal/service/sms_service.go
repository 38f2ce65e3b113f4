package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"peymonak_backend/internal/config"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"
	"peymonak_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// SMSSender delivers one text message. Implementations must honour ctx and
// return an *util.AppError of kind UPSTREAM_FAILURE when the gateway refuses.
type SMSSender interface {
	Send(ctx context.Context, phone, text string) error
}

func NewSMSSender(cfg config.SMSConfig) (SMSSender, error) {
	switch cfg.Provider {
	case "kavenegar":
		return NewKavenegarSender(cfg), nil
	case "log", "":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported sms provider %q", cfg.Provider)
	}
}

// KavenegarSender posts to the Kavenegar REST API.
type KavenegarSender struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewKavenegarSender(cfg config.SMSConfig) *KavenegarSender {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KavenegarSender{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type kavenegarResponse struct {
	Return struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"return"`
}

// LocalReceptor rewrites 989xxxxxxxxx into the 09xxxxxxxxx form the gateway expects.
func LocalReceptor(phone string) string {
	if strings.HasPrefix(phone, "09") {
		return phone
	}
	return "0" + strings.TrimPrefix(strings.TrimPrefix(phone, "+"), "98")
}

func (s *KavenegarSender) Send(ctx context.Context, phone, text string) error {
	endpoint := fmt.Sprintf("%s/v1/%s/sms/send.json", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.APIKey)

	form := url.Values{}
	form.Set("receptor", LocalReceptor(phone))
	form.Set("message", text)
	if s.cfg.Sender != "" {
		form.Set("sender", s.cfg.Sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		monitoring.SMSDispatches.WithLabelValues("kavenegar", "unreachable").Inc()
		logger.Log.Error("SMS gateway unreachable", zap.Error(err))
		return util.Wrap(util.KindUpstreamFailure, util.ErrSMSGatewayUnreached.Message, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if readErr != nil {
		logger.Log.Warn("Failed to read SMS gateway response", zap.Int("status", resp.StatusCode), zap.Error(readErr))
	}
	if resp.StatusCode != http.StatusOK {
		monitoring.SMSDispatches.WithLabelValues("kavenegar", "rejected").Inc()
		msg := gatewayMessage(body)
		logger.Log.Warn("SMS gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("gateway_message", msg),
		)
		cause := fmt.Errorf("kavenegar status %d", resp.StatusCode)
		if readErr != nil {
			cause = fmt.Errorf("kavenegar status %d: read body: %w", resp.StatusCode, readErr)
		}
		return util.Wrap(util.KindUpstreamFailure, util.ErrSMSDeliveryFailed.Message+": "+msg, cause)
	}

	monitoring.SMSDispatches.WithLabelValues("kavenegar", "sent").Inc()
	return nil
}

func gatewayMessage(body []byte) string {
	var parsed kavenegarResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Return.Message == "" {
		return "unknown error"
	}
	return parsed.Return.Message
}

// LogSender writes messages to the application log instead of sending them.
// Only for development; config validation refuses it in release mode.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, phone, text string) error {
	if ctx.Err() != nil {
		return errors.Join(util.ErrSMSGatewayUnreached, ctx.Err())
	}
	monitoring.SMSDispatches.WithLabelValues("log", "sent").Inc()
	logger.Log.Info("SMS (log provider)", zap.String("phone", phone), zap.String("text", text))
	return nil
}
