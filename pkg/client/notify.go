package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "ordernorm/pkg/errors"
)

const notifyService = "notifications"

// Push messages longer than this are cut; push gateways reject or truncate
// long query strings anyway.
const maxNotifyMessage = 1000

type NotifyConfig struct {
	BaseURL  string
	APIKey   string
	DeviceID string
	Timeout  time.Duration
}

// NotifyClient sends short push messages to an operator device. Key, device
// and message go as query parameters of a GET on /api, the way Pushsafer
// style gateways take them.
type NotifyClient struct {
	http *JSONClient
	cfg  NotifyConfig
}

func NewNotifyClient(cfg NotifyConfig) *NotifyClient {
	return &NotifyClient{
		http: NewJSONClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout),
		cfg:  cfg,
	}
}

func (c *NotifyClient) Send(ctx context.Context, message string) error {
	if len(message) > maxNotifyMessage {
		message = strings.ToValidUTF8(message[:maxNotifyMessage], "")
	}
	q := url.Values{
		"k": {c.cfg.APIKey},
		"d": {c.cfg.DeviceID},
		"m": {message},
	}

	resp, err := c.http.Get(ctx, "/api?"+q.Encode())
	if err != nil {
		return apperrors.ExternalAPI(notifyService, 0, fmt.Errorf("send notification: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.ExternalAPI(notifyService, resp.StatusCode,
			fmt.Errorf("send notification: status %d: %s", resp.StatusCode, ErrorMessage(resp)))
	}
	return nil
}
