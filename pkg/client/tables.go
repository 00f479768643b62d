package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/mapping"
	"ordernorm/pkg/value"
)

const tablesService = "tables"

// PayloadProperties are attached to every row sync request.
type PayloadProperties struct {
	Locale       string         `json:"Locale"`
	Location     string         `json:"Location"`
	Timezone     string         `json:"Timezone"`
	Currency     string         `json:"-"`
	Selector     string         `json:"Selector,omitempty"`
	UserSettings map[string]any `json:"UserSettings,omitempty"`
}

type TablesConfig struct {
	BaseURL    string
	AppID      string
	AccessKey  string
	MaxRetries int
	Properties PayloadProperties
}

// TableAction is one row sync call: Action is applied to Rows of Table.
type TableAction struct {
	Table        string
	Action       string
	Rows         []value.Value
	Selector     string
	UserSettings map[string]any
}

type tablePayload struct {
	Action     string            `json:"Action"`
	Properties PayloadProperties `json:"Properties"`
	Rows       []value.Value     `json:"Rows"`
}

// TablesClient pushes normalized rows to a spreadsheet-style table API.
type TablesClient struct {
	http  *JSONClient
	cfg   TablesConfig
	sleep func(ctx context.Context, d time.Duration) error
}

func NewTablesClient(cfg TablesConfig) *TablesClient {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return &TablesClient{
		http:  NewJSONClient(strings.TrimRight(cfg.BaseURL, "/"), 60*time.Second),
		cfg:   cfg,
		sleep: sleepCtx,
	}
}

func (c *TablesClient) path(table string) string {
	return fmt.Sprintf("/api/v2/apps/%s/tables/%s/Action?applicationAccessKey=%s",
		url.PathEscape(c.cfg.AppID), url.PathEscape(table), url.QueryEscape(c.cfg.AccessKey))
}

// PostRows sends action. Transport failures are retried with a doubling
// backoff starting at one second; a non-200 answer is not retried.
func (c *TablesClient) PostRows(ctx context.Context, action TableAction) (*Response, error) {
	if err := mapping.RequireArgs(
		mapping.Arg{Name: "table", Value: action.Table},
		mapping.Arg{Name: "action", Value: action.Action},
		mapping.Arg{Name: "app_id", Value: c.cfg.AppID},
		mapping.Arg{Name: "app_access_key", Value: c.cfg.AccessKey},
	); err != nil {
		return nil, err
	}

	props := c.cfg.Properties
	props.Selector = action.Selector
	props.UserSettings = action.UserSettings

	rows := action.Rows
	if rows == nil {
		rows = []value.Value{}
	}
	payload := tablePayload{Action: action.Action, Properties: props, Rows: rows}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.http.Post(ctx, c.path(action.Table), payload)
		if err == nil {
			if resp.StatusCode != http.StatusOK {
				return nil, apperrors.ExternalAPI(tablesService, resp.StatusCode,
					fmt.Errorf("post rows to %s: status %d: %s", action.Table, resp.StatusCode, ErrorMessage(resp)))
			}
			if strings.TrimSpace(string(resp.Body)) == "" {
				return nil, apperrors.ExternalAPI(tablesService, resp.StatusCode,
					fmt.Errorf("no data returned, nothing posted to table %s", action.Table))
			}
			return resp, nil
		}
		lastErr = err

		if attempt < c.cfg.MaxRetries {
			if err := c.sleep(ctx, time.Duration(1<<(attempt-1))*time.Second); err != nil {
				return nil, err
			}
		}
	}

	return nil, apperrors.ExternalAPI(tablesService, 0,
		fmt.Errorf("table %s unreachable after %d attempts: %w", action.Table, c.cfg.MaxRetries, lastErr))
}
