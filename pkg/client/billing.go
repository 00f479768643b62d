package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/value"
)

const billingService = "billing"

// Transports the billing API can deliver an order through.
var Transports = []string{"SMTP", "Letter", "Peppol", "SDI", "KSeF", "OSA", "ANAF", "SAT"}

var (
	ErrOrderNotFound   = errors.New("billing order not found")
	ErrOrderPDFTimeout = errors.New("billing order PDF not available")
)

type BillingConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	PDFInitialWait time.Duration
	PDFInterval    time.Duration
	PDFMaxRetries  int
}

// BillingFile is a document stored by the billing API. Content is base64.
type BillingFile struct {
	FileID      string `json:"FileID"`
	FileName    string `json:"FileName"`
	MimeType    string `json:"MimeType"`
	FileContent string `json:"FileContent"`
}

// BillingClient talks to the billing API that receives assembled documents.
type BillingClient struct {
	http  *JSONClient
	cfg   BillingConfig
	sleep func(ctx context.Context, d time.Duration) error
}

func NewBillingClient(cfg BillingConfig) *BillingClient {
	hc := NewJSONClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout)
	hc.SetHeader("ApiKey", cfg.APIKey)
	hc.SetHeader("Accept", "application/json")

	return &BillingClient{http: hc, cfg: cfg, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func upstreamError(op string, resp *Response) error {
	return apperrors.ExternalAPI(billingService, resp.StatusCode,
		fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, ErrorMessage(resp)))
}

// PostOrder creates an order from a billing document and returns its id.
// The order still has to be sent with SendOrder.
func (c *BillingClient) PostOrder(ctx context.Context, document *value.Object) (int64, error) {
	body, err := document.MarshalJSON()
	if err != nil {
		return 0, fmt.Errorf("encode billing document: %w", err)
	}

	resp, err := c.http.Do(ctx, http.MethodPost, "/v1/orders", body)
	if err != nil {
		return 0, apperrors.ExternalAPI(billingService, 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, upstreamError("post order", resp)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(resp.Body)), 10, 64)
	if err != nil {
		return 0, apperrors.ExternalAPI(billingService, resp.StatusCode, fmt.Errorf("unexpected order id %q", resp.Body))
	}
	return id, nil
}

// SendOrder delivers an existing order through transport.
func (c *BillingClient) SendOrder(ctx context.Context, orderID int64, transport string) error {
	if !slices.Contains(Transports, transport) {
		return apperrors.Validation(
			fmt.Sprintf("Invalid transport type: %s", transport),
			map[string]any{"allowed": Transports},
		)
	}

	payload := map[string]any{
		"Transporttype": transport,
		"OrderIDs":      []int64{orderID},
	}
	resp, err := c.http.Post(ctx, "/v1/orders/commands/send", payload)
	if err != nil {
		return apperrors.ExternalAPI(billingService, 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return upstreamError("send order", resp)
	}
	return nil
}

// GetOrder returns the order details with the API's key order intact.
func (c *BillingClient) GetOrder(ctx context.Context, orderID int64) (value.Value, error) {
	resp, err := c.http.Get(ctx, "/v1/orders/"+strconv.FormatInt(orderID, 10))
	if err != nil {
		return value.Value{}, apperrors.ExternalAPI(billingService, 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return value.Value{}, upstreamError("get order", resp)
	}
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return value.Null(), nil
	}

	v, err := value.Parse(resp.Body)
	if err != nil {
		return value.Value{}, apperrors.ExternalAPI(billingService, resp.StatusCode, fmt.Errorf("decode order: %w", err))
	}
	return v, nil
}

func (c *BillingClient) GetFile(ctx context.Context, fileID string) (*BillingFile, error) {
	resp, err := c.http.Get(ctx, "/v1/files/"+url.PathEscape(fileID))
	if err != nil {
		return nil, apperrors.ExternalAPI(billingService, 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("get file", resp)
	}

	var file BillingFile
	if err := resp.DecodeJSON(&file); err != nil {
		return nil, apperrors.ExternalAPI(billingService, resp.StatusCode, fmt.Errorf("decode file: %w", err))
	}
	return &file, nil
}

// FetchOrderWithPDF polls the order until the API has rendered its PDF. It
// waits PDFInitialWait first, then checks up to PDFMaxRetries+1 times,
// PDFInterval apart.
func (c *BillingClient) FetchOrderWithPDF(ctx context.Context, orderID int64) (*value.Object, error) {
	if err := c.sleep(ctx, c.cfg.PDFInitialWait); err != nil {
		return nil, err
	}

	for attempt := 0; attempt <= c.cfg.PDFMaxRetries; attempt++ {
		details, err := c.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}

		order, ok := details.Object()
		if !ok || order.Len() == 0 {
			return nil, fmt.Errorf("%w: order id %d", ErrOrderNotFound, orderID)
		}
		if order.Has("OrderPDF") {
			return order, nil
		}

		if attempt < c.cfg.PDFMaxRetries {
			if err := c.sleep(ctx, c.cfg.PDFInterval); err != nil {
				return nil, err
			}
		}
	}

	waited := c.cfg.PDFInitialWait + time.Duration(c.cfg.PDFMaxRetries)*c.cfg.PDFInterval
	return nil, fmt.Errorf("%w: order id %d after %s", ErrOrderPDFTimeout, orderID, waited)
}
