package blockbee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	ports "github.com/Moxx-Company/Nomadly2/internal/ports/payment"
)

const (
	serviceName = "blockbee"
	apiTimeout  = 15 * time.Second
)

// Client BlockBee crypto gateway client. Creates receive addresses bound to
// our callback URL; confirmations then arrive only through that callback.
type Client struct {
	httpClient *http.Client
	cfg        *Config
	log        *slog.Logger
}

// NewClient creates the gateway client
func NewClient(cfg *Config, log *slog.Logger) ports.IGateway {
	return &Client{
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		cfg: cfg,
		log: log,
	}
}

type createResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	AddressIn string `json:"address_in"`
}

type checkoutResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	PaymentURL string `json:"payment_url"`
}

// CreatePaymentAddress requests a receive address for one order. The hosted
// checkout page is optional; failing to get one is not an error.
func (c *Client) CreatePaymentAddress(ctx context.Context, req ports.CreateAddressRequest) (*ports.PaymentAddress, error) {
	params := url.Values{}
	params.Set("apikey", c.cfg.APIKey)
	params.Set("callback", req.CallbackURL)
	params.Set("order_id", req.OrderID.String())

	endpoint := fmt.Sprintf("%s/%s/create/?%s", c.cfg.BaseURL, req.Crypto, params.Encode())

	var result createResponse
	if err := c.get(ctx, endpoint, "create address", &result); err != nil {
		return nil, err
	}

	if result.Status != "success" {
		return nil, &domain.ExternalServiceRejected{
			Service: serviceName,
			Op:      "create address",
			Reason:  result.Error,
		}
	}

	addr := &ports.PaymentAddress{
		Address: result.AddressIn,
	}

	if paymentURL, err := c.requestCheckout(ctx, req); err != nil {
		c.log.Warn("failed to create checkout page",
			"order_id", req.OrderID,
			"error", err,
		)
	} else {
		addr.PaymentURL = paymentURL
	}

	c.log.Info("payment address created",
		"order_id", req.OrderID,
		"crypto", req.Crypto,
		"address", addr.Address,
	)

	return addr, nil
}

// requestCheckout asks for a hosted payment page for the quoted fiat value
func (c *Client) requestCheckout(ctx context.Context, req ports.CreateAddressRequest) (string, error) {
	params := url.Values{}
	params.Set("apikey", c.cfg.APIKey)
	params.Set("redirect_url", req.CallbackURL)
	params.Set("value", fmt.Sprintf("%d.%02d", req.Amount/100, req.Amount%100))
	params.Set("currency", req.Currency)
	params.Set("item_description", "Domain registration "+req.OrderID.String())

	endpoint := fmt.Sprintf("%s/checkout/request/?%s", c.cfg.BaseURL, params.Encode())

	var result checkoutResponse
	if err := c.get(ctx, endpoint, "checkout request", &result); err != nil {
		return "", err
	}

	if result.Status != "success" || result.PaymentURL == "" {
		return "", fmt.Errorf("checkout request refused: %s", result.Error)
	}

	return result.PaymentURL, nil
}

// get performs one GET call and decodes the JSON body
func (c *Client) get(ctx context.Context, endpoint, op string, dest interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("read response body: %w", err),
		}
	}

	if resp.StatusCode >= 500 {
		return &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("unmarshal response: %w", err),
		}
	}

	return nil
}
