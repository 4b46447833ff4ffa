package openprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	ports "github.com/Moxx-Company/Nomadly2/internal/ports/registrar"
)

const (
	serviceName = "openprovider"
	apiTimeout  = 30 * time.Second
)

// Client OpenProvider v1beta API client. Holds a bearer token obtained from
// auth/login and re-authenticates once on 401.
type Client struct {
	httpClient *http.Client
	cfg        *Config
	log        *slog.Logger

	mu    sync.Mutex
	token string
}

// NewClient creates the registrar client
func NewClient(cfg *Config, log *slog.Logger) ports.IRegistrar {
	return &Client{
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		cfg: cfg,
		log: log,
	}
}

type apiError struct {
	Code int    `json:"code"`
	Desc string `json:"desc"`
}

// CheckAvailability checks a single domain and returns its wholesale price
func (c *Client) CheckAvailability(ctx context.Context, domainName string) (*ports.Availability, error) {
	name, extension, err := splitDomain(domainName)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"domains": []map[string]string{
			{"name": name, "extension": extension},
		},
		"with_price": true,
	}

	var result struct {
		Data struct {
			Results []struct {
				Domain string `json:"domain"`
				Status string `json:"status"`
				Price  struct {
					Reseller struct {
						Price    float64 `json:"price"`
						Currency string  `json:"currency"`
					} `json:"reseller"`
				} `json:"price"`
			} `json:"results"`
		} `json:"data"`
	}

	if err := c.do(ctx, http.MethodPost, "/v1beta/domains/check", reqBody, &result); err != nil {
		return nil, err
	}

	if len(result.Data.Results) == 0 {
		return nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      "check availability",
			Err:     fmt.Errorf("empty results for %s", domainName),
		}
	}

	res := result.Data.Results[0]
	availability := &ports.Availability{
		DomainName:  domainName,
		Available:   res.Status == "free",
		PriceAmount: int64(res.Price.Reseller.Price * 100),
		Currency:    strings.ToUpper(res.Price.Reseller.Currency),
	}
	if availability.Currency == "" {
		availability.Currency = "USD"
	}

	c.log.Debug("domain availability checked",
		"domain", domainName,
		"available", availability.Available,
		"price", availability.PriceAmount,
	)

	return availability, nil
}

// RegisterDomain creates a customer handle for the contact and submits the
// registration with the zone nameservers
func (c *Client) RegisterDomain(ctx context.Context, req ports.RegisterRequest) (string, error) {
	name, extension, err := splitDomain(req.DomainName)
	if err != nil {
		return "", err
	}

	handle, err := c.createCustomerHandle(ctx, req.Contact)
	if err != nil {
		return "", err
	}

	nameservers := make([]map[string]string, 0, len(req.Nameservers))
	for _, ns := range req.Nameservers {
		nameservers = append(nameservers, map[string]string{"name": ns})
	}

	reqBody := map[string]interface{}{
		"domain":         map[string]string{"name": name, "extension": extension},
		"period":         1,
		"owner_handle":   handle,
		"admin_handle":   handle,
		"tech_handle":    handle,
		"billing_handle": handle,
		"nameservers":    nameservers,
		"use_domainlock": true,
		"autorenew":      false,
		"dnssec":         false,
	}

	var result struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}

	if err := c.do(ctx, http.MethodPost, "/v1beta/domains", reqBody, &result); err != nil {
		return "", err
	}

	registrarRef := fmt.Sprintf("%d", result.Data.ID)
	c.log.Info("domain registered",
		"domain", req.DomainName,
		"registrar_ref", registrarRef,
	)

	return registrarRef, nil
}

// createCustomerHandle registers the contact and returns its handle id
func (c *Client) createCustomerHandle(ctx context.Context, contact ports.Contact) (string, error) {
	reqBody := map[string]interface{}{
		"company_name": "Individual",
		"name": map[string]string{
			"first_name": contact.FirstName,
			"last_name":  contact.LastName,
		},
		"email": contact.Email,
	}

	var result struct {
		Data struct {
			Handle string `json:"handle"`
		} `json:"data"`
	}

	if err := c.do(ctx, http.MethodPost, "/v1beta/customers", reqBody, &result); err != nil {
		return "", err
	}

	if result.Data.Handle == "" {
		return "", &domain.ExternalServiceError{
			Service: serviceName,
			Op:      "create customer handle",
			Err:     fmt.Errorf("empty handle in response"),
		}
	}

	return result.Data.Handle, nil
}

// do performs one authenticated API call, re-authenticating once on 401
func (c *Client) do(ctx context.Context, method, path string, reqBody interface{}, dest interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	status, body, err := c.request(ctx, method, path, reqBody, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		token, err = c.authenticate(ctx)
		if err != nil {
			return err
		}
		status, body, err = c.request(ctx, method, path, reqBody, token)
		if err != nil {
			return err
		}
	}

	op := method + " " + path

	if status >= 500 {
		return &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("status %d: %s", status, truncate(body)),
		}
	}

	if status != http.StatusOK {
		return &domain.ExternalServiceRejected{
			Service: serviceName,
			Op:      op,
			Reason:  fmt.Sprintf("status %d: %s", status, truncate(body)),
		}
	}

	// code != 0 in a 200 response is a definitive API refusal
	var envelope struct {
		Code int    `json:"code"`
		Desc string `json:"desc"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Code != 0 {
		return &domain.ExternalServiceRejected{
			Service: serviceName,
			Op:      op,
			Reason:  fmt.Sprintf("code %d: %s", envelope.Code, envelope.Desc),
		}
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return &domain.ExternalServiceError{
				Service: serviceName,
				Op:      op,
				Err:     fmt.Errorf("unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// ensureToken returns the cached token, authenticating on first use
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token != "" {
		return token, nil
	}
	return c.authenticate(ctx)
}

// authenticate performs auth/login and caches the bearer token
func (c *Client) authenticate(ctx context.Context) (string, error) {
	reqBody := map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	}

	status, body, err := c.request(ctx, http.MethodPost, "/v1beta/auth/login", reqBody, "")
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		return "", &domain.ExternalServiceError{
			Service: serviceName,
			Op:      "auth",
			Err:     fmt.Errorf("status %d: %s", status, truncate(body)),
		}
	}

	var result struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.Data.Token == "" {
		return "", &domain.ExternalServiceError{
			Service: serviceName,
			Op:      "auth",
			Err:     fmt.Errorf("no token in response"),
		}
	}

	c.mu.Lock()
	c.token = result.Data.Token
	c.mu.Unlock()

	c.log.Debug("openprovider authenticated")
	return result.Data.Token, nil
}

// request performs one raw HTTP round trip
func (c *Client) request(ctx context.Context, method, path string, reqBody interface{}, token string) (int, []byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      method + " " + path,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      method + " " + path,
			Err:     fmt.Errorf("read response body: %w", err),
		}
	}

	return resp.StatusCode, body, nil
}

// splitDomain separates "example.com" into name and extension
func splitDomain(domainName string) (string, string, error) {
	idx := strings.Index(domainName, ".")
	if idx <= 0 || idx == len(domainName)-1 {
		return "", "", fmt.Errorf("invalid domain name: %s", domainName)
	}
	return domainName[:idx], domainName[idx+1:], nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
