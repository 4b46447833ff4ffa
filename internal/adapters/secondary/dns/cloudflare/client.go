package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	ports "github.com/Moxx-Company/Nomadly2/internal/ports/dns"
)

const (
	serviceName = "cloudflare"
	apiTimeout  = 30 * time.Second
)

// Client Cloudflare v4 API client scoped to zone management
type Client struct {
	httpClient *http.Client
	cfg        *Config
	log        *slog.Logger
}

// NewClient creates the DNS provider client
func NewClient(cfg *Config, log *slog.Logger) ports.IProvider {
	return &Client{
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		cfg: cfg,
		log: log,
	}
}

type zoneResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Nameservers []string `json:"name_servers"`
}

type zoneResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result zoneResult `json:"result"`
}

// CreateZone creates a full zone and returns its id
func (c *Client) CreateZone(ctx context.Context, domainName string) (string, error) {
	reqBody := map[string]interface{}{
		"name": domainName,
		"type": "full",
	}
	if c.cfg.AccountID != "" {
		reqBody["account"] = map[string]string{"id": c.cfg.AccountID}
	}

	result, err := c.do(ctx, http.MethodPost, "/zones", reqBody, "create zone")
	if err != nil {
		return "", err
	}

	c.log.Info("dns zone created",
		"domain", domainName,
		"zone_ref", result.ID,
		"nameservers", result.Nameservers,
	)

	return result.ID, nil
}

// ListNameservers returns the nameservers assigned to a zone
func (c *Client) ListNameservers(ctx context.Context, zoneRef string) ([]string, error) {
	result, err := c.do(ctx, http.MethodGet, "/zones/"+zoneRef, nil, "get zone")
	if err != nil {
		return nil, err
	}

	if len(result.Nameservers) == 0 {
		return nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      "get zone",
			Err:     fmt.Errorf("zone %s has no nameservers assigned yet", zoneRef),
		}
	}

	return result.Nameservers, nil
}

// do performs one API call and maps failures onto domain error types
func (c *Client) do(ctx context.Context, method, path string, reqBody interface{}, op string) (*zoneResult, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("read response body: %w", err),
		}
	}

	if resp.StatusCode >= 500 {
		return nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var apiResp zoneResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &domain.ExternalServiceError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("unmarshal response: %w", err),
		}
	}

	if !apiResp.Success {
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		if len(apiResp.Errors) > 0 {
			reason = fmt.Sprintf("code %d: %s", apiResp.Errors[0].Code, apiResp.Errors[0].Message)
		}

		// rate limits come back as 4xx but are worth retrying
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &domain.ExternalServiceError{
				Service: serviceName,
				Op:      op,
				Err:     fmt.Errorf("rate limited: %s", reason),
			}
		}

		return nil, &domain.ExternalServiceRejected{
			Service: serviceName,
			Op:      op,
			Reason:  reason,
		}
	}

	return &apiResp.Result, nil
}
