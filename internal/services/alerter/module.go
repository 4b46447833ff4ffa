package alerter

import (
	"context"
	"fmt"

	"github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/alerter"
	"github.com/Moxx-Company/Nomadly2/internal/ports/service"
)

// Service implements IAlerterService
type Service struct {
	client *alerter.Client
}

// New creates the alert sending service
func New(client *alerter.Client) service.IAlerterService {
	return &Service{
		client: client,
	}
}

// SendAlert sends an alert
func (s *Service) SendAlert(ctx context.Context, message string) error {
	if s.client == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	return s.client.SendAlert(ctx, message)
}
