package service

import (
	"context"
)

// IAlerterService interface for sending ops alerts
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
