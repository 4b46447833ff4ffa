package dns

import "context"

// IProvider narrow capability interface for the DNS hosting collaborator
type IProvider interface {
	CreateZone(ctx context.Context, domainName string) (zoneRef string, err error)
	ListNameservers(ctx context.Context, zoneRef string) ([]string, error)
}
