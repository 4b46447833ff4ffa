package domainRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/persistence"
	ports "github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/google/uuid"
)

type domainColumns struct {
	TableName    string
	ID           string
	UserID       string
	OrderID      string
	DomainName   string
	DNSZoneRef   string
	RegistrarRef string
	Nameservers  string
	RegisteredAt string
	ExpiresAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns domainColumns
}

// New creates a repository for provisioned domains
func New(db persistence.Persistence, log *slog.Logger) ports.IDomainRepo {
	cols := domainColumns{
		TableName:    "registered_domains",
		ID:           "id",
		UserID:       "user_id",
		OrderID:      "order_id",
		DomainName:   "domain_name",
		DNSZoneRef:   "dns_zone_ref",
		RegistrarRef: "registrar_ref",
		Nameservers:  "nameservers",
		RegisteredAt: "registered_at",
		ExpiresAt:    "expires_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns returns the column list for SELECT/INSERT (9 fields)
func (r *Repository) allColumns() string {
	return strings.Join([]string{
		r.columns.ID,
		r.columns.UserID,
		r.columns.OrderID,
		r.columns.DomainName,
		r.columns.DNSZoneRef,
		r.columns.RegistrarRef,
		r.columns.Nameservers,
		r.columns.RegisteredAt,
		r.columns.ExpiresAt,
	}, ", ")
}

// Create inserts an inventory row for a freshly registered domain
func (r *Repository) Create(ctx context.Context, d *domain.RegisteredDomain) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.columns.TableName,
		r.allColumns(),
	)

	err := r.db.Exec(ctx, query,
		d.ID,
		d.UserID,
		d.OrderID,
		d.DomainName,
		d.DNSZoneRef,
		d.RegistrarRef,
		d.Nameservers,
		d.RegisteredAt,
		d.ExpiresAt,
	)
	if err != nil {
		r.Log.Error("failed to create registered domain",
			"error", err,
			"domain", d.DomainName,
			"order_id", d.OrderID,
		)
		return fmt.Errorf("failed to create registered domain: %w", err)
	}

	r.Log.Debug("registered domain created", "domain", d.DomainName, "order_id", d.OrderID)
	return nil
}

// GetByName returns the domain by its fully qualified name, nil when unknown
func (r *Repository) GetByName(ctx context.Context, domainName string) (*domain.RegisteredDomain, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.DomainName,
	)

	var d domain.RegisteredDomain
	err := r.db.Get(ctx, &d, query, domainName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to get registered domain", "error", err, "domain", domainName)
		return nil, fmt.Errorf("failed to get registered domain: %w", err)
	}

	return &d, nil
}

// ListByUser returns all domains owned by a user, newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.RegisteredDomain, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.RegisteredAt,
	)

	var list []domain.RegisteredDomain
	err := r.db.Select(ctx, &list, query, userID)
	if err != nil {
		r.Log.Error("failed to list registered domains", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list registered domains: %w", err)
	}

	return list, nil
}
