package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Nameservers list of NS hostnames, stored as a JSONB column
type Nameservers []string

// Scan implements sql.Scanner for reading the JSONB column
func (n *Nameservers) Scan(value interface{}) error {
	if value == nil {
		*n = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*n = nil
		return nil
	}

	if len(bytes) == 0 {
		*n = nil
		return nil
	}

	return json.Unmarshal(bytes, n)
}

// Value implements driver.Valuer for writing the JSONB column
func (n Nameservers) Value() (driver.Value, error) {
	if len(n) == 0 {
		return "[]", nil
	}
	return json.Marshal(n)
}

// RegisteredDomain a fully provisioned domain owned by a user.
// Created by the provisioning orchestrator once registration succeeds.
type RegisteredDomain struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	UserID       uuid.UUID   `json:"user_id" db:"user_id"`
	OrderID      uuid.UUID   `json:"order_id" db:"order_id"`
	DomainName   string      `json:"domain_name" db:"domain_name"`
	DNSZoneRef   string      `json:"dns_zone_ref" db:"dns_zone_ref"`
	RegistrarRef string      `json:"registrar_ref" db:"registrar_ref"`
	Nameservers  Nameservers `json:"nameservers" db:"nameservers"`
	RegisteredAt time.Time   `json:"registered_at" db:"registered_at"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty" db:"expires_at"`
}

// DomainQuote availability and price for a single domain name
type DomainQuote struct {
	DomainName  string `json:"domain_name"`
	Available   bool   `json:"available"`
	PriceAmount int64  `json:"price_amount"` // cents, markup already applied
	Currency    string `json:"currency"`
}
