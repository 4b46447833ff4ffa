package registrar

import "context"

// Availability availability and wholesale price of a domain at the registrar
type Availability struct {
	DomainName  string
	Available   bool
	PriceAmount int64 // cents
	Currency    string
}

// Contact registrant contact data passed to the registrar
type Contact struct {
	FirstName string
	LastName  string
	Email     string
}

// RegisterRequest domain registration request
type RegisterRequest struct {
	DomainName  string
	Nameservers []string
	Contact     Contact
}

// IRegistrar narrow capability interface for the domain registrar collaborator.
// Implementations translate transport failures into domain.ExternalServiceError
// and definitive refusals into domain.ExternalServiceRejected.
type IRegistrar interface {
	CheckAvailability(ctx context.Context, domainName string) (*Availability, error)
	RegisterDomain(ctx context.Context, req RegisterRequest) (registrarRef string, err error)
}
