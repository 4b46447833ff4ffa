package domain

// SessionStep what the bot is waiting for from the user
type SessionStep string

const (
	SessionStepIdle          SessionStep = "idle"
	SessionStepAwaitingQuery SessionStep = "awaiting_query" // next text message is a domain search query
	SessionStepAwaitingEmail SessionStep = "awaiting_email" // next text message is a contact email
)

// Session per-user conversation state. Stored in the cache keyed by user id
// and passed explicitly into handlers; there is no shared mutable session
// state between requests.
type Session struct {
	Step       SessionStep  `json:"step"`
	LastQuote  *DomainQuote `json:"last_quote,omitempty"`  // quote shown by the latest search
	PendingBuy *string      `json:"pending_buy,omitempty"` // domain the user tapped "buy" for
}
