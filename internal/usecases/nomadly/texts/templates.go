package texts

import (
	"fmt"
	"strings"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
)

// FormatUnknownCommand formats the unknown command reply
func FormatUnknownCommand(command string) string {
	return fmt.Sprintf("Unknown command: /%s\nUse /help to see what I can do.", command)
}

// FormatPrice renders cents as a human amount, e.g. "12.99 USD"
func FormatPrice(amount int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, currency)
}

// FormatQuoteAvailable formats the search result for an available domain
func FormatQuoteAvailable(quote *domain.DomainQuote) string {
	return fmt.Sprintf("✅ %s is available!\n\nPrice: %s (1 year, DNS included)",
		quote.DomainName,
		FormatPrice(quote.PriceAmount, quote.Currency),
	)
}

// FormatQuoteTaken formats the search result for a taken domain
func FormatQuoteTaken(domainName string) string {
	return fmt.Sprintf("❌ %s is already taken. Try another name.", domainName)
}

// FormatBuyButton formats the buy button label
func FormatBuyButton(quote *domain.DomainQuote) string {
	return fmt.Sprintf("Buy for %s", FormatPrice(quote.PriceAmount, quote.Currency))
}

// FormatPaymentInstructions formats the payment details for a created order
func FormatPaymentInstructions(order *domain.Order) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧾 Order for %s\n\n", order.DomainName))
	b.WriteString(fmt.Sprintf("Amount: %s\n", FormatPrice(order.PriceAmount, order.Currency)))
	b.WriteString(fmt.Sprintf("Coin: %s\n", strings.ToUpper(order.Crypto)))
	if order.PaymentAddress != nil {
		b.WriteString(fmt.Sprintf("\nSend the payment to:\n`%s`\n", *order.PaymentAddress))
	}
	if order.PaymentLink != nil && *order.PaymentLink != "" {
		b.WriteString(fmt.Sprintf("\nOr pay via the checkout page:\n%s\n", *order.PaymentLink))
	}
	b.WriteString(fmt.Sprintf("\n⏱ The address is valid until %s.\n", order.ExpiresAt.UTC().Format("02 Jan 2006 15:04 MST")))
	b.WriteString("I will message you as soon as the payment confirms.")
	return b.String()
}

// FormatDomainList formats the user's registered domains
func FormatDomainList(domains []domain.RegisteredDomain) string {
	var b strings.Builder
	b.WriteString("🌐 Your domains:\n\n")
	for _, d := range domains {
		line := fmt.Sprintf("• %s — registered %s", d.DomainName, d.RegisteredAt.UTC().Format("02.01.2006"))
		if d.ExpiresAt != nil {
			line += fmt.Sprintf(", expires %s", d.ExpiresAt.UTC().Format("02.01.2006"))
		}
		b.WriteString(line + "\n")
		if len(d.Nameservers) > 0 {
			b.WriteString(fmt.Sprintf("  NS: %s\n", strings.Join(d.Nameservers, ", ")))
		}
	}
	return b.String()
}

// FormatOrderList formats the user's recent orders
func FormatOrderList(orders []domain.Order) string {
	var b strings.Builder
	b.WriteString("🧾 Your orders:\n\n")
	for _, o := range orders {
		b.WriteString(fmt.Sprintf("• %s — %s, %s\n",
			o.DomainName,
			formatState(o.State),
			FormatPrice(o.PriceAmount, o.Currency),
		))
	}
	return b.String()
}

func formatState(state domain.OrderState) string {
	switch state {
	case domain.OrderStateQuoted:
		return "quoted"
	case domain.OrderStateAwaitingPayment:
		return "awaiting payment"
	case domain.OrderStatePaymentConfirmed:
		return "payment received, provisioning"
	case domain.OrderStateDNSProvisioned:
		return "DNS ready, registering"
	case domain.OrderStateRegistered:
		return "registered ✅"
	case domain.OrderStateFailed:
		return "failed ❌"
	case domain.OrderStateExpired:
		return "expired"
	default:
		return string(state)
	}
}
