package texts

const Start = "👋 Welcome to Nomadly!\n\n" +
	"I register domains and set up DNS for you, paid in crypto.\n\n" +
	"/search — find a domain\n" +
	"/my_domains — your registered domains\n" +
	"/orders — your recent orders\n" +
	"/help — how it works"

const Help = "ℹ️ How it works\n\n" +
	"1. /search and send me a domain name\n" +
	"2. If it is available, tap Buy and pick a coin\n" +
	"3. Send the exact amount to the payment address\n" +
	"4. After the payment confirms I register the domain and set up DNS\n\n" +
	"The payment address is valid for 24 hours.\n" +
	"Commands: /search /my_domains /orders /email"

const SearchPrompt = "🔎 Send me the domain name you want, for example: example.com"

const SearchHint = "Use /search to look for a domain, or /help for the full list of commands."

const EmailPrompt = "📧 Send me your contact email. The registry requires it for the domain owner record."

const EmailInvalid = "❌ That does not look like an email address. Try again, for example: name@example.com"

const EmailSaved = "✅ Email saved."

const InvalidDomainName = "❌ That does not look like a domain name.\nSend something like example.com"

const QuoteExpired = "This quote has expired. Run a new /search."

const NoDomains = "You have no registered domains yet. /search to get your first one."

const NoOrders = "You have no orders yet. /search to start one."

const OrderInFlight = "⏳ You already have an open order for this domain. Finish or wait out that one first."

const DomainGone = "😔 The domain is no longer available."

const SearchFailed = "⚠️ The domain lookup is temporarily unavailable. Try again in a minute."

const OrderFailed = "⚠️ Could not create the order. Try again in a minute."

const PickCrypto = "💰 Pick the coin you want to pay with:"
