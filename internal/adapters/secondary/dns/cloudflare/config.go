package cloudflare

type Config struct {
	BaseURL   string `envconfig:"BASE_URL" default:"https://api.cloudflare.com/client/v4"`
	APIToken  string `envconfig:"API_TOKEN" required:"true"`
	AccountID string `envconfig:"ACCOUNT_ID"`
}
