package blockbee

type Config struct {
	BaseURL string `envconfig:"BASE_URL" default:"https://api.blockbee.io"`
	APIKey  string `envconfig:"API_KEY" required:"true"`
}
