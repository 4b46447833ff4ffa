package openprovider

type Config struct {
	BaseURL  string `envconfig:"BASE_URL" default:"https://api.openprovider.eu"`
	Username string `envconfig:"USERNAME" required:"true"`
	Password string `envconfig:"PASSWORD" required:"true"`
}
