package gemini

import "os"

const (
	defaultExtractionModel = "gemini-2.0-flash"
	defaultTariffModel     = "gemini-2.0-flash-lite"
	defaultTemperature     = float32(0.1)
)

// Config carries credentials and model selection for the Gemini client.
type Config struct {
	APIKey string

	// ExtractionModel handles page vision and weight proposals; TariffModel
	// may be a cheaper text-only model.
	ExtractionModel string
	TariffModel     string

	Temperature float32
}

// withDefaults fills unset fields, pulling the API key from the environment
// as a last resort.
func (c Config) withDefaults() Config {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.ExtractionModel == "" {
		c.ExtractionModel = defaultExtractionModel
	}
	if c.TariffModel == "" {
		c.TariffModel = defaultTariffModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	return c
}
