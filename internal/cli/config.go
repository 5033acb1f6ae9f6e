package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerURL string
	UserID    string
	PIN       string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("TALLY_SERVER", "http://localhost:8080"),
		UserID:    os.Getenv("TALLY_USER_ID"),
		PIN:       os.Getenv("TALLY_PIN"),
		Output:    "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
