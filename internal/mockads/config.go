package mockads

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the mock backend settings.
type Config struct {
	Addr           string
	Token          string
	ImportDuration time.Duration
}

// LoadConfig reads configuration from adsmock.yaml, the environment and an
// optional .env file. Defaults are tuned for local development.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	viper.SetConfigName("adsmock")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("addr", getEnv("ADSMOCK_ADDR", ":8480"))
	viper.SetDefault("token", os.Getenv("ADSMOCK_TOKEN"))
	viper.SetDefault("import_duration", getEnv("ADSMOCK_IMPORT_DURATION", "3m"))

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	importDuration, err := time.ParseDuration(viper.GetString("import_duration"))
	if err != nil {
		return nil, fmt.Errorf("invalid import_duration: %w", err)
	}

	return &Config{
		Addr:           viper.GetString("addr"),
		Token:          viper.GetString("token"),
		ImportDuration: importDuration,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
