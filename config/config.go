package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Enabled           bool   `mapstructure:"enabled"`
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Providers struct {
		Google struct {
			APIKey            string        `mapstructure:"apiKey"`
			PlacesBaseURL     string        `mapstructure:"placesBaseURL"`
			GeocodeBaseURL    string        `mapstructure:"geocodeBaseURL"`
			RoutesURL         string        `mapstructure:"routesURL"`
			RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
			Burst             int           `mapstructure:"burst"`
			Timeout           time.Duration `mapstructure:"timeout"`
		} `mapstructure:"google"`
	} `mapstructure:"providers"`
	LLM struct {
		APIKey string `mapstructure:"apiKey"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"llm"`
	Itinerary struct {
		ClusterRadiusKm     float64 `mapstructure:"clusterRadiusKm"`
		SearchRadiusDegrees float64 `mapstructure:"searchRadiusDegrees"`
		ResultsPerInterest  int     `mapstructure:"resultsPerInterest"`
		LocationPath        string  `mapstructure:"locationPath"`
	} `mapstructure:"itinerary"`
	Cache struct {
		TTL     time.Duration `mapstructure:"ttl"`
		Cleanup time.Duration `mapstructure:"cleanup"`
	} `mapstructure:"cache"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindings := map[string]string{
		"providers.google.apiKey":        "GOOGLE_MAPS_API_KEY",
		"llm.apiKey":                     "GOOGLE_GEMINI_API_KEY",
		"repositories.postgres.host":     "POSTGRES_HOST",
		"repositories.postgres.password": "POSTGRES_PASSWORD",
		"mode":                           "APP_ENV",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
