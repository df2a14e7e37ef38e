package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the CLI configuration loaded from flags, environment
// variables, .env files, and an optional config file, in that precedence
// order.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	JSON    bool

	ConfigFile string

	// Engine configuration
	DBPath       string
	ProfilesFile string
	ProxyPrefix  string

	// Upload header mapping
	SKUHeader   string
	PriceHeader string
	SaleHeader  string

	// Logging configuration
	LogLevel string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (MAPWATCH_ prefix)
// 3. .env files
// 4. Config file (~/.mapwatch.yaml or --config)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("MAPWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".mapwatch")
	}

	v.SetDefault("db", "mapwatch.db")
	v.SetDefault("sku_header", "sku")
	v.SetDefault("price_header", "price")
	v.SetDefault("sale_header", "salePrice")
	v.SetDefault("log_level", "info")

	// Config file is optional.
	_ = v.ReadInConfig()

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		JSON:    v.GetBool("json"),

		ConfigFile: v.ConfigFileUsed(),

		DBPath:       v.GetString("db"),
		ProfilesFile: v.GetString("profiles"),
		ProxyPrefix:  v.GetString("proxy"),

		SKUHeader:   v.GetString("sku_header"),
		PriceHeader: v.GetString("price_header"),
		SaleHeader:  v.GetString("sale_header"),

		LogLevel: v.GetString("log_level"),
	}, nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
