package config

import "time"

// Config is the top-level application configuration.
// It is loaded from ~/.config/runson/config.yaml (or $RUNSON_CONFIG) and must
// never be committed with a real token.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"  json:"github"`
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
	AWS     AWSConfig     `yaml:"aws"     json:"aws"`
	Output  OutputConfig  `yaml:"output"  json:"output"`
}

// GitHubConfig configures access to the GitHub REST API.
type GitHubConfig struct {
	// Token authenticates API calls. GITHUB_TOKEN and GH_TOKEN override it.
	Token string `yaml:"token" json:"-"`

	// APIURL is the REST base URL for GitHub Enterprise Server
	// (e.g. "https://github.example.com/api/v3/"). Empty means github.com.
	APIURL string `yaml:"api_url" json:"api_url"`

	// Timeout bounds the whole set of API calls made by one command.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// CatalogConfig selects the pricing table.
type CatalogConfig struct {
	// PricesPath is a pricing CSV used instead of the bundled snapshot.
	PricesPath string `yaml:"prices_path" json:"prices_path"`
}

// AWSConfig holds AWS defaults used when flags are not provided.
type AWSConfig struct {
	// DefaultRegion is used when no region flag or profile region is set.
	DefaultRegion string `yaml:"default_region" json:"default_region"`

	// DefaultProfile is used when no --profile flag is provided.
	DefaultProfile string `yaml:"default_profile" json:"default_profile"`
}

// OutputConfig controls terminal rendering.
type OutputConfig struct {
	// Color is "auto" (colour on terminals), "always" or "never".
	Color string `yaml:"color" json:"color"`
}

// Colour modes accepted in OutputConfig.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultTimeout is the GitHub timeout used when none is configured.
const DefaultTimeout = 60 * time.Second

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{Timeout: DefaultTimeout},
		Output: OutputConfig{Color: ColorAuto},
	}
}

// Loader is the interface for reading Config.
type Loader interface {
	// Load reads, parses, and validates the configuration file and applies
	// environment overrides.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}
