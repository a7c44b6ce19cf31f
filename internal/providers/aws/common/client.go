package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS profile with its SDK configuration and
// initialised service clients.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	ProfileName string

	// AccountID is the AWS account behind the credentials (via STS).
	AccountID string

	// Region is the home region of this configuration.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds service clients scoped to Region. Use ConfigForRegion
	// and a ClientFactory for other regions.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configurations and resolves active regions.
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named profile. An empty
	// profile selects the default chain; an empty region keeps the
	// profile's own region.
	LoadProfile(ctx context.Context, profile, region string) (*ProfileConfig, error)

	// ListProfiles returns every profile name found in ~/.aws/credentials
	// and ~/.aws/config without loading credentials.
	ListProfiles() ([]string, error)

	// GetActiveRegions returns the regions enabled for the account behind cfg.
	GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error)

	// ConfigForRegion clones cfg with the target region set.
	ConfigForRegion(cfg *ProfileConfig, region string) aws.Config
}
