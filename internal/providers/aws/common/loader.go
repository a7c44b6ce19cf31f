package common

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultRegion is used when neither a flag nor the profile sets a region.
const DefaultRegion = "us-east-1"

// DefaultAWSClientProvider is the production implementation of
// AWSClientProvider. It reads the standard shared config and credentials
// files (~/.aws/config and ~/.aws/credentials).
type DefaultAWSClientProvider struct {
	factory ClientFactory
}

// NewDefaultAWSClientProvider returns a provider backed by the real AWS SDK.
func NewDefaultAWSClientProvider() *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: NewClientSet}
}

// NewDefaultAWSClientProviderWithFactory returns a provider that uses f to
// create its ClientSet. Pass a mock factory in tests.
func NewDefaultAWSClientProviderWithFactory(f ClientFactory) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: f}
}

// Factory returns the ClientFactory used by p.
func (p *DefaultAWSClientProvider) Factory() ClientFactory {
	return p.factory
}

// ---------------------------------------------------------------------------
// AWSClientProvider implementation
// ---------------------------------------------------------------------------

// LoadProfile loads the SDK config for profile, applies region when set and
// resolves the account ID through STS.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, profile, region string) (*ProfileConfig, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", profileDisplayName(profile), err)
	}
	return p.resolve(ctx, profile, cfg)
}

// resolve completes a ProfileConfig from a loaded aws.Config.
func (p *DefaultAWSClientProvider) resolve(ctx context.Context, profile string, cfg aws.Config) (*ProfileConfig, error) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	clients := p.factory(cfg)

	accountID, err := resolveAccountID(ctx, clients.STS)
	if err != nil {
		return nil, fmt.Errorf("resolve account ID for profile %q: %w", profileDisplayName(profile), err)
	}

	return &ProfileConfig{
		ProfileName: profileDisplayName(profile),
		AccountID:   accountID,
		Region:      cfg.Region,
		Config:      cfg,
		Clients:     clients,
	}, nil
}

// ListProfiles returns the sorted, de-duplicated profile names found in the
// shared credentials and config files. Missing files contribute nothing.
func (p *DefaultAWSClientProvider) ListProfiles() ([]string, error) {
	names, err := discoverProfileNames()
	if err != nil {
		return nil, fmt.Errorf("discover AWS profiles: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// GetActiveRegions returns the regions the account has opted into, sorted.
func (p *DefaultAWSClientProvider) GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error) {
	out, err := cfg.Clients.EC2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe regions for profile %q: %w", cfg.ProfileName, err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if r.RegionName != nil {
			regions = append(regions, *r.RegionName)
		}
	}
	sort.Strings(regions)
	return regions, nil
}

// ConfigForRegion returns a copy of cfg.Config with Region set to region.
func (p *DefaultAWSClientProvider) ConfigForRegion(cfg *ProfileConfig, region string) aws.Config {
	regional := cfg.Config
	regional.Region = region
	return regional
}

// ---------------------------------------------------------------------------
// Package-private helpers
// ---------------------------------------------------------------------------

// profileDisplayName shows the default profile as "default".
func profileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// resolveAccountID calls STS GetCallerIdentity for the loaded credentials.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}

// sharedFiles returns the shared credentials and config file paths,
// honouring AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE like the SDK.
func sharedFiles() (credentials, config string) {
	credentials = awsconfig.DefaultSharedCredentialsFilename()
	if v := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); v != "" {
		credentials = v
	}
	config = awsconfig.DefaultSharedConfigFilename()
	if v := os.Getenv("AWS_CONFIG_FILE"); v != "" {
		config = v
	}
	return credentials, config
}

// discoverProfileNames merges the profile names of the shared credentials
// and config files, credentials first.
func discoverProfileNames() ([]string, error) {
	credPath, cfgPath := sharedFiles()

	var all []string
	seen := make(map[string]struct{})
	for _, src := range []struct {
		path       string
		configFile bool
	}{{credPath, false}, {cfgPath, true}} {
		names, err := parseProfilesFromFile(src.path, src.configFile)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if _, dup := seen[name]; name == "" || dup {
				continue
			}
			seen[name] = struct{}{}
			all = append(all, name)
		}
	}
	return all, nil
}

// parseProfilesFromFile returns the section names of the INI file at path.
// A missing file yields nil without error. Non-profile sections of
// ~/.aws/config ("sso-session x", "services x") are skipped.
func parseProfilesFromFile(path string, configFile bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var profiles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
			continue
		}
		name := strings.TrimSpace(line[1 : len(line)-1])

		if configFile && name != "default" {
			rest, ok := strings.CutPrefix(name, "profile ")
			if !ok {
				continue
			}
			name = strings.TrimSpace(rest)
		}
		profiles = append(profiles, name)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return profiles, nil
}
