package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ---------------------------------------------------------------------------
// Per-service client interfaces
//
// Each interface covers only the operations used by this project, so tests
// can substitute a struct returning canned data.
// ---------------------------------------------------------------------------

// STSClient is the subset of STS operations used by the loader.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// EC2Client is the subset of EC2 operations used for region discovery and
// instance hardware collection. It satisfies
// ec2.DescribeInstanceTypesAPIClient so SDK paginators accept it.
type EC2Client interface {
	DescribeRegions(
		ctx context.Context,
		params *ec2.DescribeRegionsInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeRegionsOutput, error)

	DescribeInstanceTypes(
		ctx context.Context,
		params *ec2.DescribeInstanceTypesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeInstanceTypesOutput, error)
}

// ---------------------------------------------------------------------------
// ClientSet and ClientFactory
// ---------------------------------------------------------------------------

// ClientSet holds initialised AWS service clients for one profile and region.
type ClientSet struct {
	STS STSClient
	EC2 EC2Client
}

// ClientFactory creates a ClientSet from an aws.Config. Swap it in tests to
// inject mock clients.
type ClientFactory func(cfg aws.Config) *ClientSet

// NewClientSet is the production ClientFactory.
func NewClientSet(cfg aws.Config) *ClientSet {
	return &ClientSet{
		STS: sts.NewFromConfig(cfg),
		EC2: ec2.NewFromConfig(cfg),
	}
}
