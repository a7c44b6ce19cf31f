// Package hardware collects instance type specifications from the EC2 API.
//
// Only hardware attributes are collected. Prices are not available from
// DescribeInstanceTypes and are carried over from an existing catalog by the
// caller.
package hardware

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/runson/internal/inference"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
	"github.com/pankaj-dahiya-devops/runson/internal/providers/aws/common"
)

// Collector gathers instance type hardware specifications.
type Collector interface {
	// CollectRegion returns the instance types offered in one region.
	CollectRegion(ctx context.Context, cfg aws.Config, region string) ([]models.Instance, error)

	// CollectAll returns the union of instance types offered in regions,
	// sorted by name.
	CollectAll(ctx context.Context, profile *common.ProfileConfig, provider common.AWSClientProvider, regions []string) ([]models.Instance, error)
}

// DefaultCollector is the production Collector backed by the AWS SDK.
type DefaultCollector struct {
	factory    common.ClientFactory
	classifier inference.Classifier
	logger     log.Logger
}

// NewDefaultCollector returns a collector using real SDK clients.
func NewDefaultCollector(classifier inference.Classifier, logger log.Logger) *DefaultCollector {
	return NewDefaultCollectorWithFactory(common.NewClientSet, classifier, logger)
}

// NewDefaultCollectorWithFactory returns a collector that uses f to create
// its service clients. Pass a mock factory in tests.
func NewDefaultCollectorWithFactory(f common.ClientFactory, classifier inference.Classifier, logger log.Logger) *DefaultCollector {
	if classifier == nil {
		classifier = inference.NewHeuristicClassifier()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &DefaultCollector{
		factory:    f,
		classifier: classifier,
		logger:     log.With(logger, "component", "hardware"),
	}
}

// maxConcurrentRegions bounds the regions described in parallel.
const maxConcurrentRegions = 5

// CollectAll describes every region in parallel. The first failing region
// cancels the rest and its error is returned.
func (d *DefaultCollector) CollectAll(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
) ([]models.Instance, error) {
	var (
		mu     sync.Mutex
		byName = make(map[string]models.Instance)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRegions)

	for _, region := range regions {
		regionalCfg := provider.ConfigForRegion(profile, region)
		g.Go(func() error {
			instances, err := d.CollectRegion(gctx, regionalCfg, region)
			if err != nil {
				return fmt.Errorf("collect region %s: %w", region, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, inst := range instances {
				if _, ok := byName[inst.APIName]; !ok {
					byName[inst.APIName] = inst
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Instance, 0, len(byName))
	for _, inst := range byName {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].APIName < out[j].APIName })
	return out, nil
}

// CollectRegion pages through DescribeInstanceTypes in region.
func (d *DefaultCollector) CollectRegion(ctx context.Context, cfg aws.Config, region string) ([]models.Instance, error) {
	clients := d.factory(cfg)
	paginator := ec2svc.NewDescribeInstanceTypesPaginator(clients.EC2, &ec2svc.DescribeInstanceTypesInput{})

	var instances []models.Instance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeInstanceTypes page: %w", err)
		}
		for _, it := range page.InstanceTypes {
			inst, ok := d.toInstance(it)
			if !ok {
				level.Debug(d.logger).Log("msg", "skipping instance type", "region", region, "instance_type", string(it.InstanceType))
				continue
			}
			instances = append(instances, inst)
		}
	}

	level.Info(d.logger).Log("msg", "described instance types", "region", region, "count", len(instances))
	return instances, nil
}

// toInstance converts an SDK instance type. ok is false when the vCPU count
// or memory size is missing.
func (d *DefaultCollector) toInstance(it ec2types.InstanceTypeInfo) (models.Instance, bool) {
	name := string(it.InstanceType)
	if name == "" || it.VCpuInfo == nil || it.VCpuInfo.DefaultVCpus == nil ||
		it.MemoryInfo == nil || it.MemoryInfo.SizeInMiB == nil {
		return models.Instance{}, false
	}

	inst := models.Instance{
		APIName:  name,
		VCPUs:    int(aws.ToInt32(it.VCpuInfo.DefaultVCpus)),
		MemoryGB: float64(aws.ToInt64(it.MemoryInfo.SizeInMiB)) / 1024,
		Arch:     d.classifier.Arch(name),
	}

	if ebs := it.EbsInfo; ebs != nil && ebs.EbsOptimizedInfo != nil && ebs.EbsOptimizedInfo.BaselineBandwidthInMbps != nil {
		inst.EBSMbps = models.Int(int(aws.ToInt32(ebs.EbsOptimizedInfo.BaselineBandwidthInMbps)))
	}

	if storage := it.InstanceStorageInfo; storage != nil && storage.NvmeSupport != ec2types.EphemeralNvmeSupportUnsupported && storage.NvmeSupport != "" {
		inst.NVMe = true
		if storage.TotalSizeInGB != nil {
			inst.NVMeGB = models.Int(int(aws.ToInt64(storage.TotalSizeInGB)))
		}
	}
	return inst, true
}
