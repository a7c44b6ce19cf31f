package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/runson/internal/catalog"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the instance pricing table",
	}
	cmd.AddCommand(newCatalogSyncCmd(a))
	return cmd
}

func newCatalogSyncCmd(a *app) *cobra.Command {
	var (
		region     string
		profile    string
		allRegions bool
		out        string
		prices     string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the pricing table from EC2 instance type data",
		Long: `Describe every EC2 instance type offered in a region (or in every enabled
region with --all-regions) and write a pricing table CSV. Prices are carried
over from the current table by instance name; new types have no price.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profile == "" {
				profile = a.cfg.AWS.DefaultProfile
			}
			if region == "" {
				region = a.cfg.AWS.DefaultRegion
			}

			ctx := cmd.Context()
			profileCfg, err := a.awsProvider.LoadProfile(ctx, profile, region)
			if err != nil {
				return err
			}

			regions := []string{profileCfg.Region}
			if allRegions {
				regions, err = a.awsProvider.GetActiveRegions(ctx, profileCfg)
				if err != nil {
					return err
				}
			}
			level.Info(a.logger).Log("msg", "collecting instance types", "account", profileCfg.AccountID, "regions", len(regions))

			hw, err := a.newCollector(a.logger).CollectAll(ctx, profileCfg, a.awsProvider, regions)
			if err != nil {
				return err
			}

			priced, err := a.loadCatalog(prices)
			if err != nil {
				return err
			}
			merged, matched := catalog.MergePrices(hw, priced)

			if err := writeCatalog(cmd.OutOrStdout(), out, merged); err != nil {
				return err
			}
			note(cmd, "Collected %d instance types from %d region(s); prices carried over for %d",
				len(merged), len(regions), matched)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region to describe (default: profile region)")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: credential chain)")
	cmd.Flags().BoolVar(&allRegions, "all-regions", false, "Describe every region enabled for the account")
	cmd.Flags().StringVar(&out, "out", "", "Write the table to this path instead of stdout")
	cmd.Flags().StringVar(&prices, "prices", "", "Pricing table to carry prices over from (default: bundled snapshot)")

	return cmd
}

// writeCatalog writes instances as CSV to path, or to stdout when path is
// empty.
func writeCatalog(stdout io.Writer, path string, instances []models.Instance) error {
	if path == "" {
		return catalog.WriteCSV(stdout, instances)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := catalog.WriteCSV(f, instances); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
