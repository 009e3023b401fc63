package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"extractor-installer/internal/app"
)

type cacheOptions struct {
	CacheDir       string
	IncompleteOnly bool
}

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the extractor toolcache",
	}
	cmd.AddCommand(newCacheListCommand())
	cmd.AddCommand(newCachePruneCommand())
	return cmd
}

func newCacheListCommand() *cobra.Command {
	opts := cacheOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List completed toolcache entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheList(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Toolcache root directory")
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	return cmd
}

func newCachePruneCommand() *cobra.Command {
	opts := cacheOptions{}
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove toolcache entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCachePrune(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Toolcache root directory")
	cmd.Flags().BoolVar(&opts.IncompleteOnly, "incomplete-only", false, "Only remove interrupted extractions")
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	return cmd
}

func runCacheList(ctx context.Context, cmd *cobra.Command, opts cacheOptions) error {
	service := app.NewService(app.Config{
		CacheDir: cacheDirOrDefault(resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir")),
	})
	result, err := service.CacheList(ctx)
	if err != nil {
		return err
	}
	for _, entry := range result.Entries {
		fmt.Printf("%s/%s %s (%s) -> %s\n",
			entry.Key.Owner, entry.Key.Repo, entry.Key.Tag, entry.Key.Platform, entry.Dir)
	}
	fmt.Printf("%d entries\n", len(result.Entries))
	return nil
}

func runCachePrune(ctx context.Context, cmd *cobra.Command, opts cacheOptions) error {
	service := app.NewService(app.Config{
		CacheDir: cacheDirOrDefault(resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir")),
	})
	result, err := service.CachePrune(ctx, app.CachePruneRequest{IncompleteOnly: opts.IncompleteOnly})
	if err != nil {
		return err
	}
	fmt.Printf("pruned %d entries\n", result.Removed)
	return nil
}
