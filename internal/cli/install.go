package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"extractor-installer/internal/app"
	"extractor-installer/internal/shared"
	"extractor-installer/internal/types"
)

type installOptions struct {
	Extractors  string
	Languages   string
	Packs       string
	Attestation bool
	CacheDir    string
	Token       string
	APIURL      string
	Concurrency int
	Timeout     time.Duration
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install extractors and query packs into the toolcache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Extractors, "extractors", "", "Extractor references (owner/repo[@ref[:asset-glob]]), comma or newline separated")
	cmd.Flags().StringVar(&opts.Languages, "languages", "", "Languages every extractor must support, comma separated")
	cmd.Flags().StringVar(&opts.Packs, "packs", "", "Query pack references, comma separated")
	cmd.Flags().BoolVar(&opts.Attestation, "attestation", false, "Require provenance attestation for every artifact")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Toolcache root directory")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Hosting API token")
	cmd.Flags().StringVar(&opts.APIURL, "api-url", "", "Hosting API base URL")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Concurrent installations")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Overall deadline for the run")

	_ = viper.BindPFlag("extractors", cmd.Flags().Lookup("extractors"))
	_ = viper.BindPFlag("languages", cmd.Flags().Lookup("languages"))
	_ = viper.BindPFlag("packs", cmd.Flags().Lookup("packs"))
	_ = viper.BindPFlag("attestation", cmd.Flags().Lookup("attestation"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("api_url", cmd.Flags().Lookup("api-url"))
	_ = viper.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))

	return cmd
}

func runInstall(ctx context.Context, cmd *cobra.Command, opts installOptions) error {
	extractors := shared.NormalizeList(resolveString(cmd, opts.Extractors, "extractors", "extractors"))
	packs := shared.NormalizeList(resolveString(cmd, opts.Packs, "packs", "packs"))
	languages := shared.NormalizeList(resolveString(cmd, opts.Languages, "languages", "languages"))

	service := app.NewService(app.Config{
		APIBaseURL:  resolveString(cmd, opts.APIURL, "api_url", "api-url"),
		Token:       resolveString(cmd, opts.Token, "token", "token"),
		CacheDir:    cacheDirOrDefault(resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir")),
		Attestation: resolveBool(cmd, opts.Attestation, "attestation", "attestation"),
		Concurrency: resolveInt(cmd, opts.Concurrency, "concurrency", "concurrency"),
	})

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var items []app.ItemSpec
	for _, reference := range extractors {
		items = append(items, app.ItemSpec{
			Reference: reference,
			Kind:      types.ItemKindExtractor,
			Languages: languages,
		})
	}
	for _, reference := range packs {
		items = append(items, app.ItemSpec{
			Reference: reference,
			Kind:      types.ItemKindPack,
		})
	}

	result, err := service.InstallAll(ctx, app.InstallAllRequest{Items: items})
	if err != nil {
		return err
	}
	return reportInstall(service, result.Summary)
}

func reportInstall(service app.Service, summary types.InstallSummary) error {
	for _, item := range summary.Results {
		if !item.Succeeded() {
			log.Error().
				Str("reference", item.Reference.String()).
				Str("stage", string(item.FailureKind)).
				Msg(errorMessage(item.Err))
			continue
		}
		slug := fmt.Sprintf("%s-%s", item.Reference.Owner, item.Reference.Name)
		_ = service.ResultSink.SetOutput(slug+"-version", item.Version)
		_ = service.ResultSink.SetOutput(slug+"-path", item.InstallPath)
		if len(item.Languages) > 0 {
			_ = service.ResultSink.SetOutput(slug+"-languages", strings.Join(item.Languages, ","))
		}
		fmt.Printf("installed: %s %s -> %s\n", item.Reference.Slug(), item.Version, item.InstallPath)
	}

	failed := summary.Failed()
	_ = service.ResultSink.SetOutput("installed", fmt.Sprintf("%t", len(failed) == 0))
	if len(failed) == 0 {
		return nil
	}
	first := failed[0]
	return first.Err
}

// cacheDirOrDefault prefers the configured directory, then the
// pipeline runner's temp directory, then the user cache.
func cacheDirOrDefault(configured string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	if runnerTemp := os.Getenv("RUNNER_TEMP"); runnerTemp != "" {
		return filepath.Join(runnerTemp, "extractors")
	}
	if userCache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(userCache, "extractor-installer")
	}
	return ".extractors"
}
