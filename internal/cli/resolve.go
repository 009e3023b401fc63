package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"extractor-installer/internal/app"
	"extractor-installer/internal/shared"
)

type resolveOptions struct {
	Extractors string
	Token      string
	APIURL     string
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve references to concrete release tags and assets without installing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Extractors, "extractors", "", "Extractor references, comma or newline separated")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Hosting API token")
	cmd.Flags().StringVar(&opts.APIURL, "api-url", "", "Hosting API base URL")

	_ = viper.BindPFlag("extractors", cmd.Flags().Lookup("extractors"))
	_ = viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("api_url", cmd.Flags().Lookup("api-url"))

	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	service := app.NewService(app.Config{
		APIBaseURL: resolveString(cmd, opts.APIURL, "api_url", "api-url"),
		Token:      resolveString(cmd, opts.Token, "token", "token"),
	})
	references := shared.NormalizeList(resolveString(cmd, opts.Extractors, "extractors", "extractors"))

	result, err := service.Resolve(ctx, app.ResolveRequest{References: references})
	if err != nil {
		return err
	}

	var firstErr error
	for _, item := range result.Items {
		if item.Err != nil {
			fmt.Printf("error: %s: %s\n", item.Reference, errorMessage(item.Err))
			if firstErr == nil {
				firstErr = item.Err
			}
			continue
		}
		fmt.Printf("%s -> %s (%s, %d bytes)\n", item.Reference, item.Tag, item.Asset, item.Size)
	}
	return firstErr
}
