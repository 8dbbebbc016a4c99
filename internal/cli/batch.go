package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmorken/kinsource/internal/client"
)

var (
	batchToken       string
	batchTimeout     time.Duration
	batchNoCache     bool
	batchInsecureTLS bool
	batchConcurrency int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <url-file>",
	Short: "Fetch source references for many records from a URL list",
	Long: `Batch reads entity URLs from a file (one per line; blank lines and #
comments are skipped) and fetches each record's source references on a
bounded worker pool. Unlike describe, per-record failures are reported
individually and do not abort the run.

Example:
  kinsource batch persons.txt --concurrency 5`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchToken, "token", "", "API access token (overrides FS_ACCESS_TOKEN)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Second, "per-request timeout")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&batchInsecureTLS, "insecure", false, "skip TLS certificate verification")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 5, "concurrent fetches")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := buildConfig(batchToken, batchTimeout, "", 0, batchNoCache, batchInsecureTLS)
	if err := requireToken(cfg); err != nil {
		return err
	}

	c, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	processor := client.NewBatchProcessor(c, batchConcurrency)
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	var failed int
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, result.Error)
			continue
		}
		fmt.Printf("✓ %s: %d source reference(s)\n", result.URL, len(result.View.SourceRefs()))
	}

	fmt.Printf("\n%d record(s), %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, len(results))
	}
	return nil
}
