package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmorken/kinsource/internal/client"
)

var (
	descToken       string
	descTimeout     time.Duration
	descNoCache     bool
	descInsecureTLS bool
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <description-url>...",
	Short: "Fetch several source descriptions in parallel",
	Long: `Describe fetches every given source description URL concurrently and
prints each one's title and citation. The fetch is all-or-nothing: if any
URL fails, the command fails.

Example:
  kinsource describe MM93-JFX MM93-JF2
  kinsource describe https://api.familysearch.org/platform/sources/descriptions/MM93-JFX`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().StringVar(&descToken, "token", "", "API access token (overrides FS_ACCESS_TOKEN)")
	describeCmd.Flags().DurationVar(&descTimeout, "timeout", 30*time.Second, "per-request timeout")
	describeCmd.Flags().BoolVar(&descNoCache, "no-cache", false, "disable cache (force fresh fetch)")
	describeCmd.Flags().BoolVar(&descInsecureTLS, "insecure", false, "skip TLS certificate verification")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), descTimeout*4)
	defer cancel()

	cfg := buildConfig(descToken, descTimeout, "", 0, descNoCache, descInsecureTLS)
	if err := requireToken(cfg); err != nil {
		return err
	}

	c, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	urls := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.Contains(arg, "/") {
			arg = "/platform/sources/descriptions/" + arg
		}
		urls = append(urls, arg)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching %d description(s)...\n", len(urls))
	}

	results, err := c.FetchMany(ctx, urls)
	if err != nil {
		return fmt.Errorf("fetch descriptions: %w", err)
	}

	for _, u := range urls {
		view := results[u]
		fmt.Printf("%s\n", u)
		descriptions := view.SourceDescriptions()
		if len(descriptions) == 0 {
			fmt.Println("  (no description in response)")
			continue
		}
		sd := descriptions[0]
		if title := sd.Title(); title != "" {
			fmt.Printf("  Title:    %s\n", title)
		}
		if citation := sd.Citation(); citation != "" {
			fmt.Printf("  Citation: %s\n", citation)
		}
		if sd.About != "" {
			fmt.Printf("  About:    %s\n", sd.About)
		}
	}

	return nil
}
