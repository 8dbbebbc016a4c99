package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmorken/kinsource/internal/client"
	"github.com/pmorken/kinsource/internal/llm"
	"github.com/pmorken/kinsource/internal/model"
	"github.com/pmorken/kinsource/internal/resolve"
)

var (
	srcToken       string
	srcTimeout     time.Duration
	srcUserAgent   string
	srcMaxBytes    int64
	srcNoCache     bool
	srcInsecureTLS bool
	srcOutJSON     string
	srcLLM         bool
	srcLLMProvider string
	srcLLMModel    string
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources <person-id | entity-url>",
	Short: "Fetch and resolve source references for one tree record",
	Long: `Sources fetches the source references attached to a person, couple
relationship, or child-and-parents relationship, resolves "#id" fragment
pointers against the response's own source descriptions, and prints the
resulting citations.

The record may be given as a bare person id or as a full API URL; for URLs
the record kind is derived from the path.

Example:
  kinsource sources KWQS-BBQ
  kinsource sources https://api.familysearch.org/platform/tree/couple-relationships/MMMM-MMM/source-references
  kinsource sources KWQS-BBQ --llm --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)

	// Session flags
	sourcesCmd.Flags().StringVar(&srcToken, "token", "", "API access token (overrides FS_ACCESS_TOKEN)")

	// HTTP flags
	sourcesCmd.Flags().DurationVar(&srcTimeout, "timeout", 30*time.Second, "request timeout")
	sourcesCmd.Flags().StringVar(&srcUserAgent, "ua", "", "HTTP User-Agent override")
	sourcesCmd.Flags().Int64Var(&srcMaxBytes, "max-bytes", 0, "max response bytes to read")
	sourcesCmd.Flags().BoolVar(&srcNoCache, "no-cache", false, "disable cache (force fresh fetch)")
	sourcesCmd.Flags().BoolVar(&srcInsecureTLS, "insecure", false, "skip TLS certificate verification")

	// Output flags
	sourcesCmd.Flags().StringVar(&srcOutJSON, "json", "", "write resolved refs as JSON to this path")

	// LLM flags
	sourcesCmd.Flags().BoolVar(&srcLLM, "llm", false, "generate a research summary of the citations")
	sourcesCmd.Flags().StringVar(&srcLLMProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	sourcesCmd.Flags().StringVar(&srcLLMModel, "llm-model", "", "LLM model name")
}

func runSources(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), srcTimeout*4)
	defer cancel()

	cfg := buildConfig(srcToken, srcTimeout, srcUserAgent, srcMaxBytes, srcNoCache, srcInsecureTLS)
	if err := requireToken(cfg); err != nil {
		return err
	}
	if srcLLM {
		cfg.LLM.Provider = srcLLMProvider
		cfg.LLM.Model = srcLLMModel
		if err := configureLLMKey(cfg); err != nil {
			return err
		}
	}

	c, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching sources for: %s\n", target)
	}

	var view *resolve.View
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "/") {
		view, err = c.SourceRefs(ctx, target)
	} else {
		view, err = c.PersonSourceRefs(ctx, target)
	}
	if err != nil {
		return fmt.Errorf("fetch sources: %w", err)
	}

	refs := view.SourceRefs()
	printSourceRefs(refs)

	if srcOutJSON != "" {
		if err := writeRefsJSON(srcOutJSON, refs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", srcOutJSON)
	}

	if srcLLM {
		if err := printSummary(ctx, cfg, target, refs); err != nil {
			// Summaries never fail the command
			fmt.Fprintf(os.Stderr, "Warning: summary generation failed: %v\n", err)
		}
	}

	return nil
}

func printSourceRefs(refs []*model.SourceRef) {
	if len(refs) == 0 {
		fmt.Println("No sources attached.")
		return
	}

	fmt.Printf("%d source reference(s):\n\n", len(refs))
	for i, ref := range refs {
		fmt.Printf("%d. %s\n", i+1, ref.Description)
		if ref.Resolved != nil {
			if title := ref.Resolved.Title(); title != "" {
				fmt.Printf("   Title:    %s\n", title)
			}
			if citation := ref.Resolved.Citation(); citation != "" {
				fmt.Printf("   Citation: %s\n", citation)
			}
		}
		if len(ref.Tags) > 0 {
			tags := make([]string, 0, len(ref.Tags))
			for _, tag := range ref.Tags {
				tags = append(tags, tag.Resource)
			}
			fmt.Printf("   Tags:     %s\n", strings.Join(tags, ", "))
		}
		fmt.Printf("   Entity:   %s\n", ref.AttachedEntityID)
	}
}

func writeRefsJSON(path string, refs []*model.SourceRef) error {
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode refs: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// configureLLMKey fills in provider credentials from the environment
func configureLLMKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

func printSummary(ctx context.Context, cfg *model.Config, subject string, refs []*model.SourceRef) error {
	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}
	if !summarizer.IsEnabled() {
		return nil
	}

	resp, err := summarizer.GenerateSummary(ctx, subject, llm.CitationsFromRefs(refs))
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}

	fmt.Printf("\nResearch summary (%s):\n%s\n", resp.Model, resp.Summary)
	return nil
}
