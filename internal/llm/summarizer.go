package llm

import (
	"context"
	"fmt"

	"github.com/pmorken/kinsource/internal/model"
)

// Summarizer generates research summaries through a configured provider
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer. With no provider configured the
// summarizer exists but is disabled.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		provider: provider,
		config:   config,
	}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the active provider's name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary summarizes the citations attached to one record. Returns
// (nil, nil) when summaries are disabled.
func (s *Summarizer) GenerateSummary(ctx context.Context, subject string, citations []string) (*SummarizeResponse, error) {
	if s.provider == nil {
		return nil, nil
	}

	if !s.provider.IsAvailable(ctx) {
		return nil, fmt.Errorf("LLM provider %s is not available", s.provider.Name())
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Subject:   subject,
		Citations: citations,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	return resp, nil
}

// CitationsFromRefs extracts a printable citation per source ref: the cited
// description's citation text when the fragment resolved, the description's
// title as a fallback, and the raw reference URL otherwise.
func CitationsFromRefs(refs []*model.SourceRef) []string {
	citations := make([]string, 0, len(refs))
	for _, ref := range refs {
		switch {
		case ref.Resolved != nil && ref.Resolved.Citation() != "":
			citations = append(citations, ref.Resolved.Citation())
		case ref.Resolved != nil && ref.Resolved.Title() != "":
			citations = append(citations, ref.Resolved.Title())
		default:
			citations = append(citations, ref.Description)
		}
	}
	return citations
}
