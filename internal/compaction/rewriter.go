package compaction

import (
	"context"

	"github.com/ankimate/ankimate/internal/provider"
)

// Rewriter produces the compacted form of one example sentence. Strict
// requests the more directive retry phrasing.
type Rewriter interface {
	Rewrite(ctx context.Context, headword, sentence string, strict bool) (string, error)
}

// ProviderRewriter adapts any LLM backend to the Rewriter contract.
type ProviderRewriter struct {
	Completer provider.Completer
}

func (r ProviderRewriter) Rewrite(ctx context.Context, headword, sentence string, strict bool) (string, error) {
	return provider.Compact(ctx, r.Completer, provider.CompactRequest{
		Headword: headword,
		Sentence: sentence,
		Strict:   strict,
	})
}
