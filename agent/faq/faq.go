// Package faq implements the local document-retrieval collaborator behind
// the answer_faq tool. Entries are ranked by token-overlap cosine score; the
// orchestrator only sees the contract.FaqResolver boundary, so a hosted
// semantic index can replace this without touching the loop.
package faq

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed data/faqs.txt
var defaultCorpus string

const DefaultTopK = 3

type Config struct {
	// Path to a newline-delimited FAQ file. The embedded corpus is used
	// when empty or missing.
	Path string `envconfig:"PATH" split_words:"true"`
}

type entry struct {
	text   string
	tokens map[string]float64
	norm   float64
}

type Index struct {
	entries []entry
}

func NewIndex(cfg Config) (*Index, error) {
	corpus := defaultCorpus
	if path := strings.TrimSpace(cfg.Path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read faq file: %w", err)
		}
		corpus = string(raw)
	}

	idx := &Index{}
	for _, line := range strings.Split(corpus, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens := tokenize(line)
		idx.entries = append(idx.entries, entry{
			text:   line,
			tokens: tokens,
			norm:   norm(tokens),
		})
	}
	if len(idx.entries) == 0 {
		return nil, fmt.Errorf("faq corpus is empty")
	}

	log.Debug().Int("entries", len(idx.entries)).Msg("faq index loaded")
	return idx, nil
}

// Resolve returns up to k entries ranked by similarity to the question.
// Entries sharing no terms with the question are dropped.
func (idx *Index) Resolve(_ context.Context, question string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	query := tokenize(question)
	if len(query) == 0 {
		return nil, nil
	}
	queryNorm := norm(query)

	type scored struct {
		text  string
		score float64
		pos   int
	}
	var matches []scored
	for i, e := range idx.entries {
		var dot float64
		for token, weight := range query {
			dot += weight * e.tokens[token]
		}
		if dot == 0 {
			continue
		}
		matches = append(matches, scored{
			text:  e.text,
			score: dot / (queryNorm * e.norm),
			pos:   i,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].pos < matches[j].pos
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.text)
	}
	return out, nil
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "can": true, "do": true,
	"does": true, "for": true, "how": true, "i": true, "is": true, "it": true,
	"me": true, "my": true, "of": true, "the": true, "to": true, "what": true,
	"when": true, "where": true, "you": true, "your": true,
}

func tokenize(s string) map[string]float64 {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	tokens := make(map[string]float64, len(fields))
	for _, f := range fields {
		if stopwords[f] || len(f) < 2 {
			continue
		}
		tokens[f]++
	}
	return tokens
}

func norm(tokens map[string]float64) float64 {
	var sum float64
	for _, w := range tokens {
		sum += w * w
	}
	if sum == 0 {
		return 1
	}
	return math.Sqrt(sum)
}
