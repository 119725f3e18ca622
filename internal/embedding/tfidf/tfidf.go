package tfidf

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"tabvec/internal/domain"
)

// ModelID is the model identifier served by this embedder.
const ModelID = "tfidf"

// Embedder implements a TF-IDF vectorizer. Every Embed call fits the vocabulary
// and IDF values on the batch it receives, so a call is a pure function of its input.
type Embedder struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

type vocabulary struct {
	index map[string]int
	idf   []float64
}

// Embed fits a vocabulary on texts and returns the L2-normalized TF-IDF vector of each.
// A batch without any token yields one-dimensional zero vectors.
func (e *Embedder) Embed(ctx context.Context, texts []string, modelID string) ([][]float32, error) {
	if modelID != ModelID {
		return nil, domain.NewModelUnavailable(modelID, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	tokenized := make([][]string, len(texts))
	for i, t := range texts {
		tokenized[i] = e.tokenize(t)
	}
	vocab := fit(tokenized)
	dim := len(vocab.idf)
	if dim == 0 {
		dim = 1
	}
	out := make([][]float32, len(texts))
	for i, tokens := range tokenized {
		out[i] = vocab.transform(tokens, dim)
	}
	return out, nil
}

func fit(corpus [][]string) vocabulary {
	// document frequencies
	df := make(map[string]int)
	for _, tokens := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	v := vocabulary{index: make(map[string]int, len(terms)), idf: make([]float64, len(terms))}
	n := float64(len(corpus))
	for i, term := range terms {
		v.index[term] = i
		// Smoothed IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v
}

func (v vocabulary) transform(tokens []string, dim int) []float32 {
	vec := make([]float64, dim)
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if idx, ok := v.index[tok]; ok {
			tf[idx]++
			total++
		}
	}
	out := make([]float32, dim)
	if total == 0 {
		return out
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}
	// L2 normalize
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	for i, x := range vec {
		out[i] = float32(x / norm)
	}
	return out
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// defaultStopwords holds no single letters: serialized rows often carry
// one-letter category codes.
func defaultStopwords() map[string]struct{} {
	words := []string{
		"an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
