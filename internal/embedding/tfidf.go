package embedding

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperjump/kotae/pkg/utils"
)

const minTokenLen = 2

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// TFIDFEmbedder is a TF-IDF vectorizer fitted on the corpus it will index.
//
// The vector has one dimension per vocabulary term followed by an
// out-of-vocabulary dimension and an empty-line dimension. Query tokens the
// corpus never used are counted in the out-of-vocabulary slot, and a query
// with no tokens at all goes there too, so a query that shares no terms with
// the corpus lands at squared L2 distance 2 from every line. Corpus lines
// without tokens (only stopwords or punctuation) get the empty-line slot and
// therefore never sit close to such a query.
type TFIDFEmbedder struct {
	vocabulary map[string]int
	idf        []float64
	oovIDF     float64
	stopwords  map[string]struct{}
	// emptyLines holds the corpus texts that produced no tokens.
	emptyLines map[string]struct{}
	fitted     bool
}

// NewTFIDFEmbedder returns an unfitted embedder. Call Fit before embedding.
func NewTFIDFEmbedder() *TFIDFEmbedder {
	return &TFIDFEmbedder{stopwords: defaultStopwords()}
}

// Name returns "tfidf".
func (e *TFIDFEmbedder) Name() string { return "tfidf" }

// Fit builds the vocabulary and smoothed IDF weights from corpus and returns
// a new fitted embedder.
func (e *TFIDFEmbedder) Fit(ctx context.Context, corpus []string) (Embedder, error) {
	if len(corpus) == 0 {
		return nil, errors.New("tfidf: empty corpus")
	}
	df := make(map[string]int)
	emptyLines := make(map[string]struct{})
	for _, text := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens := e.tokenize(text)
		if len(tokens) == 0 {
			emptyLines[text] = struct{}{}
			continue
		}
		seen := make(map[string]struct{})
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, errors.New("tfidf: no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	fitted := &TFIDFEmbedder{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		oovIDF:     math.Log(1+n) + 1,
		stopwords:  e.stopwords,
		emptyLines: emptyLines,
		fitted:     true,
	}
	for i, term := range terms {
		fitted.vocabulary[term] = i
		fitted.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return fitted, nil
}

// Embed returns the L2-normalized TF-IDF vector for text.
func (e *TFIDFEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.Dimensions())
	oov, empty := len(e.idf), len(e.idf)+1

	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		if _, ok := e.emptyLines[text]; ok {
			vec[empty] = 1
		} else {
			vec[oov] = 1
		}
		return vec, nil
	}
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := e.vocabulary[tok]; ok {
			counts[idx]++
		} else {
			counts[oov]++
		}
	}
	total := float64(len(tokens))
	for idx, c := range counts {
		idf := e.oovIDF
		if idx != oov {
			idf = e.idf[idx]
		}
		vec[idx] = float32(float64(c) / total * idf)
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *TFIDFEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the vocabulary size plus the out-of-vocabulary and
// empty-line slots, or 0 before Fit.
func (e *TFIDFEmbedder) Dimensions() int {
	if !e.fitted {
		return 0
	}
	return len(e.idf) + 2
}

// Close is a no-op.
func (e *TFIDFEmbedder) Close() error { return nil }

// VocabularySize returns the number of distinct corpus terms.
func (e *TFIDFEmbedder) VocabularySize() int { return len(e.vocabulary) }

func (e *TFIDFEmbedder) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(foldText(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if len([]rune(t)) < minTokenLen {
			continue
		}
		if _, stop := e.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// foldText lowercases s and strips diacritics so "público" matches "publico".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		// English
		"an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "so", "such", "into", "about", "than",
		"do", "does", "did", "can", "will", "just", "should", "now", "my", "me", "you", "your", "we", "our",
		"there", "their", "they", "he", "she", "his", "her",
		// Spanish, diacritics already folded
		"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del", "al", "en", "que", "es", "son",
		"por", "para", "con", "sin", "lo", "le", "les", "se", "su", "sus", "mi", "mis", "tu", "tus", "como",
		"mas", "pero", "muy", "ya", "este", "esta", "estos", "estas", "ese", "esa", "hay",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
