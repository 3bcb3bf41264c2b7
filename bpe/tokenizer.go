package bpe

import (
	"fmt"
)

// Tokenizer represents a trained BPE tokenizer: a byte-level vocabulary
// plus zero or more learned merge rules.
type Tokenizer struct {
	// Vocabulary maps token IDs to their byte representations
	Vocabulary map[int][]byte

	// Merges stores the merge rules in the order they were learned
	// Each merge is a pair of token IDs that should be merged
	Merges []Merge

	// VocabSize is the current size of the vocabulary
	VocabSize int
}

// Merge represents a single merge rule
type Merge struct {
	First  int // First token ID
	Second int // Second token ID
	Result int // Resulting merged token ID
}

// BytePair is a learned merge rule in its byte-sequence form, as
// produced by the trainer's merge engine. FromTraining converts a list
// of these into integer-id Merges.
type BytePair struct {
	A, B []byte
}

// New creates a new BPE tokenizer initialized with byte-level vocabulary
func New() *Tokenizer {
	vocab := make(map[int][]byte)

	// Initialize with all possible byte values (0-255)
	for i := 0; i < 256; i++ {
		vocab[i] = []byte{byte(i)}
	}

	return &Tokenizer{
		Vocabulary: vocab,
		Merges:     []Merge{},
		VocabSize:  256,
	}
}

// FromTraining builds a Tokenizer from a completed training run. The
// special tokens are assigned ids immediately after the 256 byte
// values, in order; merges is the ordered list of learned byte-pair
// merges. Every merge's segments must already be present in the
// vocabulary built so far, which holds for any merge list produced by
// the trainer's merge engine, since every pair it ever selects is built
// out of pieces that were already assigned ids.
func FromTraining(specialTokens []string, merges []BytePair) (*Tokenizer, error) {
	t := New()

	byBytes := make(map[string]int, 256+len(specialTokens)+len(merges))
	for id, b := range t.Vocabulary {
		byBytes[string(b)] = id
	}

	for _, tok := range specialTokens {
		id := t.VocabSize
		b := []byte(tok)
		t.Vocabulary[id] = b
		byBytes[string(b)] = id
		t.VocabSize++
	}

	for _, m := range merges {
		firstID, ok := byBytes[string(m.A)]
		if !ok {
			return nil, fmt.Errorf("bpe: merge references unknown segment %q", m.A)
		}
		secondID, ok := byBytes[string(m.B)]
		if !ok {
			return nil, fmt.Errorf("bpe: merge references unknown segment %q", m.B)
		}

		resultID := t.VocabSize
		merged := append(append([]byte{}, m.A...), m.B...)
		t.Vocabulary[resultID] = merged
		byBytes[string(merged)] = resultID

		t.Merges = append(t.Merges, Merge{First: firstID, Second: secondID, Result: resultID})
		t.VocabSize++
	}

	return t, nil
}

// Encode converts text into token IDs using the learned merges
func (t *Tokenizer) Encode(text []byte) []int {
	// Start with byte-level tokens
	tokens := make([]int, len(text))
	for i, b := range text {
		tokens[i] = int(b)
	}

	// Apply each merge in order
	for _, merge := range t.Merges {
		tokens = t.applyMerge(tokens, merge.First, merge.Second, merge.Result)
	}

	return tokens
}

// Decode converts token IDs back into text
func (t *Tokenizer) Decode(tokens []int) []byte {
	result := []byte{}
	for _, tokenID := range tokens {
		if bytes, ok := t.Vocabulary[tokenID]; ok {
			result = append(result, bytes...)
		}
	}
	return result
}

// applyMerge replaces all occurrences of (first, second) with merged token
func (t *Tokenizer) applyMerge(tokens []int, first, second, merged int) []int {
	result := []int{}

	i := 0
	for i < len(tokens) {
		// Check if we have a pair to merge
		if i < len(tokens)-1 && tokens[i] == first && tokens[i+1] == second {
			result = append(result, merged)
			i += 2 // Skip both tokens
		} else {
			result = append(result, tokens[i])
			i++
		}
	}

	return result
}
