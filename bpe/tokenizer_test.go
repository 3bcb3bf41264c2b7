package bpe

import (
	"bytes"
	"testing"
)

func TestNew(t *testing.T) {
	tokenizer := New()

	// Should have 256 base tokens (one per byte)
	if tokenizer.VocabSize != 256 {
		t.Errorf("Expected vocab size 256, got %d", tokenizer.VocabSize)
	}

	// Check that vocabulary contains all bytes
	if len(tokenizer.Vocabulary) != 256 {
		t.Errorf("Expected 256 vocabulary entries, got %d", len(tokenizer.Vocabulary))
	}

	// Verify a few byte mappings
	for i := 0; i < 256; i++ {
		if len(tokenizer.Vocabulary[i]) != 1 || tokenizer.Vocabulary[i][0] != byte(i) {
			t.Errorf("Vocabulary entry %d is incorrect", i)
		}
	}
}

func TestEncodeDecodeWithoutTraining(t *testing.T) {
	tokenizer := New()
	text := []byte("Hello, World!")

	// Encode
	tokens := tokenizer.Encode(text)

	// Without training, each byte should be its own token
	if len(tokens) != len(text) {
		t.Errorf("Expected %d tokens, got %d", len(text), len(tokens))
	}

	// Decode
	decoded := tokenizer.Decode(tokens)

	if !bytes.Equal(decoded, text) {
		t.Errorf("Decoded text doesn't match original.\nExpected: %s\nGot: %s", text, decoded)
	}
}

func TestEmptyText(t *testing.T) {
	tokenizer := New()
	text := []byte("")

	// Should handle empty text gracefully
	tokens := tokenizer.Encode(text)
	if len(tokens) != 0 {
		t.Errorf("Expected 0 tokens for empty text, got %d", len(tokens))
	}

	decoded := tokenizer.Decode(tokens)
	if !bytes.Equal(decoded, text) {
		t.Errorf("Decoded empty text should be empty")
	}
}

func TestDecodeInvalidToken(t *testing.T) {
	tokenizer := New()

	// Token ID that doesn't exist in vocabulary
	tokens := []int{999999}

	decoded := tokenizer.Decode(tokens)

	// Should return empty for invalid token
	if len(decoded) != 0 {
		t.Errorf("Expected empty result for invalid token, got %d bytes", len(decoded))
	}
}

func TestFromTrainingBuildsVocabInOrder(t *testing.T) {
	merges := []BytePair{
		{A: []byte("a"), B: []byte("a")},
		{A: []byte("a"), B: []byte("b")},
	}

	tokenizer, err := FromTraining([]string{"<|endoftext|>"}, merges)
	if err != nil {
		t.Fatalf("FromTraining failed: %v", err)
	}

	if tokenizer.VocabSize != 259 {
		t.Errorf("Expected vocab size 259, got %d", tokenizer.VocabSize)
	}
	if !bytes.Equal(tokenizer.Vocabulary[256], []byte("<|endoftext|>")) {
		t.Errorf("Expected id 256 to be the special token, got %q", tokenizer.Vocabulary[256])
	}
	if !bytes.Equal(tokenizer.Vocabulary[257], []byte("aa")) {
		t.Errorf("Expected id 257 to be %q, got %q", "aa", tokenizer.Vocabulary[257])
	}
	if !bytes.Equal(tokenizer.Vocabulary[258], []byte("ab")) {
		t.Errorf("Expected id 258 to be %q, got %q", "ab", tokenizer.Vocabulary[258])
	}

	if len(tokenizer.Merges) != 2 {
		t.Fatalf("Expected 2 merges, got %d", len(tokenizer.Merges))
	}
	if tokenizer.Merges[0].First != 'a' || tokenizer.Merges[0].Second != 'a' || tokenizer.Merges[0].Result != 257 {
		t.Errorf("Unexpected first merge: %+v", tokenizer.Merges[0])
	}
	if tokenizer.Merges[1].First != 'a' || tokenizer.Merges[1].Second != 'b' || tokenizer.Merges[1].Result != 258 {
		t.Errorf("Unexpected second merge: %+v", tokenizer.Merges[1])
	}
}

func TestFromTrainingEncodeDecodeRoundTrip(t *testing.T) {
	merges := []BytePair{
		{A: []byte("a"), B: []byte("a")},
		{A: []byte("a"), B: []byte("b")},
	}

	tokenizer, err := FromTraining([]string{"<|endoftext|>"}, merges)
	if err != nil {
		t.Fatalf("FromTraining failed: %v", err)
	}

	text := []byte("aaabdaaabac")
	tokens := tokenizer.Encode(text)

	if len(tokens) >= len(text) {
		t.Errorf("Expected fewer tokens than bytes after training. Bytes: %d, Tokens: %d", len(text), len(tokens))
	}

	decoded := tokenizer.Decode(tokens)
	if !bytes.Equal(decoded, text) {
		t.Errorf("Decoded text doesn't match original.\nExpected: %s\nGot: %s", text, decoded)
	}
}

func TestFromTrainingRejectsMergeOverUnknownSegment(t *testing.T) {
	merges := []BytePair{
		{A: []byte("aa"), B: []byte("a")}, // "aa" was never assigned an id
	}

	_, err := FromTraining(nil, merges)
	if err == nil {
		t.Error("Expected an error for a merge over an unknown segment")
	}
}
