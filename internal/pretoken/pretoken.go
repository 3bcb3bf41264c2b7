// Package pretoken implements the pre-tokenizer: it decodes a chunk's
// bytes as UTF-8, excises special tokens, and applies the fixed
// GPT-2-style pre-tokenization regex to build a per-chunk frequency
// table. The regex requires Unicode property classes and a negative
// lookahead, neither of which the standard library's RE2-based regexp
// package supports, so matching is done with dlclark/regexp2.
package pretoken

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/zhubert/gobpe/internal/freq"
	"github.com/zhubert/gobpe/internal/token"
)

// Pattern is the fixed pre-tokenization regex: English contractions; an
// optional leading space then a run of letters; the same for digits;
// the same for punctuation; trailing whitespace not followed by a
// non-space; and any other whitespace run.
const Pattern = `'(?:[sdmt]|ll|ve|re)| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

// Tokenizer applies Pattern to chunks of text, after splitting on and
// discarding any of a fixed set of special tokens.
type Tokenizer struct {
	split   *regexp2.Regexp
	special *regexp2.Regexp
}

// New compiles a Tokenizer that excises the given special tokens before
// applying the pre-tokenization regex. specialTokens may be empty, in
// which case no splitting on special tokens occurs.
func New(specialTokens []string) (*Tokenizer, error) {
	split, err := regexp2.Compile(Pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("pretoken: compiling pre-tokenization regex: %w", err)
	}

	var special *regexp2.Regexp
	if len(specialTokens) > 0 {
		parts := make([]string, len(specialTokens))
		for i, s := range specialTokens {
			parts[i] = regexp.QuoteMeta(s)
		}
		special, err = regexp2.Compile(strings.Join(parts, "|"), regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("pretoken: compiling special token regex: %w", err)
		}
	}

	return &Tokenizer{split: split, special: special}, nil
}

// Tokenize decodes data as UTF-8 (replacing invalid sequences), excises
// special tokens, and returns the frequency table of pre-tokens found in
// the result.
func (t *Tokenizer) Tokenize(data []byte) (*freq.Table, error) {
	text := lossyDecodeUTF8(data)
	table := freq.NewTable()

	for _, piece := range splitOnSpecial(text, t.special) {
		if piece == "" {
			continue
		}
		if err := t.tokenizePiece(piece, table); err != nil {
			return nil, fmt.Errorf("pretoken: tokenizing chunk: %w", err)
		}
	}

	return table, nil
}

// tokenizePiece walks every non-overlapping match of the pre-tokenization
// regex in piece, converting each match to a byte-segment Token and
// recording one occurrence in table.
func (t *Tokenizer) tokenizePiece(piece string, table *freq.Table) error {
	runes := []rune(piece)

	m, err := t.split.FindStringMatch(piece)
	if err != nil {
		return fmt.Errorf("matching pre-tokenization regex: %w", err)
	}

	for m != nil {
		start := m.Index
		end := start + m.Length
		if end > len(runes) {
			end = len(runes)
		}
		matched := string(runes[start:end])
		table.Add(token.ByteToken([]byte(matched)), 1)

		m, err = t.split.FindNextMatch(m)
		if err != nil {
			return fmt.Errorf("matching pre-tokenization regex: %w", err)
		}
	}

	return nil
}

// splitOnSpecial splits text on every non-overlapping occurrence of the
// special-token alternation, discarding the delimiters. With a nil
// regex (no special tokens configured), text is returned unsplit.
func splitOnSpecial(text string, special *regexp2.Regexp) []string {
	if special == nil {
		return []string{text}
	}

	runes := []rune(text)
	var pieces []string
	last := 0

	m, _ := special.FindStringMatch(text)
	for m != nil {
		start := m.Index
		pieces = append(pieces, string(runes[last:start]))
		last = start + m.Length
		m, _ = special.FindNextMatch(m)
	}
	pieces = append(pieces, string(runes[last:]))

	return pieces
}

// lossyDecodeUTF8 decodes b as UTF-8, replacing each invalid byte with
// the Unicode replacement character, the Go analogue of Python's
// bytes.decode("utf-8", errors="replace").
func lossyDecodeUTF8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
