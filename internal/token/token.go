// Package token defines the byte-segment and pre-token types shared by
// pre-tokenization, the frequency table, and the BPE merge engine.
package token

import (
	"bytes"
	"encoding/binary"
)

// Segment is an immutable, non-empty run of bytes. At initialization every
// segment is a single byte; merges concatenate adjacent segments into
// longer ones.
type Segment string

// Token is an ordered, non-empty sequence of segments. A token's
// concatenation always equals the original pre-token's UTF-8 bytes; merges
// rewrite a Token by replacing adjacent segments, never by changing that
// concatenation.
type Token []Segment

// ByteToken builds the initial, single-byte-per-segment Token for a
// pre-token's raw bytes.
func ByteToken(b []byte) Token {
	tok := make(Token, len(b))
	for i, c := range b {
		tok[i] = Segment(string([]byte{c}))
	}
	return tok
}

// Key returns a string that uniquely identifies this Token's exact
// segmentation, suitable as a map key. Two tokens with the same
// concatenated bytes but different segment boundaries (e.g. "ab" as one
// segment versus "a","b" as two) must compare unequal, so Key
// length-prefixes every segment rather than simply joining them.
func (t Token) Key() string {
	var buf bytes.Buffer
	var lenBuf [binary.MaxVarintLen64]byte
	for _, seg := range t {
		n := binary.PutUvarint(lenBuf[:], uint64(len(seg)))
		buf.Write(lenBuf[:n])
		buf.WriteString(string(seg))
	}
	return buf.String()
}

// Bytes returns the token's underlying bytes, i.e. the concatenation of
// all of its segments.
func (t Token) Bytes() []byte {
	var buf bytes.Buffer
	for _, seg := range t {
		buf.WriteString(string(seg))
	}
	return buf.Bytes()
}
