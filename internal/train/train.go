// Package train wires the chunker, pre-tokenizer, frequency merger and
// BPE merge engine into the single entry point a caller uses to train a
// tokenizer over a file.
package train

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zhubert/gobpe/internal/bpe"
	"github.com/zhubert/gobpe/internal/chunker"
	"github.com/zhubert/gobpe/internal/freq"
	"github.com/zhubert/gobpe/internal/pretoken"
)

// Options configures a training run. Zero-valued fields take the
// defaults documented below.
type Options struct {
	// VocabSize is the target vocabulary size. Must be >= 256 +
	// len(SpecialTokens); training stops early if fewer merges exist.
	VocabSize int

	// SpecialTokens are excised from the corpus before pre-tokenization
	// and assigned ids immediately after the 256 byte values, in the
	// given order. The first token also doubles as the chunk split
	// marker unless SplitMarker is set. Defaults to
	// []string{"<|endoftext|>"}.
	SpecialTokens []string

	// DesiredChunkCount upper-bounds the number of parallel
	// pre-tokenization chunks. Defaults to 16.
	DesiredChunkCount int

	// SplitMarker overrides the byte sequence the chunker looks for
	// when choosing safe boundaries. Defaults to the UTF-8 bytes of
	// SpecialTokens[0].
	SplitMarker []byte

	// Workers bounds pre-tokenization concurrency. Defaults to
	// runtime.GOMAXPROCS(0).
	Workers int
}

func (o Options) withDefaults() Options {
	if len(o.SpecialTokens) == 0 {
		o.SpecialTokens = []string{"<|endoftext|>"}
	}
	if o.DesiredChunkCount <= 0 {
		o.DesiredChunkCount = 16
	}
	if len(o.SplitMarker) == 0 {
		o.SplitMarker = []byte(o.SpecialTokens[0])
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Result is the output of a training run: the assembled id-to-bytes
// vocabulary and the ordered list of learned merges.
type Result struct {
	Vocab  map[int][]byte
	Merges []bpe.Pair
}

// Train runs chunking, parallel pre-tokenization, frequency merging and
// the BPE merge loop over the file at inputPath, and assembles the
// resulting vocabulary.
//
// If ctx is cancelled while the merge loop is running, Train returns
// successfully with whatever prefix of merges had completed; cancellation
// during chunking or pre-tokenization, before any merge work exists to
// salvage, is surfaced as an error instead.
func Train(ctx context.Context, inputPath string, opts Options) (*Result, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("train: input path must not be empty")
	}

	opts = opts.withDefaults()
	if err := validateSpecialTokens(opts.SpecialTokens); err != nil {
		return nil, err
	}
	minVocab := 256 + len(opts.SpecialTokens)
	if opts.VocabSize < minVocab {
		return nil, fmt.Errorf("train: vocab size %d must be >= %d (256 base bytes + %d special tokens)",
			opts.VocabSize, minVocab, len(opts.SpecialTokens))
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("train: opening input: %w", err)
	}
	defer f.Close()

	bounds, err := chunker.Boundaries(f, opts.DesiredChunkCount, opts.SplitMarker)
	if err != nil {
		return nil, fmt.Errorf("train: chunking input: %w", err)
	}

	tables, err := pretokenizeChunks(ctx, f, bounds, opts)
	if err != nil {
		return nil, fmt.Errorf("train: pre-tokenizing: %w", err)
	}

	table := freq.Merge(tables...)

	k := opts.VocabSize - 256 - len(opts.SpecialTokens)
	merges := bpe.NewEngine(table).Run(ctx, k)

	return &Result{
		Vocab:  assembleVocab(opts.SpecialTokens, merges),
		Merges: merges,
	}, nil
}

func validateSpecialTokens(tokens []string) error {
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			return fmt.Errorf("train: duplicate special token %q", tok)
		}
		seen[tok] = struct{}{}
	}
	return nil
}

// pretokenizeChunks reads each [start,end) byte range from f and
// pre-tokenizes it on its own goroutine, bounded by opts.Workers. Workers
// share no mutable state: each produces its own *freq.Table, collected
// into a slice indexed by chunk position.
func pretokenizeChunks(ctx context.Context, f *os.File, bounds []int64, opts Options) ([]*freq.Table, error) {
	tok, err := pretoken.New(opts.SpecialTokens)
	if err != nil {
		return nil, err
	}

	n := len(bounds) - 1
	tables := make([]*freq.Table, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := 0; i < n; i++ {
		i := i
		start, end := bounds[i], bounds[i+1]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			buf := make([]byte, end-start)
			if _, err := f.ReadAt(buf, start); err != nil {
				return fmt.Errorf("reading chunk [%d,%d): %w", start, end, err)
			}

			table, err := tok.Tokenize(buf)
			if err != nil {
				return err
			}
			tables[i] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// assembleVocab assigns ids in the order fixed by the training contract:
// 0..255 to the single-byte values, the next len(specialTokens) ids to
// the special tokens in order, then one id per merge in learned order.
func assembleVocab(specialTokens []string, merges []bpe.Pair) map[int][]byte {
	vocab := make(map[int][]byte, 256+len(specialTokens)+len(merges))
	for i := 0; i < 256; i++ {
		vocab[i] = []byte{byte(i)}
	}

	next := 256
	for _, tok := range specialTokens {
		vocab[next] = []byte(tok)
		next++
	}
	for _, p := range merges {
		vocab[next] = []byte(string(p.A) + string(p.B))
		next++
	}
	return vocab
}
