// Command gobpe-train trains a byte-pair-encoding tokenizer over a text
// file and writes the learned vocabulary and merges to disk.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/zhubert/gobpe/bpe"
	"github.com/zhubert/gobpe/internal/train"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gobpe-train",
		Short:         "Train a byte-pair-encoding tokenizer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTrainCmd())
	return root
}

func newTrainCmd() *cobra.Command {
	var (
		inputPath     string
		vocabSize     int
		specialTokens []string
		chunks        int
		outPath       string
		cpuprofile    string
		memprofile    string
		debug         bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a tokenizer and write its vocabulary to --out",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("creating cpu profile: %w", err)
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return fmt.Errorf("starting cpu profile: %w", err)
				}
				defer pprof.StopCPUProfile()
			}

			if len(specialTokens) == 0 {
				specialTokens = []string{"<|endoftext|>"}
			}

			logger.Info("training started",
				"input", inputPath,
				"vocab_size", vocabSize,
				"special_tokens", specialTokens,
				"chunks", chunks)

			result, err := train.Train(cmd.Context(), inputPath, train.Options{
				VocabSize:         vocabSize,
				SpecialTokens:     specialTokens,
				DesiredChunkCount: chunks,
			})
			if err != nil {
				return err
			}

			logger.Info("training finished",
				"merges_learned", len(result.Merges),
				"vocab_size", len(result.Vocab))

			if memprofile != "" {
				f, err := os.Create(memprofile)
				if err != nil {
					return fmt.Errorf("creating memory profile: %w", err)
				}
				defer f.Close()
				if err := pprof.WriteHeapProfile(f); err != nil {
					return fmt.Errorf("writing memory profile: %w", err)
				}
			}

			if outPath == "" {
				return nil
			}
			return writeVocab(outPath, specialTokens, result)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to the UTF-8 training corpus (required)")
	cmd.Flags().IntVar(&vocabSize, "vocab-size", 32000, "target vocabulary size")
	cmd.Flags().StringArrayVar(&specialTokens, "special-token", nil, "special token (repeatable); first one doubles as the chunk split marker")
	cmd.Flags().IntVar(&chunks, "chunks", 16, "desired number of parallel pre-tokenization chunks")
	cmd.Flags().StringVar(&outPath, "out", "", "path to write the trained vocabulary as JSON")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "write a CPU profile to this path")
	cmd.Flags().StringVar(&memprofile, "memprofile", "", "write a heap profile to this path")
	cmd.Flags().BoolVarP(&debug, "debug", "v", false, "enable debug logging")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// vocabFile is the on-disk shape written by --out: the special tokens
// plus the ordered list of learned merges, each merge segment stored as
// base64-encoded bytes, sufficient to reconstruct a bpe.Tokenizer via
// bpe.FromTraining.
type vocabFile struct {
	SpecialTokens []string      `json:"special_tokens"`
	Merges        []mergeRecord `json:"merges"`
}

type mergeRecord struct {
	A []byte `json:"a"`
	B []byte `json:"b"`
}

func writeVocab(path string, specialTokens []string, result *train.Result) error {
	records := make([]mergeRecord, len(result.Merges))
	for i, m := range result.Merges {
		records[i] = mergeRecord{A: []byte(m.A), B: []byte(m.B)}
	}

	out := vocabFile{SpecialTokens: specialTokens, Merges: records}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding vocabulary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	// Sanity-check that the written merges reconstruct a valid tokenizer
	// before reporting success.
	bytePairs := make([]bpe.BytePair, len(records))
	for i, r := range records {
		bytePairs[i] = bpe.BytePair{A: r.A, B: r.B}
	}
	if _, err := bpe.FromTraining(specialTokens, bytePairs); err != nil {
		return fmt.Errorf("validating written vocabulary: %w", err)
	}

	return nil
}
