// Package chunker splits an input file into byte ranges whose boundaries
// coincide with occurrences of a split marker, so that parallel
// pre-tokenization workers never split a pre-token across two chunks.
package chunker

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
)

// windowSize is the read-ahead size used while scanning for the split
// marker past an initial boundary guess.
const windowSize = 4096

// Boundaries divides f into at most desiredChunkCount spans by taking
// desiredChunkCount uniformly-spaced initial guesses and snapping each
// interior guess forward to the next occurrence of marker (or to EOF, if
// none is found). It returns a strictly increasing list of offsets
// b0=0, b1, ..., bk=file_size with k <= desiredChunkCount.
//
// An empty file returns []int64{0}.
func Boundaries(f *os.File, desiredChunkCount int, marker []byte) ([]int64, error) {
	if desiredChunkCount < 1 {
		return nil, fmt.Errorf("chunker: desired chunk count must be >= 1, got %d", desiredChunkCount)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("chunker: seeking to end of file: %w", err)
	}
	if size == 0 {
		return []int64{0}, nil
	}

	chunkSize := size / int64(desiredChunkCount)
	if chunkSize == 0 {
		chunkSize = 1
	}

	bounds := make([]int64, desiredChunkCount+1)
	for i := range bounds {
		bounds[i] = int64(i) * chunkSize
	}
	bounds[desiredChunkCount] = size

	buf := make([]byte, windowSize)
	for i := 1; i < desiredChunkCount; i++ {
		pos := bounds[i]
		if pos >= size {
			bounds[i] = size
			continue
		}

		for {
			n, readErr := f.ReadAt(buf, pos)
			if n > 0 {
				if idx := bytes.Index(buf[:n], marker); idx >= 0 {
					bounds[i] = pos + int64(idx)
					break
				}
			}
			if readErr != nil {
				// EOF (or any other read failure): snap to end of file,
				// matching the reference chunker's behavior.
				bounds[i] = size
				break
			}
			pos += int64(n)
		}
	}

	return dedupeSorted(bounds), nil
}

func dedupeSorted(bounds []int64) []int64 {
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	out := bounds[:0:0]
	first := true
	var last int64
	for _, v := range bounds {
		if first || v != last {
			out = append(out, v)
			last = v
			first = false
		}
	}
	return out
}
