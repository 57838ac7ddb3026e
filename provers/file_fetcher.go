package prover

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kysee/zk-starks/types"
)

// FileFetcher implements Fetcher by reading from a local JSON file
type FileFetcher struct {
	FilePath string
}

// NewFileFetcher creates a new FileFetcher with the given file path
func NewFileFetcher(filePath string) *FileFetcher {
	return &FileFetcher{
		FilePath: filePath,
	}
}

// Transcript reads and parses the proof transcript from the file
func (f *FileFetcher) Transcript(index uint64) (*types.Transcript, error) {
	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", f.FilePath, err)
	}

	var transcript types.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if transcript.Index != index {
		return nil, fmt.Errorf("transcript file holds index %d, want %d", transcript.Index, index)
	}

	return &transcript, nil
}
