package types

import (
	"github.com/kysee/zk-starks/types"
)

// TranscriptAPIResponse represents the STARK prover service response for a
// single proof transcript
type TranscriptAPIResponse struct {
	Version string           `json:"version"`
	Data    types.Transcript `json:"data"`
}

// Fetcher defines the interface for fetching proof transcripts
type Fetcher interface {
	// Transcript retrieves the proof transcript at the given index
	Transcript(index uint64) (*types.Transcript, error)
}
