package prover

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	types2 "github.com/kysee/zk-starks/provers/types"
	"github.com/kysee/zk-starks/types"
)

// APIFetcher implements Fetcher by calling the STARK prover service's REST
// endpoint
type APIFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewAPIFetcher creates a new APIFetcher with the given base URL
func NewAPIFetcher(baseURL string) *APIFetcher {
	return &APIFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{},
	}
}

// Transcript retrieves the proof transcript at the given index
// GET /stark/v1/transcripts/{index}
func (a *APIFetcher) Transcript(index uint64) (*types.Transcript, error) {
	endpoint, err := url.Parse(a.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	endpoint.Path = fmt.Sprintf("/stark/v1/transcripts/%d", index)

	resp, err := a.Client.Get(endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResponse types2.TranscriptAPIResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResponse.Data.Index != index {
		return nil, fmt.Errorf("service returned transcript %d, want %d", apiResponse.Data.Index, index)
	}

	return &apiResponse.Data, nil
}
