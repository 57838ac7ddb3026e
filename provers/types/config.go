package types

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the transcript prover configuration
type Config struct {
	RootDir string

	// RPCEndpoint is the STARK prover service serving transcripts
	RPCEndpoint string
	// InitIndex is the transcript index to start proving from
	InitIndex uint64
	// TranscriptFile overrides the RPC endpoint with a local JSON file
	TranscriptFile string
}

func NewConfig(args ...string) *Config {
	// Parse configuration from environment variables or command line args
	config := Config{
		RootDir:     getEnv("ROOT", "."),
		RPCEndpoint: getEnv("RPC_ENDPOINT", "http://localhost:3030/"),
		InitIndex:   0,
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--root":
			config.RootDir = argValue(args, i)
			i++
		case "--init-index":
			index, err := strconv.ParseUint(argValue(args, i), 10, 64)
			if err != nil {
				panic(fmt.Errorf("invalid value for --init-index: %w", err))
			}
			config.InitIndex = index
			i++
		case "--rpc":
			config.RPCEndpoint = argValue(args, i)
			i++
		case "--transcript":
			config.TranscriptFile = argValue(args, i)
			i++
		}
	}

	return &config
}

// argValue returns the value following a flag, panicking if it is missing
func argValue(args []string, i int) string {
	if len(args) <= i+1 {
		panic(fmt.Errorf("missing argument for %s", args[i]))
	}
	return args[i+1]
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
