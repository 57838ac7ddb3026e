package prover

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
	circuit "github.com/kysee/zk-starks/circuits"
	cfgtypes "github.com/kysee/zk-starks/provers/types"
	"github.com/kysee/zk-starks/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Main entry point for the transcript prover
func ProverMain(config *cfgtypes.Config) {
	var fetcher cfgtypes.Fetcher
	if config.TranscriptFile != "" {
		fetcher = NewFileFetcher(config.TranscriptFile)
	} else {
		fetcher = NewAPIFetcher(config.RPCEndpoint)
	}

	prover, err := NewProver(config, fetcher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create prover")
	}

	// Load circuit and proving key first
	if err := prover.setupCircuit(); err != nil {
		log.Fatal().Err(err).Msg("failed to setup circuit")
	}

	if err := prover.Run(); err != nil {
		log.Fatal().Err(err).Msg("failed to run prover")
	}
}

// Prover wraps a groth16 proof over TranscriptCircuit for each STARK proof
// transcript it fetches
type Prover struct {
	config  *cfgtypes.Config
	fetcher cfgtypes.Fetcher
	ccs     constraint.ConstraintSystem
	pk      groth16.ProvingKey
	logger  zerolog.Logger
}

// NewProver creates a new Prover with the given configuration
func NewProver(config *cfgtypes.Config, fetcher cfgtypes.Fetcher) (*Prover, error) {
	_ = os.MkdirAll(filepath.Join(config.RootDir, "output"), 0755)

	return &Prover{
		config:  config,
		fetcher: fetcher,
		logger:  zerolog.New(os.Stdout).With().Timestamp().Str("component", "prover").Logger(),
	}, nil
}

// Run fetches transcripts one index at a time and proves each of them
func (p *Prover) Run() error {
	index := p.config.InitIndex
	p.logger.Info().Uint64("index", index).Msg("starting transcript prover")

	for {
		transcript, err := p.fetcher.Transcript(index)
		if err != nil {
			p.logger.Warn().Err(err).Uint64("index", index).Msg("transcript not available yet")
			time.Sleep(1000 * time.Millisecond)
			continue
		}

		proofData, err := p.generateProof(transcript)
		if err != nil {
			return fmt.Errorf("failed to prove transcript %d: %w", index, err)
		}

		outputPath := filepath.Join(p.config.RootDir, fmt.Sprintf("output/proof-%d.json", index))
		jsonBlob, err := json.MarshalIndent(proofData, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal proof data: %w", err)
		}
		if err := os.WriteFile(outputPath, jsonBlob, 0644); err != nil {
			return fmt.Errorf("failed to write proof file: %w", err)
		}
		p.logger.Info().Uint64("index", index).Str("path", outputPath).Msg("proof saved")

		index++
	}
}

// setupCircuit loads the compiled circuit and proving key from .build
func (p *Prover) setupCircuit() error {
	if p.ccs != nil {
		p.logger.Info().Msg("circuit already loaded")
		return nil
	}

	ccsPath := filepath.Join(p.config.RootDir, ".build/TranscriptCircuit.ccs")
	pkPath := filepath.Join(p.config.RootDir, ".build/TranscriptCircuit.pk")

	p.logger.Info().Str("path", ccsPath).Msg("loading TranscriptCircuit")
	fCcs, err := os.Open(ccsPath)
	if err != nil {
		return fmt.Errorf("failed to open CCS file: %w", err)
	}

	p.ccs = groth16.NewCS(ecc.BN254)
	_, err = p.ccs.ReadFrom(fCcs)
	_ = fCcs.Close()
	if err != nil {
		return fmt.Errorf("failed to read CCS: %w", err)
	}
	p.logger.Info().Int("constraints", p.ccs.GetNbConstraints()).Msg("circuit loaded")

	p.logger.Info().Str("path", pkPath).Msg("loading proving key")
	fpk, err := os.Open(pkPath)
	if err != nil {
		return fmt.Errorf("failed to open PK file: %w", err)
	}

	p.pk = groth16.NewProvingKey(ecc.BN254)
	_, err = p.pk.ReadFrom(fpk)
	_ = fpk.Close()
	if err != nil {
		return fmt.Errorf("failed to read PK: %w", err)
	}
	p.logger.Info().Msg("proving key loaded")

	return nil
}

// generateProof builds the witness for the given transcript and produces a
// groth16 proof over TranscriptCircuit
func (p *Prover) generateProof(transcript *types.Transcript) (*types.ProofData, error) {
	witness, words, err := BuildWitness(transcript)
	if err != nil {
		return nil, err
	}

	fullWitness, err := frontend.NewWitness(witness, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}

	p.logger.Info().Uint64("index", transcript.Index).Msg("generating proof")
	proof, err := groth16.Prove(p.ccs, p.pk, fullWitness,
		backend.WithProverHashToFieldFunction(sha256.New()))
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}

	_proof, ok := proof.(interface{ MarshalSolidity() []byte })
	if !ok {
		return nil, fmt.Errorf("proof does not implement MarshalSolidity()")
	}
	proofSolidity := _proof.MarshalSolidity()
	p.logger.Info().Int("bytes", len(proofSolidity)).Msg("proof generated")

	wordBytes := make([]types.HexBytes, len(words))
	for i, word := range words {
		wordBytes[i] = word.Bytes()
	}
	return types.CreateProofData(transcript.Index, wordBytes, proofSolidity), nil
}

// BuildWitness converts a transcript into a TranscriptCircuit assignment.
// The packed words and the felt product are computed natively with the same
// layout and arithmetic the circuit constrains.
func BuildWitness(transcript *types.Transcript) (*circuit.TranscriptCircuit, []*big.Int, error) {
	words, err := transcript.Words()
	if err != nil {
		return nil, nil, err
	}
	if len(words) != circuit.TranscriptWords {
		return nil, nil, fmt.Errorf("transcript %d has %d words, circuit expects %d",
			transcript.Index, len(words), circuit.TranscriptWords)
	}

	// The circuit inverts the challenge formed by the first four felts;
	// an all-zero challenge would make witness solving fail.
	challenge := types.NewE4(transcript.Felts[0], transcript.Felts[1], transcript.Felts[2], transcript.Felts[3])
	if challenge.IsZero() {
		return nil, nil, fmt.Errorf("transcript %d has an all-zero challenge", transcript.Index)
	}

	witness := &circuit.TranscriptCircuit{}
	for i := range words {
		witness.Words[i] = words[i]
		for j := 0; j < types.FeltsPerWord; j++ {
			witness.Felts[i][j] = emulated.ValueOf[circuit.BabyBearParams](transcript.Felts[i*types.FeltsPerWord+j])
		}
	}

	product := transcript.FeltProduct()
	witness.FeltProduct = emulated.ValueOf[circuit.BabyBearParams](product.BigInt(new(big.Int)))

	return witness, words, nil
}
