package types

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	bn254_fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// HexBytes is a byte slice that marshals to and from 0x-prefixed hex in
// JSON, the encoding the on-chain relaying side expects for calldata.
type HexBytes []byte

func (hb HexBytes) String() string {
	return "0x" + hex.EncodeToString(hb)
}

func (hb HexBytes) MarshalJSON() ([]byte, error) {
	s := hb.String()
	jbz := make([]byte, len(s)+2)
	jbz[0] = '"'
	copy(jbz[1:], s)
	jbz[len(jbz)-1] = '"'
	return jbz, nil
}

// UnmarshalJSON accepts hex (with or without the 0x prefix) and falls back
// to base64 for payloads coming from JSON tooling that encodes []byte the
// default Go way.
func (hb *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid hex string: %s", data)
	}

	val := string(data[1 : len(data)-1])
	if isHex(val) {
		bz, err := hex.DecodeString(strings.TrimPrefix(val, "0x"))
		if err != nil {
			return err
		}
		*hb = bz
		return nil
	}

	bz, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return err
	}
	*hb = bz
	return nil
}

func isHex(s string) bool {
	v := strings.TrimPrefix(s, "0x")
	if len(v)%2 != 0 {
		return false
	}
	for _, b := range []byte(v) {
		if !(b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F') {
			return false
		}
	}
	return true
}

// ProofData is the JSON layout of a groth16 proof split for the solidity
// verifier: proof points A, B, C followed by the commitment and its
// proof-of-knowledge.
type ProofData struct {
	Index         uint64     `json:"index"`
	Words         []HexBytes `json:"words"`
	Proof         []HexBytes `json:"proof"`
	Commitments   []HexBytes `json:"commitments"`
	CommitmentPok []HexBytes `json:"commitmentPok"`
}

// CreateProofData splits MarshalSolidity output into fr-sized chunks:
// 8 chunks of A, B, C, then a 4-byte commitment count, then two commitment
// points and two proof-of-knowledge points.
func CreateProofData(index uint64, words []HexBytes, proofSolidity []byte) *ProofData {
	proof := make([]HexBytes, 8)
	for i := 0; i < len(proof); i++ {
		proof[i] = proofSolidity[i*bn254_fr.Bytes : (i+1)*bn254_fr.Bytes]
	}

	startIdx0 := 8*bn254_fr.Bytes + 4
	commitments := make([]HexBytes, 4)
	for i := 0; i < len(commitments); i++ {
		startIdx := startIdx0 + (i * bn254_fr.Bytes)
		commitments[i] = proofSolidity[startIdx : startIdx+bn254_fr.Bytes]
	}

	return &ProofData{
		Index:         index,
		Words:         words,
		Proof:         proof,
		Commitments:   commitments[0:2],
		CommitmentPok: commitments[2:4],
	}
}
