// Package pda derives the program-derived addresses the proof-of-post
// instructions reference. All derivations are pure: the same seed list and
// program id always produce the same address and bump.
package pda

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed prefixes under the proof-of-post program's namespace.
const (
	ConfigSeed          = "postproofconfig"
	VerificationLogSeed = "postverificationlog"
)

// Seed prefixes under the Bonsol prover's namespace.
const (
	deploymentSeed = "deployment"
	executionSeed  = "execution"
)

// ErrDerivationExhausted is returned when no bump in the valid range
// yields an address off the ed25519 curve. Callers must surface it, never
// substitute a default address.
var ErrDerivationExhausted = errors.New("pda: bump seed space exhausted")

type Derived struct {
	Address solana.PublicKey
	Bump    uint8
}

func derive(program solana.PublicKey, seeds [][]byte) (Derived, error) {
	address, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return Derived{}, fmt.Errorf("%w: %v", ErrDerivationExhausted, err)
	}
	return Derived{Address: address, Bump: bump}, nil
}

// ConfigAddress locates the PostProofConfig account for one
// (creator, seed) campaign.
func ConfigAddress(program, creator solana.PublicKey, seed string) (Derived, error) {
	return derive(program, [][]byte{
		[]byte(ConfigSeed),
		creator.Bytes(),
		[]byte(seed),
	})
}

// VerificationLogAddress locates the PostVerificationLog account for one
// (verifier, campaign) pair.
func VerificationLogAddress(program, verifier, configAddress solana.PublicKey) (Derived, error) {
	return derive(program, [][]byte{
		[]byte(VerificationLogSeed),
		verifier.Bytes(),
		configAddress.Bytes(),
	})
}

// RequesterAddress locates the execution tracker the program keys by the
// raw request id. Request ids longer than the 32-byte seed limit are
// rejected here rather than by the RPC node.
func RequesterAddress(program solana.PublicKey, requestID string) (Derived, error) {
	if len(requestID) > solana.MaxSeedLength {
		return Derived{}, fmt.Errorf("pda: request id %q exceeds the %d-byte seed limit", requestID, solana.MaxSeedLength)
	}
	return derive(program, [][]byte{[]byte(requestID)})
}

// DeploymentAddress locates the Bonsol deployment account for a zkVM
// image id.
func DeploymentAddress(bonsolProgram solana.PublicKey, imageID string) (Derived, error) {
	return derive(bonsolProgram, [][]byte{
		[]byte(deploymentSeed),
		[]byte(imageID),
	})
}

// ExecutionAddress locates the Bonsol execution request account for one
// (requester, request id) pair.
func ExecutionAddress(bonsolProgram, requester solana.PublicKey, requestID string) (Derived, error) {
	return derive(bonsolProgram, [][]byte{
		[]byte(executionSeed),
		requester.Bytes(),
		[]byte(requestID),
	})
}
