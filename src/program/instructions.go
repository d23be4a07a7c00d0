// Package program encodes proof-of-post instructions and decodes its
// account state. Layouts mirror the deployed Anchor program: an 8-byte
// discriminator followed by borsh-serialized fields.
package program

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type CreateConfigArgs struct {
	Seeds        string
	Keywords     []string
	RewardAmount uint64
	MaxClaimers  uint64
}

type VerifyPostArgs struct {
	CurrentReqID string
	PostURL      string
	PostSize     uint64
	Tip          uint64
}

// updateConfigArgs is the wire shape of the patch: nil pointers serialize
// as borsh None, the program's "leave unchanged" sentinel.
type updateConfigArgs struct {
	Active       *bool
	MaxClaimers  *uint64
	RewardAmount *uint64
}

// InstructionDiscriminator returns the Anchor global dispatch prefix for
// a snake_case instruction name.
func InstructionDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

func instructionData(name string, args interface{}) ([]byte, error) {
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("serializing %s args: %w", name, err)
	}
	return append(InstructionDiscriminator(name), body...), nil
}

// NewCreateConfigInstruction builds the create_config instruction. The
// config account must be the PDA derived from the creator and the seed
// string carried inside args.
func NewCreateConfigInstruction(programID, configAddress, creator solana.PublicKey, args CreateConfigArgs) (solana.Instruction, error) {
	data, err := instructionData("create_config", args)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(configAddress).WRITE(),
		solana.Meta(creator).SIGNER().WRITE(),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewUpdateConfigInstruction builds the update_config instruction from a
// patch. Fields left unset in the patch ride as the sentinel and the
// program keeps their current values.
func NewUpdateConfigInstruction(programID, configAddress, creator solana.PublicKey, patch ConfigPatch) (solana.Instruction, error) {
	data, err := instructionData("update_config", updateConfigArgs{
		Active:       patch.Active.ptr(),
		MaxClaimers:  patch.MaxClaimers.ptr(),
		RewardAmount: patch.RewardAmount.ptr(),
	})
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(configAddress).WRITE(),
		solana.Meta(creator).SIGNER(),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// VerifyPostAccounts names every account verify_post references, in the
// order the program declares them.
type VerifyPostAccounts struct {
	Config           solana.PublicKey
	VerificationLog  solana.PublicKey
	Verifier         solana.PublicKey
	BonsolProgram    solana.PublicKey
	Requester        solana.PublicKey
	ExecutionRequest solana.PublicKey
	Deployment       solana.PublicKey
	ProgramID        solana.PublicKey
}

// NewVerifyPostInstruction builds the verify_post instruction that kicks
// off an asynchronous Bonsol proof.
func NewVerifyPostInstruction(accounts VerifyPostAccounts, args VerifyPostArgs) (solana.Instruction, error) {
	data, err := instructionData("verify_post", args)
	if err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Config).WRITE(),
		solana.Meta(accounts.VerificationLog).WRITE(),
		solana.Meta(accounts.Verifier).SIGNER().WRITE(),
		solana.Meta(accounts.BonsolProgram),
		solana.Meta(accounts.Requester).WRITE(),
		solana.Meta(accounts.ExecutionRequest).WRITE(),
		solana.Meta(accounts.Deployment),
		solana.Meta(accounts.ProgramID),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(accounts.ProgramID, metas, data), nil
}
