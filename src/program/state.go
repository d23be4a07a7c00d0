package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// PostProofConfig is one campaign's on-chain configuration. ClaimersCount
// and CreatedSlot are written only by the program; this client reports
// whatever the chain holds.
type PostProofConfig struct {
	Creator       solana.PublicKey `json:"creator"`
	Seeds         string           `json:"seeds"`
	Keywords      []string         `json:"keywords"`
	ClaimersCount uint64           `json:"claimers_count"`
	RewardAmount  uint64           `json:"reward_amount"`
	MaxClaimers   uint64           `json:"max_claimers"`
	Active        bool             `json:"active"`
	CreatedSlot   uint64           `json:"created_slot"`
}

// PostVerificationLog records the outcome of one (verifier, campaign)
// verification. CurrentExecutionAccount is set while a Bonsol execution
// is still in flight and cleared by the callback.
type PostVerificationLog struct {
	Verifier                solana.PublicKey  `json:"verifier"`
	Config                  solana.PublicKey  `json:"config"`
	PostURL                 string            `json:"post_url"`
	Slot                    uint64            `json:"slot"`
	IsVerified              bool              `json:"is_verified"`
	CurrentExecutionAccount *solana.PublicKey `bin:"optional" json:"current_execution_account,omitempty"`
}

// AccountDiscriminator returns the 8-byte Anchor prefix for an account
// type name.
func AccountDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:8]
}

func decodeAccount(name string, data []byte, out interface{}) error {
	disc := AccountDiscriminator(name)
	if len(data) < len(disc) {
		return fmt.Errorf("%s account data too short: %d bytes", name, len(data))
	}
	if !bytes.Equal(data[:len(disc)], disc) {
		return fmt.Errorf("account discriminator mismatch: not a %s account", name)
	}
	if err := bin.NewBorshDecoder(data[len(disc):]).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func DecodePostProofConfig(data []byte) (*PostProofConfig, error) {
	var out PostProofConfig
	if err := decodeAccount("PostProofConfig", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func DecodePostVerificationLog(data []byte) (*PostVerificationLog, error) {
	var out PostVerificationLog
	if err := decodeAccount("PostVerificationLog", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
