// Package external submits proof-of-post instructions over Solana RPC and
// reads the accounts they produce.
package external

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"

	"github.com/bonsol-collective/proof-of-post/pkg/logger"
	"github.com/bonsol-collective/proof-of-post/src/config"
	"github.com/bonsol-collective/proof-of-post/src/pda"
	"github.com/bonsol-collective/proof-of-post/src/program"
	"github.com/bonsol-collective/proof-of-post/src/resolver"
)

var (
	// ErrNotFound means no campaign config exists at the derived address.
	ErrNotFound = errors.New("campaign config not found")

	// ErrDuplicateConfig means a config already exists for the
	// (creator, seed) pair; the program rejects duplicate creation.
	ErrDuplicateConfig = errors.New("campaign config already exists")

	// ErrSubmissionRejected wraps any transaction the cluster declined.
	ErrSubmissionRejected = errors.New("instruction submission rejected")
)

type SolanaClient struct {
	cfg      *config.ClientConfig
	rpc      *rpc.Client
	resolver *resolver.Resolver
	log      *logger.Logger
}

func NewSolanaClient(cfg *config.ClientConfig, res *resolver.Resolver) *SolanaClient {
	return &SolanaClient{
		cfg:      cfg,
		rpc:      rpc.New(cfg.RPCURL),
		resolver: res,
		log:      logger.Default(),
	}
}

// CreateConfig creates a campaign config for the payer and the given seed
// string. The derived address is pre-checked so duplicate creation fails
// here instead of costing a rejected transaction.
func (sc *SolanaClient) CreateConfig(ctx context.Context, seed string, keywords []string, rewardAmount, maxClaimers uint64) (solana.Signature, error) {
	if maxClaimers == 0 {
		return solana.Signature{}, fmt.Errorf("max claimers must be positive")
	}

	creator := sc.cfg.Keys.PayerPublicKey
	configAddr, err := pda.ConfigAddress(sc.cfg.Keys.ProgramID, creator, seed)
	if err != nil {
		return solana.Signature{}, err
	}

	existing, err := sc.rpc.GetAccountInfo(ctx, configAddr.Address)
	if err != nil && !errors.Is(err, rpc.ErrNotFound) {
		return solana.Signature{}, fmt.Errorf("checking config account: %w", err)
	}
	if err == nil && existing.Value != nil {
		return solana.Signature{}, fmt.Errorf("%w: %s (seed %q)", ErrDuplicateConfig, configAddr.Address, seed)
	}

	ix, err := program.NewCreateConfigInstruction(sc.cfg.Keys.ProgramID, configAddr.Address, creator, program.CreateConfigArgs{
		Seeds:        seed,
		Keywords:     keywords,
		RewardAmount: rewardAmount,
		MaxClaimers:  maxClaimers,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := sc.sendInstructions(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, err
	}

	sc.log.Infof("Created campaign config %s (seed %q) in tx %s", configAddr.Address, seed, sig)
	return sig, nil
}

// UpdateConfig applies a partial patch to the payer's campaign config.
// The whole patch rides in one instruction; fields left unset are
// transmitted as the program's "unchanged" sentinel.
func (sc *SolanaClient) UpdateConfig(ctx context.Context, seed string, patch program.ConfigPatch) (solana.Signature, error) {
	creator := sc.cfg.Keys.PayerPublicKey
	configAddr, err := pda.ConfigAddress(sc.cfg.Keys.ProgramID, creator, seed)
	if err != nil {
		return solana.Signature{}, err
	}

	ix, err := program.NewUpdateConfigInstruction(sc.cfg.Keys.ProgramID, configAddr.Address, creator, patch)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := sc.sendInstructions(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, err
	}

	sc.log.Infof("Updated campaign config %s in tx %s", configAddr.Address, sig)
	return sig, nil
}

// ReadConfig fetches and decodes the campaign config for any
// (creator, seed) pair.
func (sc *SolanaClient) ReadConfig(ctx context.Context, creator solana.PublicKey, seed string) (*program.PostProofConfig, error) {
	configAddr, err := pda.ConfigAddress(sc.cfg.Keys.ProgramID, creator, seed)
	if err != nil {
		return nil, err
	}

	account, err := sc.rpc.GetAccountInfo(ctx, configAddr.Address)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s (seed %q)", ErrNotFound, configAddr.Address, seed)
		}
		return nil, fmt.Errorf("fetching config account: %w", err)
	}
	if account.Value == nil {
		return nil, fmt.Errorf("%w: %s (seed %q)", ErrNotFound, configAddr.Address, seed)
	}

	return program.DecodePostProofConfig(account.Value.Data.GetBinary())
}

func (sc *SolanaClient) sendInstructions(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	latest, err := sc.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("fetching blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		latest.Value.Blockhash,
		solana.TransactionPayer(sc.cfg.Keys.PayerPublicKey),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("building transaction: %w", err)
	}

	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(sc.cfg.Keys.PayerPublicKey) {
			return &sc.cfg.Keys.PayerPrivateKey
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("signing transaction: %w", err)
	}

	sig, err := sc.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionRejected, err)
	}

	return sig, nil
}

// NewRequestID returns a random 128-bit id rendered as 32 hex characters,
// the maximum PDA seed length. Randomness keeps ids unique across
// concurrent submitters, which wall-clock timestamps cannot.
func NewRequestID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
