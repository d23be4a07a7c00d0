package external

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/bonsol-collective/proof-of-post/src/pda"
	"github.com/bonsol-collective/proof-of-post/src/program"
)

// VerificationHandle identifies one submitted verification request. The
// proof resolves minutes later; completion is observed by polling, never
// by callback into this client.
type VerificationHandle struct {
	RequestID        string
	Signature        solana.Signature
	LogAddress       solana.PublicKey
	ExecutionAddress solana.PublicKey
}

type VerificationStatus string

const (
	StatusPending   VerificationStatus = "pending"
	StatusCompleted VerificationStatus = "completed"
	StatusFailed    VerificationStatus = "failed"
)

// VerifyPost resolves a post reference, measures the resource, and
// submits one verify_post instruction against the given campaign. Any
// failed step aborts before submission; nothing is retried.
func (sc *SolanaClient) VerifyPost(ctx context.Context, campaign solana.PublicKey, postRef string, tip uint64) (*VerificationHandle, error) {
	postURL, err := sc.resolver.Resolve(ctx, postRef)
	if err != nil {
		return nil, err
	}

	postSize, err := sc.resolver.ProbeSize(ctx, postURL)
	if err != nil {
		return nil, err
	}
	sc.log.Debugf("Probed %s: %d bytes", postURL, postSize)

	requestID := NewRequestID()
	verifier := sc.cfg.Keys.PayerPublicKey

	requester, err := pda.RequesterAddress(sc.cfg.Keys.ProgramID, requestID)
	if err != nil {
		return nil, err
	}
	logAddr, err := pda.VerificationLogAddress(sc.cfg.Keys.ProgramID, verifier, campaign)
	if err != nil {
		return nil, err
	}
	execution, err := pda.ExecutionAddress(sc.cfg.Keys.BonsolProgramID, verifier, requestID)
	if err != nil {
		return nil, err
	}
	deployment, err := pda.DeploymentAddress(sc.cfg.Keys.BonsolProgramID, sc.cfg.ImageID)
	if err != nil {
		return nil, err
	}

	ix, err := program.NewVerifyPostInstruction(program.VerifyPostAccounts{
		Config:           campaign,
		VerificationLog:  logAddr.Address,
		Verifier:         verifier,
		BonsolProgram:    sc.cfg.Keys.BonsolProgramID,
		Requester:        requester.Address,
		ExecutionRequest: execution.Address,
		Deployment:       deployment.Address,
		ProgramID:        sc.cfg.Keys.ProgramID,
	}, program.VerifyPostArgs{
		CurrentReqID: requestID,
		PostURL:      postURL,
		PostSize:     postSize,
		Tip:          tip,
	})
	if err != nil {
		return nil, err
	}

	sig, err := sc.sendInstructions(ctx, []solana.Instruction{ix})
	if err != nil {
		return nil, err
	}

	sc.log.Infof("Submitted verification %s for campaign %s in tx %s", requestID, campaign, sig)
	return &VerificationHandle{
		RequestID:        requestID,
		Signature:        sig,
		LogAddress:       logAddr.Address,
		ExecutionAddress: execution.Address,
	}, nil
}

// PollVerification reads the verification log behind a handle and maps it
// to a status. The client never blocks on proof completion.
func (sc *SolanaClient) PollVerification(ctx context.Context, handle *VerificationHandle) (VerificationStatus, error) {
	return sc.statusFromLog(ctx, handle.LogAddress)
}

// VerificationStatusFor reports the status of the latest verification a
// verifier submitted against a campaign, without needing the original
// handle.
func (sc *SolanaClient) VerificationStatusFor(ctx context.Context, verifier, campaign solana.PublicKey) (VerificationStatus, error) {
	logAddr, err := pda.VerificationLogAddress(sc.cfg.Keys.ProgramID, verifier, campaign)
	if err != nil {
		return "", err
	}
	return sc.statusFromLog(ctx, logAddr.Address)
}

func (sc *SolanaClient) statusFromLog(ctx context.Context, logAddress solana.PublicKey) (VerificationStatus, error) {
	account, err := sc.rpc.GetAccountInfo(ctx, logAddress)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return statusOf(nil), nil
		}
		return "", fmt.Errorf("fetching verification log: %w", err)
	}
	if account.Value == nil {
		return statusOf(nil), nil
	}

	log, err := program.DecodePostVerificationLog(account.Value.Data.GetBinary())
	if err != nil {
		return "", err
	}

	return statusOf(log), nil
}

// statusOf maps a verification log to a status. A nil log means the
// account does not exist yet: the program creates it on first submission,
// so absence is pending, not failure.
func statusOf(log *program.PostVerificationLog) VerificationStatus {
	if log == nil {
		return StatusPending
	}
	if log.CurrentExecutionAccount != nil {
		return StatusPending
	}
	if log.IsVerified {
		return StatusCompleted
	}
	return StatusFailed
}
