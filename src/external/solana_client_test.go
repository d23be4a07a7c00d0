package external

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/bonsol-collective/proof-of-post/src/config"
	"github.com/bonsol-collective/proof-of-post/src/resolver"
)

func testConfig() *config.ClientConfig {
	privateKey := solana.MustPrivateKeyFromBase58("4Z7cXSyeFR8wNGMVXUE1TwtKn5D5Vu7FzEv69dokLv7KrQk7h6pu4LF8ZRR9yQBhc7uSM9PiLpAkKktDD8kUmyHT")

	return &config.ClientConfig{
		RPCURL:     "http://127.0.0.1:8899",
		BskyAPIURL: config.DefaultBskyAPIURL,
		ImageID:    config.DefaultImageID,
		Keys: &config.Keys{
			ProgramID:       solana.MustPublicKeyFromBase58(config.DefaultProgramID),
			BonsolProgramID: solana.SystemProgramID,
			PayerPublicKey:  privateKey.PublicKey(),
			PayerPrivateKey: privateKey,
		},
	}
}

func TestNewSolanaClient(t *testing.T) {
	cfg := testConfig()
	client := NewSolanaClient(cfg, resolver.New(nil, cfg.BskyAPIURL))

	if client == nil {
		t.Fatal("expected a client, got nil")
	}
	if client.cfg == nil {
		t.Error("expected config to be set")
	}
	if client.rpc == nil {
		t.Error("expected RPC client to be initialized")
	}
	if client.resolver == nil {
		t.Error("expected resolver to be set")
	}
}

func TestCreateConfigRejectsZeroMaxClaimers(t *testing.T) {
	cfg := testConfig()
	client := NewSolanaClient(cfg, resolver.New(nil, cfg.BskyAPIURL))

	_, err := client.CreateConfig(context.Background(), "summer", []string{"solana"}, 5000, 0)
	if err == nil {
		t.Fatal("expected an error for zero max claimers")
	}
	if !strings.Contains(err.Error(), "positive") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestNewRequestIDShape(t *testing.T) {
	id := NewRequestID()

	if len(id) != 32 {
		t.Fatalf("request id must fill the 32-byte seed limit, got %d chars", len(id))
	}
	if _, err := hex.DecodeString(id); err != nil {
		t.Errorf("request id is not hex: %q", id)
	}
}

func TestNewRequestIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewRequestID()
		if seen[id] {
			t.Fatalf("request id collision: %s", id)
		}
		seen[id] = true
	}
}
