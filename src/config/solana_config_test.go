package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Any 64-byte array parses as a Solana keygen file.
const testKeypairJSON = `[23,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89,123,45,67,89]`

func writeTestKeypair(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, []byte(testKeypairJSON), 0644); err != nil {
		t.Fatalf("writing test keypair: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("PAYER_KEYPAIR_PATH", writeTestKeypair(t))
	t.Setenv("BONSOL_PROGRAM_ID", "11111111111111111111111111111111")
	t.Setenv("RPC_URL", "")
	t.Setenv("BSKY_API_URL", "")
	t.Setenv("PROGRAM_ID", "")
	t.Setenv("IMAGE_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RPCURL != DefaultRPCURL {
		t.Errorf("expected default RPC URL, got %q", cfg.RPCURL)
	}
	if cfg.BskyAPIURL != DefaultBskyAPIURL {
		t.Errorf("expected default Bluesky API URL, got %q", cfg.BskyAPIURL)
	}
	if cfg.ImageID != DefaultImageID {
		t.Errorf("expected default image id, got %q", cfg.ImageID)
	}
	if cfg.Keys.ProgramID.String() != DefaultProgramID {
		t.Errorf("expected default program id, got %s", cfg.Keys.ProgramID)
	}
	if cfg.Keys.PayerPublicKey.IsZero() {
		t.Error("expected payer public key to be derived from the keypair")
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	t.Setenv("PAYER_KEYPAIR_PATH", writeTestKeypair(t))
	t.Setenv("BONSOL_PROGRAM_ID", "11111111111111111111111111111111")
	t.Setenv("RPC_URL", "https://api.devnet.solana.com")
	t.Setenv("BSKY_API_URL", "https://bsky.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RPCURL != "https://api.devnet.solana.com" {
		t.Errorf("RPC_URL override ignored: %q", cfg.RPCURL)
	}
	if cfg.BskyAPIURL != "https://bsky.example" {
		t.Errorf("BSKY_API_URL override ignored: %q", cfg.BskyAPIURL)
	}
}

func TestLoadRequiresBonsolProgramID(t *testing.T) {
	t.Setenv("PAYER_KEYPAIR_PATH", writeTestKeypair(t))
	t.Setenv("BONSOL_PROGRAM_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error when BONSOL_PROGRAM_ID is unset")
	}
	if !strings.Contains(err.Error(), "BONSOL_PROGRAM_ID") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadRejectsInvalidProgramID(t *testing.T) {
	t.Setenv("PAYER_KEYPAIR_PATH", writeTestKeypair(t))
	t.Setenv("BONSOL_PROGRAM_ID", "11111111111111111111111111111111")
	t.Setenv("PROGRAM_ID", "not-base58!")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for an invalid PROGRAM_ID")
	}
}

func TestLoadFailsWhenHomeDirUnresolvable(t *testing.T) {
	t.Setenv("PAYER_KEYPAIR_PATH", "")
	t.Setenv("BONSOL_PROGRAM_ID", "11111111111111111111111111111111")
	t.Setenv("HOME", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error when the home directory cannot be resolved")
	}
	if !strings.Contains(err.Error(), "keypair path") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadRejectsMissingKeypair(t *testing.T) {
	t.Setenv("PAYER_KEYPAIR_PATH", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("BONSOL_PROGRAM_ID", "11111111111111111111111111111111")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for a missing keypair file")
	}
}
