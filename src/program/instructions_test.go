package program

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
)

var (
	testProgramID = solana.MustPublicKeyFromBase58("5MQLTq2D5ZhUAc6TDoAMXfnMeA32bo5DUxYco5LDMKAA")
	testCreator   = solana.MustPrivateKeyFromBase58("4Z7cXSyeFR8wNGMVXUE1TwtKn5D5Vu7FzEv69dokLv7KrQk7h6pu4LF8ZRR9yQBhc7uSM9PiLpAkKktDD8kUmyHT").PublicKey()
)

// borsh building blocks for expected wire bytes
func borshString(s string) []byte {
	out := make([]byte, 4+len(s))
	binary.LittleEndian.PutUint32(out, uint32(len(s)))
	copy(out[4:], s)
	return out
}

func borshU64(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

func instructionPayload(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	if err != nil {
		t.Fatalf("reading instruction data: %v", err)
	}
	return data
}

func TestInstructionDiscriminatorsAreDistinct(t *testing.T) {
	names := []string{"create_config", "update_config", "verify_post"}
	seen := make(map[string]string)

	for _, name := range names {
		disc := InstructionDiscriminator(name)
		if len(disc) != 8 {
			t.Fatalf("discriminator for %s has %d bytes", name, len(disc))
		}
		if prev, ok := seen[string(disc)]; ok {
			t.Fatalf("discriminators for %s and %s collided", prev, name)
		}
		seen[string(disc)] = name
	}
}

func TestCreateConfigInstructionEncoding(t *testing.T) {
	ix, err := NewCreateConfigInstruction(testProgramID, testCreator, testCreator, CreateConfigArgs{
		Seeds:        "summer",
		Keywords:     []string{"solana", "zk"},
		RewardAmount: 5000,
		MaxClaimers:  10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := instructionPayload(t, ix)
	if !bytes.Equal(data[:8], InstructionDiscriminator("create_config")) {
		t.Error("create_config discriminator mismatch")
	}

	var want []byte
	want = append(want, borshString("summer")...)
	want = append(want, 2, 0, 0, 0) // keywords vec length
	want = append(want, borshString("solana")...)
	want = append(want, borshString("zk")...)
	want = append(want, borshU64(5000)...)
	want = append(want, borshU64(10)...)

	if !bytes.Equal(data[8:], want) {
		t.Errorf("create_config args encoding mismatch:\n got %x\nwant %x", data[8:], want)
	}
}

func TestUpdateConfigEmptyPatchEncodesAllSentinels(t *testing.T) {
	ix, err := NewUpdateConfigInstruction(testProgramID, testCreator, testCreator, ConfigPatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := instructionPayload(t, ix)
	// Three borsh None tags: nothing changes.
	if !bytes.Equal(data[8:], []byte{0x00, 0x00, 0x00}) {
		t.Errorf("empty patch must encode three None tags, got %x", data[8:])
	}
}

func TestUpdateConfigExplicitFalseIsNotSentinel(t *testing.T) {
	ix, err := NewUpdateConfigInstruction(testProgramID, testCreator, testCreator, ConfigPatch{
		Active: SetBool(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := instructionPayload(t, ix)
	// Some(false) for active, None for the two counters.
	if !bytes.Equal(data[8:], []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Errorf("explicit false must encode as Some(false), got %x", data[8:])
	}
}

func TestUpdateConfigExplicitZeroIsNotSentinel(t *testing.T) {
	ix, err := NewUpdateConfigInstruction(testProgramID, testCreator, testCreator, ConfigPatch{
		MaxClaimers: SetU64(0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := instructionPayload(t, ix)
	var want []byte
	want = append(want, 0x00) // active: None
	want = append(want, 0x01) // max_claimers: Some
	want = append(want, borshU64(0)...)
	want = append(want, 0x00) // reward_amount: None
	if !bytes.Equal(data[8:], want) {
		t.Errorf("explicit zero must encode as Some(0), got %x", data[8:])
	}
}

func TestUpdateConfigFullPatchEncoding(t *testing.T) {
	ix, err := NewUpdateConfigInstruction(testProgramID, testCreator, testCreator, ConfigPatch{
		Active:       SetBool(true),
		MaxClaimers:  SetU64(25),
		RewardAmount: SetU64(7777),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := instructionPayload(t, ix)
	var want []byte
	want = append(want, 0x01, 0x01) // active: Some(true)
	want = append(want, 0x01)
	want = append(want, borshU64(25)...)
	want = append(want, 0x01)
	want = append(want, borshU64(7777)...)
	if !bytes.Equal(data[8:], want) {
		t.Errorf("full patch encoding mismatch:\n got %x\nwant %x", data[8:], want)
	}
}

func TestVerifyPostInstructionEncoding(t *testing.T) {
	accounts := VerifyPostAccounts{
		Config:           testCreator,
		VerificationLog:  testCreator,
		Verifier:         testCreator,
		BonsolProgram:    testProgramID,
		Requester:        testCreator,
		ExecutionRequest: testCreator,
		Deployment:       testCreator,
		ProgramID:        testProgramID,
	}

	ix, err := NewVerifyPostInstruction(accounts, VerifyPostArgs{
		CurrentReqID: "req-1",
		PostURL:      "https://public.api.bsky.app/xrpc/app.bsky.feed.getPosts?uris=at://did:plc:xyz/app.bsky.feed.post/abc123",
		PostSize:     2048,
		Tip:          100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := instructionPayload(t, ix)
	if !bytes.Equal(data[:8], InstructionDiscriminator("verify_post")) {
		t.Error("verify_post discriminator mismatch")
	}

	var want []byte
	want = append(want, borshString("req-1")...)
	want = append(want, borshString("https://public.api.bsky.app/xrpc/app.bsky.feed.getPosts?uris=at://did:plc:xyz/app.bsky.feed.post/abc123")...)
	want = append(want, borshU64(2048)...)
	want = append(want, borshU64(100)...)
	if !bytes.Equal(data[8:], want) {
		t.Errorf("verify_post args encoding mismatch:\n got %x\nwant %x", data[8:], want)
	}

	metas := ix.Accounts()
	if len(metas) != 9 {
		t.Fatalf("expected 9 account metas, got %d", len(metas))
	}
	if !metas[2].IsSigner {
		t.Error("verifier must be a signer")
	}
	if !metas[8].PublicKey.Equals(solana.SystemProgramID) {
		t.Error("last account must be the system program")
	}
}
