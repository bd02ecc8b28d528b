package vrf

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate authority key: %v", err)
	}
	return NewSigner(priv, []byte("test-secret"))
}

func TestComputeRandomnessDeterministicForSameInputs(t *testing.T) {
	s := newTestSigner(t)
	seed := [32]byte{1}

	r1 := s.ComputeRandomness(seed, 100, 0)
	r2 := s.ComputeRandomness(seed, 100, 0)
	if r1 != r2 {
		t.Fatal("expected identical randomness for identical inputs")
	}
}

func TestComputeRandomnessDiffersBySlot(t *testing.T) {
	s := newTestSigner(t)
	seed := [32]byte{1}

	r1 := s.ComputeRandomness(seed, 100, 0)
	r2 := s.ComputeRandomness(seed, 101, 0)
	if r1 == r2 {
		t.Fatal("expected different randomness for different slots")
	}
}

func TestComputeRandomnessDiffersByRequestID(t *testing.T) {
	s := newTestSigner(t)
	seed := [32]byte{1}

	r1 := s.ComputeRandomness(seed, 100, 0)
	r2 := s.ComputeRandomness(seed, 100, 1)
	if r1 == r2 {
		t.Fatal("expected different randomness for different request ids")
	}
}

func TestBuildMessageLayout(t *testing.T) {
	randomness := [RandomnessLen]byte{}
	for i := range randomness {
		randomness[i] = byte(i)
	}
	msg := BuildMessage(7, randomness)
	if len(msg) != MessageLen {
		t.Fatalf("expected message length %d, got %d", MessageLen, len(msg))
	}
	if msg[0] != 7 {
		t.Fatalf("expected request id in first byte (LE), got %d", msg[0])
	}
	if !bytes.Equal(msg[8:], randomness[:]) {
		t.Fatal("expected randomness appended after request id")
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	s := newTestSigner(t)
	seed := [32]byte{9}

	randomness, _, sig, err := s.Sign(seed, 55, 3)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !s.Verify(3, randomness, sig) {
		t.Fatal("expected signature to verify against its own message")
	}
	if s.Verify(4, randomness, sig) {
		t.Fatal("expected signature verification to fail for a different request id")
	}
}

func TestBuildEd25519InstructionOffsets(t *testing.T) {
	s := newTestSigner(t)
	seed := [32]byte{3}

	randomness, message, sig, err := s.Sign(seed, 1, 42)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_ = randomness

	ix := BuildEd25519Instruction(s.PublicKey(), message[:], sig)
	data, err := ix.Data()
	if err != nil {
		t.Fatalf("instruction data: %v", err)
	}

	if data[0] != 1 {
		t.Fatalf("expected num_signatures=1, got %d", data[0])
	}

	pubkeyStart := ed25519InstructionHeaderLen + ed25519SignatureOffsetsLen
	if !bytes.Equal(data[pubkeyStart:pubkeyStart+32], s.PublicKey().Bytes()) {
		t.Fatal("pubkey not found at expected offset")
	}

	sigStart := pubkeyStart + 32
	if !bytes.Equal(data[sigStart:sigStart+64], sig[:]) {
		t.Fatal("signature not found at expected offset")
	}

	msgStart := sigStart + 64
	if !bytes.Equal(data[msgStart:], message[:]) {
		t.Fatal("message not found at expected offset")
	}

	if pubkeyStart != 16 || sigStart != 48 || msgStart != 112 {
		t.Fatalf("unexpected offsets: pubkey=%d sig=%d msg=%d", pubkeyStart, sigStart, msgStart)
	}
}
