// Package vrf computes the oracle's deterministic randomness output and
// signs it for on-chain verification.
package vrf

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
)

// RandomnessLen is the size in bytes of a computed randomness output.
const RandomnessLen = 32

// MessageLen is the size of the signed message: request_id (8) || randomness (32).
const MessageLen = 8 + RandomnessLen

// Signer holds the oracle authority keypair and HMAC secret used to derive
// and sign randomness for fulfillment transactions.
type Signer struct {
	mu         sync.Mutex
	authority  solana.PrivateKey
	hmacSecret []byte
}

// NewSigner builds a Signer from an authority keypair and HMAC secret.
func NewSigner(authority solana.PrivateKey, hmacSecret []byte) *Signer {
	log.Info().
		Str("authority", authority.PublicKey().String()).
		Msg("VRF signer initialized")

	return &Signer{
		authority:  authority,
		hmacSecret: hmacSecret,
	}
}

// ComputeRandomness derives the 32-byte VRF output for a request:
//
//	output = HMAC-SHA256(secret, seed || request_slot_le || request_id_le)
//
// The caller-provided seed prevents the oracle from precomputing outputs,
// request_slot binds the output to chain state at request time, and
// request_id ensures uniqueness across requests.
func (s *Signer) ComputeRandomness(seed [32]byte, requestSlot, requestID uint64) [RandomnessLen]byte {
	mac := hmac.New(sha256.New, s.hmacSecret)
	mac.Write(seed[:])

	var slotBuf, idBuf [8]byte
	binary.LittleEndian.PutUint64(slotBuf[:], requestSlot)
	binary.LittleEndian.PutUint64(idBuf[:], requestID)
	mac.Write(slotBuf[:])
	mac.Write(idBuf[:])

	var out [RandomnessLen]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// BuildMessage lays out the 40-byte message the oracle signs: request_id (u64 LE) || randomness.
func BuildMessage(requestID uint64, randomness [RandomnessLen]byte) [MessageLen]byte {
	var msg [MessageLen]byte
	binary.LittleEndian.PutUint64(msg[:8], requestID)
	copy(msg[8:], randomness[:])
	return msg
}

// Sign computes randomness for the given request and signs it with the
// oracle's Ed25519 authority key, returning the randomness, the message
// that was signed, and the 64-byte signature.
func (s *Signer) Sign(seed [32]byte, requestSlot, requestID uint64) (randomness [RandomnessLen]byte, message [MessageLen]byte, signature [ed25519.SignatureSize]byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	randomness = s.ComputeRandomness(seed, requestSlot, requestID)
	message = BuildMessage(requestID, randomness)

	sig, signErr := s.authority.Sign(message[:])
	if signErr != nil {
		err = fmt.Errorf("sign vrf message: %w", signErr)
		return
	}
	copy(signature[:], sig[:])
	return
}

// PublicKey returns the oracle's authority public key.
func (s *Signer) PublicKey() solana.PublicKey {
	return s.authority.PublicKey()
}

// AuthorityKey returns the oracle's authority private key, for signing
// fulfillment transactions as fee-payer.
func (s *Signer) AuthorityKey() *solana.PrivateKey {
	return &s.authority
}

// Verify checks a signature over the given request_id/randomness message
// against the signer's own public key. Used in tests and local sanity
// checks; the coordinator program performs the authoritative on-chain check.
func (s *Signer) Verify(requestID uint64, randomness [RandomnessLen]byte, signature [ed25519.SignatureSize]byte) bool {
	msg := BuildMessage(requestID, randomness)
	return ed25519.Verify(ed25519.PublicKey(s.authority.PublicKey().Bytes()), msg[:], signature[:])
}
