package coordinator

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Status values for RandomnessRequest.Status.
const (
	StatusPending   uint8 = 0
	StatusFulfilled uint8 = 1
)

// Derivation seed labels, matching the coordinator program's PDA seeds.
const (
	SeedCoordinatorConfig = "coordinator-config"
	SeedRequest           = "request"
)

// CoordinatorConfig is the singleton program configuration account.
type CoordinatorConfig struct {
	Admin                solana.PublicKey
	Authority             solana.PublicKey
	FeePerWord            uint64
	MaxWordsPerRequest    uint32
	RequestCounter        uint64
	SubscriptionCounter   uint64
	Bump                  uint8
}

// coordinatorConfigBodyLen is the byte length of CoordinatorConfig after its
// 8-byte discriminator: admin(32) + authority(32) + fee(8) + max_words(4) +
// request_counter(8) + subscription_counter(8) + bump(1).
const coordinatorConfigBodyLen = 32 + 32 + 8 + 4 + 8 + 8 + 1

// ParseCoordinatorConfig decodes a CoordinatorConfig account body, skipping
// the leading 8-byte discriminator.
func ParseCoordinatorConfig(data []byte) (*CoordinatorConfig, error) {
	if len(data) < DiscriminatorLen+coordinatorConfigBodyLen {
		return nil, fmt.Errorf("coordinator config: short account data (%d bytes)", len(data))
	}
	b := data[DiscriminatorLen:]

	cfg := &CoordinatorConfig{}
	copy(cfg.Admin[:], b[0:32])
	copy(cfg.Authority[:], b[32:64])
	cfg.FeePerWord = binary.LittleEndian.Uint64(b[64:72])
	cfg.MaxWordsPerRequest = binary.LittleEndian.Uint32(b[72:76])
	cfg.RequestCounter = binary.LittleEndian.Uint64(b[76:84])
	cfg.SubscriptionCounter = binary.LittleEndian.Uint64(b[84:92])
	cfg.Bump = b[92]
	return cfg, nil
}

// Subscription is a billing account, one per consumer group.
type Subscription struct {
	ID            uint64
	Owner         solana.PublicKey
	BalanceLamports uint64
	RequestCount  uint64
	ConsumerCount uint32
}

const subscriptionBodyLen = 8 + 32 + 8 + 8 + 4

// ParseSubscription decodes a Subscription account body.
func ParseSubscription(data []byte) (*Subscription, error) {
	if len(data) < DiscriminatorLen+subscriptionBodyLen {
		return nil, fmt.Errorf("subscription: short account data (%d bytes)", len(data))
	}
	b := data[DiscriminatorLen:]

	s := &Subscription{}
	s.ID = binary.LittleEndian.Uint64(b[0:8])
	copy(s.Owner[:], b[8:40])
	s.BalanceLamports = binary.LittleEndian.Uint64(b[40:48])
	s.RequestCount = binary.LittleEndian.Uint64(b[48:56])
	s.ConsumerCount = binary.LittleEndian.Uint32(b[56:60])
	return s, nil
}

// ConsumerRegistration authorises a program to debit a subscription.
type ConsumerRegistration struct {
	SubscriptionID  uint64
	ConsumerProgram solana.PublicKey
	Nonce           uint64
	Bump            uint8
}

const consumerRegistrationBodyLen = 8 + 32 + 8 + 1

// ParseConsumerRegistration decodes a ConsumerRegistration account body.
func ParseConsumerRegistration(data []byte) (*ConsumerRegistration, error) {
	if len(data) < DiscriminatorLen+consumerRegistrationBodyLen {
		return nil, fmt.Errorf("consumer registration: short account data (%d bytes)", len(data))
	}
	b := data[DiscriminatorLen:]

	c := &ConsumerRegistration{}
	c.SubscriptionID = binary.LittleEndian.Uint64(b[0:8])
	copy(c.ConsumerProgram[:], b[8:40])
	c.Nonce = binary.LittleEndian.Uint64(b[40:48])
	c.Bump = b[48]
	return c, nil
}

// RandomnessRequest is the fixed-layout account body the oracle both reads
// (catch-up scan, self-describing callback resolution) and targets with the
// fulfill instruction.
type RandomnessRequest struct {
	RequestID            uint64
	SubscriptionID       uint64
	ConsumerProgram      solana.PublicKey
	Requester            solana.PublicKey
	NumWords             uint32
	Seed                 [32]byte
	RequestSlot          uint64
	CallbackComputeLimit uint32
	Status               uint8
	Randomness           [32]byte
	FulfilledSlot        uint64
	Bump                 uint8

	// CallbackAccounts is populated when the request carries a
	// self-describing callback account table; nil for older accounts
	// that predate it.
	CallbackAccounts []CallbackAccount
}

// CallbackAccount is one entry of the self-describing callback account table.
type CallbackAccount struct {
	Pubkey   solana.PublicKey
	Writable bool
}

// coreBodyLen is the byte length of the core RandomnessRequest fields,
// before any self-describing callback table: request_id(8) +
// subscription_id(8) + consumer_program(32) + requester(32) + num_words(4) +
// seed(32) + request_slot(8) + callback_compute_limit(4) + status(1) +
// randomness(32) + fulfilled_slot(8) + bump(1) = 170 bytes.
const coreBodyLen = 8 + 8 + 32 + 32 + 4 + 32 + 8 + 4 + 1 + 32 + 8 + 1

// maxCallbackAccounts is the maximum number of self-describing callback
// accounts a request can carry.
const maxCallbackAccounts = 4

// callbackCountOffset/callbackKeysOffset/callbackBitmapOffset are relative
// to the start of the body (after the 8-byte discriminator), matching the
// on-chain request account's trailing callback table.
const (
	callbackCountOffset  = coreBodyLen
	callbackKeysOffset   = callbackCountOffset + 1
	callbackBitmapOffset = callbackKeysOffset + 32*maxCallbackAccounts
	minBodyLenWithCallbacks = callbackBitmapOffset + 1
)

// ParseRandomnessRequest decodes a RandomnessRequest account body, skipping
// the leading 8-byte discriminator. Requests predating the self-describing
// callback account table decode with CallbackAccounts == nil.
func ParseRandomnessRequest(data []byte) (*RandomnessRequest, error) {
	if len(data) < DiscriminatorLen+coreBodyLen {
		return nil, fmt.Errorf("randomness request: short account data (%d bytes)", len(data))
	}
	b := data[DiscriminatorLen:]

	r := &RandomnessRequest{}
	r.RequestID = binary.LittleEndian.Uint64(b[0:8])
	r.SubscriptionID = binary.LittleEndian.Uint64(b[8:16])
	copy(r.ConsumerProgram[:], b[16:48])
	copy(r.Requester[:], b[48:80])
	r.NumWords = binary.LittleEndian.Uint32(b[80:84])
	copy(r.Seed[:], b[84:116])
	r.RequestSlot = binary.LittleEndian.Uint64(b[116:124])
	r.CallbackComputeLimit = binary.LittleEndian.Uint32(b[124:128])
	r.Status = b[128]
	copy(r.Randomness[:], b[129:161])
	r.FulfilledSlot = binary.LittleEndian.Uint64(b[161:169])
	r.Bump = b[169]

	if len(b) >= minBodyLenWithCallbacks {
		count := int(b[callbackCountOffset])
		if count > maxCallbackAccounts {
			count = maxCallbackAccounts
		}
		bitmap := b[callbackBitmapOffset]
		accounts := make([]CallbackAccount, 0, count)
		for i := 0; i < count; i++ {
			start := callbackKeysOffset + i*32
			var pk solana.PublicKey
			copy(pk[:], b[start:start+32])
			accounts = append(accounts, CallbackAccount{
				Pubkey:   pk,
				Writable: (bitmap>>uint(i))&1 == 1,
			})
		}
		r.CallbackAccounts = accounts
	}

	return r, nil
}

// RequestPDA derives the address of the RandomnessRequest account for a
// given request id: seeds = ["request", request_id_le].
func RequestPDA(programID solana.PublicKey, requestID uint64) (solana.PublicKey, uint8, error) {
	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], requestID)
	return solana.FindProgramAddress([][]byte{[]byte(SeedRequest), idBuf[:]}, programID)
}

// CoordinatorConfigPDA derives the address of the singleton CoordinatorConfig account.
func CoordinatorConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(SeedCoordinatorConfig)}, programID)
}
