package oracle

import (
	"github.com/gagliardetto/solana-go"
	"github.com/solana-vrf/oracle-backend/coordinator"
)

// FulfillmentRequest is a unit of work produced by the listener (from
// either the catch-up scan or the live log subscription) and consumed by
// the fulfiller.
type FulfillmentRequest struct {
	RequestID            uint64
	SubscriptionID       uint64
	ConsumerProgram      solana.PublicKey
	Requester            solana.PublicKey
	NumWords             uint32
	Seed                 [32]byte
	RequestSlot          uint64
	CallbackComputeLimit uint32

	// Event carries the originating event payload, used for static
	// callback account derivation. Nil when the request came from the
	// catch-up scan rather than a live log line.
	Event *coordinator.RandomWordsRequestedEvent
}

// FromEvent builds a FulfillmentRequest from a decoded RandomWordsRequested event.
func FromEvent(e *coordinator.RandomWordsRequestedEvent) FulfillmentRequest {
	return FulfillmentRequest{
		RequestID:            e.RequestID,
		SubscriptionID:       e.SubscriptionID,
		ConsumerProgram:      e.ConsumerProgram,
		Requester:            e.Requester,
		NumWords:             e.NumWords,
		Seed:                 e.Seed,
		RequestSlot:          e.RequestSlot,
		CallbackComputeLimit: e.CallbackComputeLimit,
		Event:                e,
	}
}

// FromRequestAccount builds a FulfillmentRequest from a decoded on-chain
// RandomnessRequest account, as seen by the catch-up scan.
func FromRequestAccount(req *coordinator.RandomnessRequest) FulfillmentRequest {
	return FulfillmentRequest{
		RequestID:            req.RequestID,
		SubscriptionID:       req.SubscriptionID,
		ConsumerProgram:      req.ConsumerProgram,
		Requester:            req.Requester,
		NumWords:             req.NumWords,
		Seed:                 req.Seed,
		RequestSlot:          req.RequestSlot,
		CallbackComputeLimit: req.CallbackComputeLimit,
	}
}
