package oracle

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/rs/zerolog/log"

	"github.com/solana-vrf/oracle-backend/coordinator"
)

// reconnect backoff bounds for the live log subscription: start at 1s,
// double on each consecutive failure, cap at 60s.
const (
	reconnectMinDelay = 1 * time.Second
	reconnectMaxDelay = 60 * time.Second
)

// Listener drives both ingestion paths: a one-shot catch-up scan at
// startup, and a long-lived live log subscription with auto-reconnect.
// Both paths push into the same bounded queue, deduplicated against dedup.
type Listener struct {
	rpcClient *rpc.Client
	wsURL     string
	programID solana.PublicKey
	dedup     *Deduplicator
	queue     chan<- FulfillmentRequest
}

// NewListener builds a Listener.
func NewListener(rpcClient *rpc.Client, wsURL string, programID solana.PublicKey, dedup *Deduplicator, queue chan<- FulfillmentRequest) *Listener {
	return &Listener{
		rpcClient: rpcClient,
		wsURL:     wsURL,
		programID: programID,
		dedup:     dedup,
		queue:     queue,
	}
}

// CatchUpPendingRequests enumerates RandomnessRequest accounts owned by the
// coordinator program that are still Pending, and emits one
// FulfillmentRequest per account not already seen. A failure to fetch the
// account set is logged but non-fatal: the live stream will eventually
// pick up new requests regardless.
func (l *Listener) CatchUpPendingRequests(ctx context.Context) {
	statusOffset := uint64(coordinator.DiscriminatorLen + 128) // discriminator + core body through status byte

	out, err := l.rpcClient.GetProgramAccountsWithOpts(ctx, l.programID, &rpc.GetProgramAccountsOpts{
		Encoding: solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(coordinator.RandomnessRequestAccountDiscriminator[:])},
			},
			{
				Memcmp: &rpc.RPCFilterMemcmp{Offset: statusOffset, Bytes: solana.Base58([]byte{coordinator.StatusPending})},
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("catch-up scan: getProgramAccounts failed, relying on live stream")
		return
	}

	emitted := 0
	for _, acc := range out {
		data := acc.Account.Data.GetBinary()
		req, err := coordinator.ParseRandomnessRequest(data)
		if err != nil {
			log.Warn().Err(err).Str("account", acc.Pubkey.String()).Msg("catch-up scan: skipping malformed account")
			continue
		}
		if req.NumWords == 0 {
			continue
		}

		expectedPDA, _, err := coordinator.RequestPDA(l.programID, req.RequestID)
		if err != nil || expectedPDA != acc.Pubkey {
			log.Warn().Uint64("request_id", req.RequestID).Msg("catch-up scan: PDA mismatch, skipping stale account")
			continue
		}

		if !l.dedup.InsertIfAbsent(req.RequestID) {
			continue
		}

		select {
		case l.queue <- FromRequestAccount(req):
			emitted++
		case <-ctx.Done():
			return
		}
	}

	log.Info().Int("emitted", emitted).Int("scanned", len(out)).Msg("catch-up scan complete")
}

// ListenForEvents opens a logsSubscribe subscription filtered by mentions
// of the coordinator program, and reconnects with exponential backoff on
// any subscription error or clean end. It runs until ctx is cancelled.
func (l *Listener) ListenForEvents(ctx context.Context) {
	delay := reconnectMinDelay
	resetDelay := func() { delay = reconnectMinDelay }

	for {
		if ctx.Err() != nil {
			return
		}

		if err := l.subscribeOnce(ctx, resetDelay); err != nil {
			log.Error().Err(err).Dur("retry_in", delay).Msg("live log subscription failed, reconnecting")
		} else {
			log.Warn().Dur("retry_in", delay).Msg("live log subscription ended cleanly, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

// subscribeOnce opens one logsSubscribe connection and drains it until it
// errors, closes, or ctx is cancelled. onConnected is invoked as soon as
// the subscription is established, resetting the caller's backoff delay —
// backoff resets on successful connect, not on clean end.
func (l *Listener) subscribeOnce(ctx context.Context, onConnected func()) error {
	wsClient, err := ws.Connect(ctx, l.wsURL)
	if err != nil {
		return err
	}
	defer wsClient.Close()

	sub, err := wsClient.LogsSubscribeMentions(l.programID, rpc.CommitmentConfirmed)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	log.Info().Str("program_id", l.programID.String()).Msg("live log subscription established")
	onConnected()

	for {
		if ctx.Err() != nil {
			return nil
		}

		got, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		if got == nil || got.Value == nil {
			continue
		}

		for _, line := range got.Value.Logs {
			event, err := coordinator.DecodeProgramDataLog(line)
			if err != nil {
				log.Warn().Err(err).Msg("failed to decode program data log line")
				continue
			}
			if event == nil {
				continue
			}
			if !l.dedup.InsertIfAbsent(event.RequestID) {
				continue
			}
			select {
			case l.queue <- FromEvent(event):
			case <-ctx.Done():
				return nil
			}
		}
	}
}
