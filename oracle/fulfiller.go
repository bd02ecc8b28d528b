package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"

	"github.com/solana-vrf/oracle-backend/coordinator"
	"github.com/solana-vrf/oracle-backend/metrics"
	"github.com/solana-vrf/oracle-backend/vrf"
)

// FulfillerConfig holds the tunables the fulfiller needs beyond its
// collaborators, all sourced from environment configuration.
type FulfillerConfig struct {
	Concurrency           int
	MaxRetries            int
	InitialRetryDelay     time.Duration
	PriorityFeeMicroLamports uint64
}

// JobOutcome describes how one fulfillment attempt concluded, for the
// diagnostic job-history store.
type JobOutcome struct {
	RequestID  uint64
	Success    bool
	Signature  string
	LatencyMs  int64
	Err        string
	FinishedAt time.Time
}

// JobRecorder persists JobOutcomes for operator-facing history. It never
// affects correctness: see the observability job store notes.
type JobRecorder interface {
	RecordJob(JobOutcome)
}

// Fulfiller drains a queue of FulfillmentRequests with a bounded pool of
// concurrent workers, assembling and submitting a fulfillment transaction
// for each.
type Fulfiller struct {
	rpcClient *rpc.Client
	programID solana.PublicKey
	signer    *vrf.Signer
	static    coordinator.StaticCallbackTable
	cfg       FulfillerConfig
	metrics   *metrics.Collector
	recorder  JobRecorder

	sem chan struct{}
}

// NewFulfiller builds a Fulfiller. recorder may be nil to skip diagnostic
// job history.
func NewFulfiller(
	rpcClient *rpc.Client,
	programID solana.PublicKey,
	signer *vrf.Signer,
	static coordinator.StaticCallbackTable,
	cfg FulfillerConfig,
	collector *metrics.Collector,
	recorder JobRecorder,
) *Fulfiller {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Fulfiller{
		rpcClient: rpcClient,
		programID: programID,
		signer:    signer,
		static:    static,
		cfg:       cfg,
		metrics:   collector,
		recorder:  recorder,
		sem:       make(chan struct{}, cfg.Concurrency),
	}
}

// Run drains queue until it is closed or ctx is cancelled, dispatching
// each request to a goroutine bounded by the semaphore. Acquiring a permit
// when at capacity provides implicit back-pressure on the queue.
func (f *Fulfiller) Run(ctx context.Context, queue <-chan FulfillmentRequest) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-queue:
			if !ok {
				return
			}
			f.metrics.RecordRequestReceived()

			select {
			case f.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			f.metrics.RecordPendingDelta(1)
			go func(r FulfillmentRequest) {
				defer func() {
					<-f.sem
					f.metrics.RecordPendingDelta(-1)
				}()
				f.fulfill(ctx, r)
			}(req)
		}
	}
}

// fulfill runs the per-task pipeline: compute randomness, sign, build
// instructions, resolve callback accounts, submit with retry, record the
// outcome.
func (f *Fulfiller) fulfill(ctx context.Context, req FulfillmentRequest) {
	start := time.Now()

	randomness, message, signature, err := f.signer.Sign(req.Seed, req.RequestSlot, req.RequestID)
	if err != nil {
		log.Error().Err(err).Uint64("request_id", req.RequestID).Msg("failed to sign vrf message")
		f.metrics.RecordFailure()
		f.record(req.RequestID, false, "", start, err)
		return
	}

	// Callback account resolution needs the decoded on-chain request only
	// when it carries a self-describing table; fetch it lazily.
	var requestAccount *coordinator.RandomnessRequest
	if requestPDA, _, err := coordinator.RequestPDA(f.programID, req.RequestID); err == nil {
		if acctInfo, err := f.rpcClient.GetAccountInfo(ctx, requestPDA); err == nil && acctInfo != nil && acctInfo.Value != nil {
			if parsed, err := coordinator.ParseRandomnessRequest(acctInfo.Value.Data.GetBinary()); err == nil {
				requestAccount = parsed
			}
		}
	}
	if requestAccount == nil {
		requestAccount = &coordinator.RandomnessRequest{ConsumerProgram: req.ConsumerProgram}
	}

	callbackAccounts, err := coordinator.ResolveCallbackAccounts(requestAccount, req.Event, f.static)
	if err != nil {
		log.Warn().Err(err).Uint64("request_id", req.RequestID).Msg("failed to resolve callback accounts, proceeding without them")
	}

	fulfillIx, err := coordinator.BuildFulfillInstruction(coordinator.FulfillInstructionParams{
		ProgramID:        f.programID,
		Authority:        f.signer.PublicKey(),
		RequestID:        req.RequestID,
		Randomness:       randomness,
		Requester:        req.Requester,
		ConsumerProgram:  req.ConsumerProgram,
		CallbackAccounts: callbackAccounts,
	})
	if err != nil {
		log.Error().Err(err).Uint64("request_id", req.RequestID).Msg("failed to build fulfill instruction")
		f.metrics.RecordFailure()
		f.record(req.RequestID, false, "", start, err)
		return
	}

	sigVerifyIx := vrf.BuildEd25519Instruction(f.signer.PublicKey(), message[:], signature)

	instructions := make([]solana.Instruction, 0, 3)
	if f.cfg.PriorityFeeMicroLamports > 0 {
		instructions = append(instructions, coordinator.BuildPriorityFeeInstruction(f.cfg.PriorityFeeMicroLamports))
	}
	instructions = append(instructions, sigVerifyIx, fulfillIx)

	sig, err := f.sendWithRetry(ctx, instructions)
	latency := time.Since(start)

	if err != nil {
		if IsSilentSkip(err) {
			log.Warn().Err(err).Uint64("request_id", req.RequestID).Msg("fulfillment skipped, non-retryable chain condition")
			f.record(req.RequestID, false, "", start, err)
			return
		}
		log.Error().Err(err).Uint64("request_id", req.RequestID).Msg("fulfillment failed")
		f.metrics.RecordFailure()
		f.record(req.RequestID, false, "", start, err)
		return
	}

	log.Info().
		Uint64("request_id", req.RequestID).
		Str("signature", sig.String()).
		Dur("latency", latency).
		Msg("request fulfilled")
	f.metrics.RecordSuccess(latency)
	f.record(req.RequestID, true, sig.String(), start, nil)
}

func (f *Fulfiller) record(requestID uint64, success bool, sig string, start time.Time, err error) {
	if f.recorder == nil {
		return
	}
	outcome := JobOutcome{
		RequestID:  requestID,
		Success:    success,
		Signature:  sig,
		LatencyMs:  time.Since(start).Milliseconds(),
		FinishedAt: time.Now(),
	}
	if err != nil {
		outcome.Err = err.Error()
	}
	f.recorder.RecordJob(outcome)
}

// sendWithRetry implements the blockhash-refresh loop: each attempt
// fetches a fresh blockhash (signatures are bound to it), signs, and
// submits. BlockhashNotFound retries with doubling backoff up to
// MaxRetries; any other error is returned immediately.
func (f *Fulfiller) sendWithRetry(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	delay := f.cfg.InitialRetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxRetries := f.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		latest, err := f.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
		}

		tx, err := solana.NewTransaction(instructions, latest.Value.Blockhash, solana.TransactionPayer(f.signer.PublicKey()))
		if err != nil {
			return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
		}

		if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(f.signer.PublicKey()) {
				return f.signer.AuthorityKey()
			}
			return nil
		}); err != nil {
			return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
		}

		sig, err := f.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err == nil {
			if err := f.confirmTransaction(ctx, sig); err != nil {
				return solana.Signature{}, fmt.Errorf("confirm transaction: %w", err)
			}
			return sig, nil
		}

		if IsBlockhashNotFound(err) && attempt < maxRetries-1 {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("blockhash expired, retrying")
			select {
			case <-ctx.Done():
				return solana.Signature{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > 60*time.Second {
				delay = 60 * time.Second
			}
			continue
		}

		return solana.Signature{}, err
	}

	return solana.Signature{}, fmt.Errorf("max retries exceeded")
}

// confirmTransaction polls signature status until confirmed, erroring on
// chain-reported failure. It does not itself distinguish transient polling
// errors from terminal ones — those surface to the retry loop's caller.
func (f *Fulfiller) confirmTransaction(ctx context.Context, sig solana.Signature) error {
	for i := 0; i < 30; i++ {
		statuses, err := f.rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			st := statuses.Value[0]
			if st.Err != nil {
				return fmt.Errorf("transaction failed on-chain: %v", st.Err)
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed || st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return fmt.Errorf("confirmation timed out")
}
