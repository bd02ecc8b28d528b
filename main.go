package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solana-vrf/oracle-backend/api"
	"github.com/solana-vrf/oracle-backend/consumer"
	"github.com/solana-vrf/oracle-backend/coordinator"
	"github.com/solana-vrf/oracle-backend/internal/config"
	"github.com/solana-vrf/oracle-backend/metrics"
	"github.com/solana-vrf/oracle-backend/oracle"
	"github.com/solana-vrf/oracle-backend/storage"
	"github.com/solana-vrf/oracle-backend/vrf"
)

const fulfillmentQueueSize = 256

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment defaults")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Info().Msg("starting VRF oracle")

	authority, err := storage.LoadAuthorityKeypair(cfg.AuthorityKeypairPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load authority keypair")
	}

	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid PROGRAM_ID")
	}

	signer := vrf.NewSigner(authority, cfg.HMACSecret)

	static := coordinator.StaticCallbackTable{}
	if cfg.DiceProgramID != "" {
		diceProgramID, err := solana.PublicKeyFromBase58(cfg.DiceProgramID)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid DICE_PROGRAM_ID")
		}
		static[diceProgramID] = consumer.DeriveDiceCallbackAccounts(diceProgramID)
	}

	jobStore, err := storage.NewJobStore(cfg.JobStorePath, cfg.JobStoreTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open job store")
	}
	defer jobStore.Close()

	rpcClient := rpc.New(cfg.RPCURL)
	collector := metrics.NewCollector()
	dedup := oracle.NewDeduplicator()
	queue := make(chan oracle.FulfillmentRequest, fulfillmentQueueSize)

	listener := oracle.NewListener(rpcClient, cfg.WSURL, programID, dedup, queue)
	fulfiller := oracle.NewFulfiller(
		rpcClient,
		programID,
		signer,
		static,
		oracle.FulfillerConfig{
			Concurrency:              cfg.FulfillmentConcurrency,
			MaxRetries:               cfg.MaxRetries,
			InitialRetryDelay:        cfg.InitialRetryDelay,
			PriorityFeeMicroLamports: cfg.PriorityFeeMicroLamports,
		},
		collector,
		jobStore,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go fulfiller.Run(ctx, queue)
	go func() {
		listener.CatchUpPendingRequests(ctx)
		listener.ListenForEvents(ctx)
	}()

	httpServer := api.NewServer(collector, jobStore, cfg.HTTPPort)
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server exited")
		}
	}()

	log.Info().
		Str("program_id", programID.String()).
		Str("authority", signer.PublicKey().String()).
		Str("cluster", cfg.Cluster).
		Msg("oracle fully operational")

	<-ctx.Done()
	log.Info().Msg("shutting down")
}
