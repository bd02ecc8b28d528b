package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/solana-vrf/oracle-backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "oraclectl",
	Short: "Operator CLI for the Solana VRF oracle",
}

var keygenOutPath string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new Ed25519 authority keypair in Solana CLI JSON format",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallet := solana.NewWallet()

		data, err := json.Marshal(wallet.PrivateKey)
		if err != nil {
			return fmt.Errorf("marshal keypair: %w", err)
		}
		if err := os.WriteFile(keygenOutPath, data, 0600); err != nil {
			return fmt.Errorf("write keypair file: %w", err)
		}

		fmt.Printf("wrote authority keypair to %s\n", keygenOutPath)
		fmt.Printf("public key: %s\n", wallet.PublicKey())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the oracle's resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("cluster:                %s\n", cfg.Cluster)
		fmt.Printf("rpc url:                %s\n", cfg.RPCURL)
		fmt.Printf("ws url:                 %s\n", cfg.WSURL)
		fmt.Printf("program id:             %s\n", cfg.ProgramID)
		fmt.Printf("authority keypair path: %s\n", cfg.AuthorityKeypairPath)
		fmt.Printf("http port:              %s\n", cfg.HTTPPort)
		fmt.Printf("fulfillment concurrency: %d\n", cfg.FulfillmentConcurrency)
		fmt.Printf("max retries:            %d\n", cfg.MaxRetries)
		fmt.Printf("job store path:         %s\n", cfg.JobStorePath)
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVar(&keygenOutPath, "out", "./authority.json", "output path for the generated keypair")
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
