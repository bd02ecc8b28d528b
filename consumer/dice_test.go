package consumer

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/solana-vrf/oracle-backend/coordinator"
)

func TestDeriveDiceCallbackAccountsReturnsExpectedShape(t *testing.T) {
	diceProgramID := solana.NewWallet().PublicKey()
	deriver := DeriveDiceCallbackAccounts(diceProgramID)

	event := &coordinator.RandomWordsRequestedEvent{
		RequestID: 5,
		Requester: solana.NewWallet().PublicKey(),
	}

	accounts, err := deriver(event)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 callback accounts, got %d", len(accounts))
	}
	if accounts[0].Writable {
		t.Error("expected game-config to be read-only")
	}
	if !accounts[1].Writable {
		t.Error("expected dice-result to be writable")
	}

	again, err := deriver(event)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if accounts[0].Pubkey != again[0].Pubkey || accounts[1].Pubkey != again[1].Pubkey {
		t.Error("expected deterministic PDA derivation for the same event")
	}
}
