// Package consumer holds static callback-account derivers for known
// consumer programs that predate the self-describing callback account
// table (coordinator.ResolveCallbackAccounts prefers the self-describing
// form when present).
package consumer

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solana-vrf/oracle-backend/coordinator"
)

// DeriveDiceCallbackAccounts is the static deriver for the example
// "roll-dice" consumer program: a read-only "game-config" PDA, and a
// writable "dice-result" PDA seeded by the requester and request id.
func DeriveDiceCallbackAccounts(diceProgramID solana.PublicKey) coordinator.StaticCallbackDeriver {
	return func(req *coordinator.RandomWordsRequestedEvent) ([]coordinator.CallbackAccount, error) {
		gameConfig, _, err := solana.FindProgramAddress([][]byte{[]byte("game-config")}, diceProgramID)
		if err != nil {
			return nil, err
		}

		var idBuf [8]byte
		binary.LittleEndian.PutUint64(idBuf[:], req.RequestID)
		diceResult, _, err := solana.FindProgramAddress(
			[][]byte{[]byte("dice-result"), req.Requester.Bytes(), idBuf[:]},
			diceProgramID,
		)
		if err != nil {
			return nil, err
		}

		return []coordinator.CallbackAccount{
			{Pubkey: gameConfig, Writable: false},
			{Pubkey: diceResult, Writable: true},
		}, nil
	}
}
