package storage

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// LoadAuthorityKeypair reads the oracle authority's Ed25519 keypair from a
// Solana CLI JSON keypair file (a JSON array of 64 bytes: seed || pubkey).
func LoadAuthorityKeypair(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load authority keypair %q: %w", path, err)
	}
	return key, nil
}
