// Package coordinator decodes the VRF coordinator program's on-chain
// account layouts and events, and assembles the instructions the oracle
// submits back to it. The coordinator program itself is not implemented
// here — this package only speaks its wire contract.
package coordinator

import "crypto/sha256"

// DiscriminatorLen is the size of an Anchor-style 8-byte discriminator.
const DiscriminatorLen = 8

// EventDiscriminator returns the first 8 bytes of SHA256("event:<name>"),
// matching Anchor's event discriminator convention.
func EventDiscriminator(name string) [DiscriminatorLen]byte {
	return discriminator("event:" + name)
}

// AccountDiscriminator returns the first 8 bytes of SHA256("account:<name>"),
// matching Anchor's account discriminator convention.
func AccountDiscriminator(name string) [DiscriminatorLen]byte {
	return discriminator("account:" + name)
}

// InstructionDiscriminator returns the first 8 bytes of SHA256("global:<name>"),
// matching Anchor's instruction discriminator convention.
func InstructionDiscriminator(name string) [DiscriminatorLen]byte {
	return discriminator("global:" + name)
}

func discriminator(preimage string) [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte(preimage))
	var d [DiscriminatorLen]byte
	copy(d[:], sum[:DiscriminatorLen])
	return d
}
