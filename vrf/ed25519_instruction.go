package vrf

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Ed25519ProgramID is the native Solana Ed25519 signature-verify precompile.
var Ed25519ProgramID = solana.MustPublicKeyFromBase58("Ed25519SigVerify111111111111111111111111111")

// ed25519InstructionHeaderLen is the fixed header before the signature offsets table.
const ed25519InstructionHeaderLen = 2

// ed25519SignatureOffsetsLen is the size of a single offsets entry.
const ed25519SignatureOffsetsLen = 14

// BuildEd25519Instruction builds the native Ed25519 signature-verify
// instruction that must precede the fulfill instruction in the same
// transaction. Layout (single signature):
//
//	num_signatures:        u8  = 1
//	padding:                u8  = 0
//	signature_offset:      u16 (offset of the 64-byte signature in instruction data)
//	signature_instr_index: u16 = 0xFFFF (this instruction)
//	pubkey_offset:         u16
//	pubkey_instr_index:    u16 = 0xFFFF
//	message_data_offset:   u16
//	message_data_size:     u16
//	message_instr_index:   u16 = 0xFFFF
//	[pubkey bytes][signature bytes][message bytes]
func BuildEd25519Instruction(pubkey solana.PublicKey, message []byte, signature [64]byte) solana.Instruction {
	const instrIndexSelf = 0xFFFF

	offsetsEnd := ed25519InstructionHeaderLen + ed25519SignatureOffsetsLen
	pubkeyOffset := uint16(offsetsEnd)
	sigOffset := pubkeyOffset + 32
	messageOffset := sigOffset + 64
	messageSize := uint16(len(message))

	data := make([]byte, offsetsEnd+64+32+len(message))
	data[0] = 1 // num_signatures
	data[1] = 0 // padding

	put16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(data[off:], v) }
	put16(2, sigOffset)
	put16(4, instrIndexSelf)
	put16(6, pubkeyOffset)
	put16(8, instrIndexSelf)
	put16(10, messageOffset)
	put16(12, messageSize)
	put16(14, instrIndexSelf)

	copy(data[sigOffset:], signature[:])
	copy(data[pubkeyOffset:], pubkey.Bytes())
	copy(data[messageOffset:], message)

	return &ed25519Instruction{data: data}
}

// ed25519Instruction is a minimal solana.Instruction implementation: the
// precompile takes no accounts, only instruction data.
type ed25519Instruction struct {
	data []byte
}

func (i *ed25519Instruction) ProgramID() solana.PublicKey {
	return Ed25519ProgramID
}

func (i *ed25519Instruction) Accounts() []*solana.AccountMeta {
	return nil
}

func (i *ed25519Instruction) Data() ([]byte, error) {
	return i.data, nil
}
