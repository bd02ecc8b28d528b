package coordinator

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// ComputeBudgetProgramID is the chain's native compute-budget program.
var ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// InstructionsSysvarID is the native sysvar the coordinator program reads
// to introspect the preceding Ed25519 precompile instruction.
var InstructionsSysvarID = solana.MustPublicKeyFromBase58("Sysvar1nstructions1111111111111111111111111")

// fulfillInstructionName is the Anchor instruction name the coordinator
// program dispatches on; its discriminator is SHA256("global:<name>")[..8].
const fulfillInstructionName = "fulfill_random_words"

// FulfillInstructionDiscriminator is the 8-byte tag prefixing fulfill
// instruction data.
var FulfillInstructionDiscriminator = InstructionDiscriminator(fulfillInstructionName)

// setComputeUnitPriceTag is the compute-budget instruction's discriminant
// byte for SetComputeUnitPrice.
const setComputeUnitPriceTag = 0x03

// BuildPriorityFeeInstruction builds the compute-budget instruction that
// sets a priority fee in micro-lamports per compute unit. Callers should
// only prepend this when microLamports > 0.
func BuildPriorityFeeInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = setComputeUnitPriceTag
	binary.LittleEndian.PutUint64(data[1:], microLamports)
	return &rawInstruction{programID: ComputeBudgetProgramID, data: data}
}

// FulfillInstructionParams carries everything needed to assemble the
// fulfill_random_words instruction for one request.
type FulfillInstructionParams struct {
	ProgramID        solana.PublicKey
	Authority        solana.PublicKey
	RequestID        uint64
	Randomness       [32]byte
	Requester        solana.PublicKey
	ConsumerProgram  solana.PublicKey
	CallbackAccounts []CallbackAccount
}

// BuildFulfillInstruction assembles the coordinator's fulfill_random_words
// instruction per the account ordering and data layout the coordinator
// program requires:
//
//	data = discriminator || request_id_le || randomness[32]
//	accounts = [authority(signer,writable), config(ro), request(writable),
//	            requester(writable), consumer_program(ro), instructions_sysvar(ro),
//	            callback accounts...]
func BuildFulfillInstruction(p FulfillInstructionParams) (solana.Instruction, error) {
	configPDA, _, err := CoordinatorConfigPDA(p.ProgramID)
	if err != nil {
		return nil, err
	}
	requestPDA, _, err := RequestPDA(p.ProgramID, p.RequestID)
	if err != nil {
		return nil, err
	}

	data := make([]byte, DiscriminatorLen+8+32)
	copy(data[0:DiscriminatorLen], FulfillInstructionDiscriminator[:])
	binary.LittleEndian.PutUint64(data[DiscriminatorLen:DiscriminatorLen+8], p.RequestID)
	copy(data[DiscriminatorLen+8:], p.Randomness[:])

	accounts := []*solana.AccountMeta{
		solana.NewAccountMeta(p.Authority, true, true),
		solana.NewAccountMeta(configPDA, false, false),
		solana.NewAccountMeta(requestPDA, true, false),
		solana.NewAccountMeta(p.Requester, true, false),
		solana.NewAccountMeta(p.ConsumerProgram, false, false),
		solana.NewAccountMeta(InstructionsSysvarID, false, false),
	}
	for _, cb := range p.CallbackAccounts {
		accounts = append(accounts, solana.NewAccountMeta(cb.Pubkey, cb.Writable, false))
	}

	return &rawInstruction{programID: p.ProgramID, accounts: accounts, data: data}, nil
}

// rawInstruction is a minimal solana.Instruction implementation used where
// we assemble accounts/data directly rather than through a generated client.
type rawInstruction struct {
	programID solana.PublicKey
	accounts  []*solana.AccountMeta
	data      []byte
}

func (i *rawInstruction) ProgramID() solana.PublicKey        { return i.programID }
func (i *rawInstruction) Accounts() []*solana.AccountMeta     { return i.accounts }
func (i *rawInstruction) Data() ([]byte, error)               { return i.data, nil }
