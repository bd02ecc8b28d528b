package coordinator

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// programDataLogPrefix is the exact prefix (note the trailing space) that
// precedes base64-encoded event payloads in transaction logs.
const programDataLogPrefix = "Program data: "

// RandomWordsRequestedEvent mirrors the on-chain event emitted when a new
// request is created.
type RandomWordsRequestedEvent struct {
	RequestID            uint64
	SubscriptionID       uint64
	ConsumerProgram      solana.PublicKey
	Requester            solana.PublicKey
	NumWords             uint32
	Seed                 [32]byte
	RequestSlot          uint64
	CallbackComputeLimit uint32
}

// randomWordsRequestedBodyLen is the byte length of the event body after
// its 8-byte discriminator.
const randomWordsRequestedBodyLen = 8 + 8 + 32 + 32 + 4 + 32 + 8 + 4

var randomWordsRequestedDiscriminator = EventDiscriminator("RandomWordsRequested")

// RandomnessRequestAccountDiscriminator is the discriminator prefixing
// RandomnessRequest account bodies, used by the catch-up scan's memcmp filter.
var RandomnessRequestAccountDiscriminator = AccountDiscriminator("RandomnessRequest")

// ParseRandomWordsRequestedEvent decodes an event body, skipping the
// leading 8-byte discriminator (the caller has already matched it).
func ParseRandomWordsRequestedEvent(data []byte) (*RandomWordsRequestedEvent, error) {
	if len(data) < DiscriminatorLen+randomWordsRequestedBodyLen {
		return nil, fmt.Errorf("random words requested event: short payload (%d bytes)", len(data))
	}
	b := data[DiscriminatorLen:]

	e := &RandomWordsRequestedEvent{}
	e.RequestID = binary.LittleEndian.Uint64(b[0:8])
	e.SubscriptionID = binary.LittleEndian.Uint64(b[8:16])
	copy(e.ConsumerProgram[:], b[16:48])
	copy(e.Requester[:], b[48:80])
	e.NumWords = binary.LittleEndian.Uint32(b[80:84])
	copy(e.Seed[:], b[84:116])
	e.RequestSlot = binary.LittleEndian.Uint64(b[116:124])
	e.CallbackComputeLimit = binary.LittleEndian.Uint32(b[124:128])
	return e, nil
}

// DecodeProgramDataLog extracts a RandomWordsRequestedEvent from a single
// transaction log line, if and only if the line carries the "Program
// data: " prefix and its decoded payload matches the event discriminator.
// Returns (nil, nil) for lines that simply don't match — that is not an error.
func DecodeProgramDataLog(line string) (*RandomWordsRequestedEvent, error) {
	suffix, ok := strings.CutPrefix(line, programDataLogPrefix)
	if !ok {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(suffix)
	if err != nil {
		return nil, fmt.Errorf("decode program data log: %w", err)
	}
	if len(raw) < DiscriminatorLen {
		return nil, nil
	}
	if [DiscriminatorLen]byte(raw[:DiscriminatorLen]) != randomWordsRequestedDiscriminator {
		return nil, nil
	}

	return ParseRandomWordsRequestedEvent(raw)
}
