package coordinator

import (
	"github.com/gagliardetto/solana-go"
)

// StaticCallbackDeriver derives the remaining_accounts for a consumer
// program's callback CPI from the request event payload, for consumers
// that predate the self-describing callback account table.
type StaticCallbackDeriver func(req *RandomWordsRequestedEvent) ([]CallbackAccount, error)

// StaticCallbackTable maps known consumer program ids to their callback
// account deriver, a fallback for consumer programs that predate
// self-describing requests.
type StaticCallbackTable map[solana.PublicKey]StaticCallbackDeriver

// ResolveCallbackAccounts determines the remaining_accounts to append to a
// fulfill instruction for the given request. Self-describing callback
// accounts carried on the request account take precedence; the static
// table is consulted only when the request carries none. A request with
// neither is fulfilled with zero callback accounts.
func ResolveCallbackAccounts(req *RandomnessRequest, event *RandomWordsRequestedEvent, static StaticCallbackTable) ([]CallbackAccount, error) {
	if len(req.CallbackAccounts) > 0 {
		return req.CallbackAccounts, nil
	}
	if deriver, ok := static[req.ConsumerProgram]; ok && event != nil {
		return deriver(event)
	}
	return nil, nil
}
