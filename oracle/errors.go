package oracle

import "strings"

// silentSkipSubstrings are error strings the coordinator program returns
// for conditions that are not the oracle's fault and must not count as a
// fulfillment failure: the request was already fulfilled or never existed
// under this authority.
var silentSkipSubstrings = []string{
	"RequestNotPending",
	"Unauthorized",
	"AccountNotInitialized",
	"already in use",
	"0x1770",
	"0x1779",
}

// IsSilentSkip reports whether err represents a non-retryable, non-counted
// condition: the task should log a warning and move on without
// incrementing requests_failed.
func IsSilentSkip(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, substr := range silentSkipSubstrings {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// IsBlockhashNotFound reports whether err indicates the transaction's
// blockhash expired before submission, the one condition the send/retry
// loop treats as transient and worth refreshing the blockhash for.
func IsBlockhashNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BlockhashNotFound")
}
