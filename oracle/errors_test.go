package oracle

import (
	"errors"
	"testing"
)

func TestIsSilentSkip(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("custom program error: RequestNotPending"), true},
		{errors.New("custom program error: 0x1770"), true},
		{errors.New("custom program error: 0x1779"), true},
		{errors.New("AccountNotInitialized: request PDA"), true},
		{errors.New("provided account is already in use"), true},
		{errors.New("connection refused"), false},
		{nil, false},
	}
	for _, c := range cases {
		if got := IsSilentSkip(c.err); got != c.want {
			t.Errorf("IsSilentSkip(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestIsBlockhashNotFound(t *testing.T) {
	if !IsBlockhashNotFound(errors.New("Transaction simulation failed: BlockhashNotFound")) {
		t.Fatal("expected BlockhashNotFound substring to match")
	}
	if IsBlockhashNotFound(errors.New("RequestNotPending")) {
		t.Fatal("did not expect unrelated error to match")
	}
}
