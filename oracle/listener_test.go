package oracle

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/solana-vrf/oracle-backend/coordinator"
)

func buildPendingRequestAccount(requestID uint64, numWords uint32) []byte {
	buf := make([]byte, coordinator.DiscriminatorLen+170)
	copy(buf[0:coordinator.DiscriminatorLen], coordinator.RandomnessRequestAccountDiscriminator[:])
	b := buf[coordinator.DiscriminatorLen:]
	binary.LittleEndian.PutUint64(b[0:8], requestID)
	binary.LittleEndian.PutUint32(b[80:84], numWords)
	b[128] = coordinator.StatusPending
	return buf
}

// newStubProgramAccountsServer answers getProgramAccounts with a single
// encoded account, ignoring the memcmp filters (the catch-up scan trusts
// the RPC node to apply them; here we only need the returned shape parsed
// correctly).
func newStubProgramAccountsServer(t *testing.T, pubkey solana.PublicKey, data []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode rpc request: %v", err)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      json.RawMessage(req.ID),
		}

		switch req.Method {
		case "getProgramAccounts":
			resp["result"] = []interface{}{
				map[string]interface{}{
					"pubkey": pubkey.String(),
					"account": map[string]interface{}{
						"lamports":   1000000,
						"owner":      pubkey.String(),
						"executable": false,
						"rentEpoch":  0,
						"data":       []interface{}{base64.StdEncoding.EncodeToString(data), "base64"},
					},
				},
			}
		default:
			t.Fatalf("unexpected rpc method: %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestCatchUpPendingRequestsEmitsMatchingAccount(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	requestID := uint64(123)
	pda, _, err := coordinator.RequestPDA(programID, requestID)
	if err != nil {
		t.Fatalf("derive request PDA: %v", err)
	}

	data := buildPendingRequestAccount(requestID, 2)
	server := newStubProgramAccountsServer(t, pda, data)
	defer server.Close()

	dedup := NewDeduplicator()
	queue := make(chan FulfillmentRequest, 1)
	listener := NewListener(rpc.New(server.URL), "", programID, dedup, queue)

	listener.CatchUpPendingRequests(context.Background())

	select {
	case got := <-queue:
		if got.RequestID != requestID {
			t.Fatalf("expected request id %d, got %d", requestID, got.RequestID)
		}
	default:
		t.Fatal("expected a fulfillment request to be queued")
	}
}

func TestCatchUpPendingRequestsSkipsAccountWithPDAMismatch(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	wrongPubkey := solana.NewWallet().PublicKey()

	data := buildPendingRequestAccount(999, 1)
	server := newStubProgramAccountsServer(t, wrongPubkey, data)
	defer server.Close()

	dedup := NewDeduplicator()
	queue := make(chan FulfillmentRequest, 1)
	listener := NewListener(rpc.New(server.URL), "", programID, dedup, queue)

	listener.CatchUpPendingRequests(context.Background())

	select {
	case got := <-queue:
		t.Fatalf("expected no fulfillment request, got %+v", got)
	default:
	}
}
