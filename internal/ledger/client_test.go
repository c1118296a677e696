package ledger

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/animica-labs/poies/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewClient(&config.LedgerEnvConfig{
		LedgerURL:     ts.URL,
		LedgerTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	// Retries make failure tests slow; not needed against httptest.
	c.httpClient.RetryMax = 0
	return c
}

func TestNewClient_NilConfig(t *testing.T) {
	_, err := NewClient(nil)
	if err == nil {
		t.Fatalf("expected error when cfg is nil")
	}
}

func TestAnchorSettlement_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ledger/settlements" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"success":true,"data":{"txHash":"0xabc","epoch":9,"anchored":true},"error":null}`))
	})

	receipt, err := c.AnchorSettlement(map[string]any{"epoch": 9})
	if err != nil {
		t.Fatalf("AnchorSettlement error: %v", err)
	}
	if receipt.TxHash != "0xabc" || receipt.Epoch != 9 || !receipt.Anchored {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
}

func TestAnchorSettlement_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad"))
	})
	if _, err := c.AnchorSettlement(map[string]any{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAnchorSettlement_ErrorField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"success":false,"data":{},"error":{"msg":"rejected"}}`))
	})
	if _, err := c.AnchorSettlement(map[string]any{}); err == nil {
		t.Fatalf("expected error")
	}
}
