package flutterwave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerifyByReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if got := r.URL.Query().Get("tx_ref"); got != "rr-abc-123" {
			t.Errorf("unexpected tx_ref: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"message": "Transaction fetched successfully",
			"data": {
				"tx_ref": "rr-abc-123",
				"flw_ref": "FLW-MOCK-1",
				"amount": 4500,
				"currency": "NGN",
				"status": "successful"
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", 5*time.Second)
	tx, err := c.VerifyByReference(context.Background(), "rr-abc-123")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !tx.Successful() {
		t.Errorf("expected successful transaction, got status %q", tx.Status)
	}
	if tx.FlwRef != "FLW-MOCK-1" || tx.Amount != 4500 || tx.Currency != "NGN" {
		t.Errorf("unexpected transaction: %+v", tx)
	}
}

func TestVerifyByReferenceGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", 5*time.Second)
	if _, err := c.VerifyByReference(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for non-200 gateway response")
	}
}

func TestVerifyByReferenceFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "No transaction was found for this id"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", 5*time.Second)
	if _, err := c.VerifyByReference(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for error-status body")
	}
}
