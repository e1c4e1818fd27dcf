package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"protector-server/store"
)

func TestInitializeTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_abc" {
			t.Errorf("authorization header = %q", got)
		}

		var in InitializeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if in.Amount != 745000 || in.Email != "client@example.com" {
			t.Errorf("unexpected request body %+v", in)
		}

		json.NewEncoder(w).Encode(initializeResponse{
			Status: true,
			Data: Authorization{
				AuthorizationURL: "https://checkout.paystack.com/abc123",
				AccessCode:       "abc123",
				Reference:        in.Reference,
			},
		})
	}))
	defer server.Close()

	client := NewPaystackClient("sk_test_abc", server.URL)
	auth, err := client.InitializeTransaction(InitializeInput{
		Email:     "client@example.com",
		Amount:    745000,
		Currency:  "NGN",
		Reference: "PRT-ref1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.AuthorizationURL != "https://checkout.paystack.com/abc123" || auth.Reference != "PRT-ref1" {
		t.Errorf("unexpected authorization %+v", auth)
	}
}

func TestInitializeTransactionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(initializeResponse{Status: false, Message: "Invalid amount"})
	}))
	defer server.Close()

	client := NewPaystackClient("sk_test_abc", server.URL)
	_, err := client.InitializeTransaction(InitializeInput{Email: "client@example.com", Amount: -1})
	if err == nil {
		t.Fatal("expected an error for a rejected initialization")
	}
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/PRT-ref1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(verifyResponse{
			Status: true,
			Data:   VerifyResult{Status: "success", Amount: 745000, Currency: "NGN"},
		})
	}))
	defer server.Close()

	client := NewPaystackClient("sk_test_abc", server.URL)
	result, err := client.VerifyTransaction("PRT-ref1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "success" || result.Amount != 745000 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestVerifyTransactionConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewPaystackClient("sk_test_abc", server.URL)
	_, err := client.VerifyTransaction("PRT-ref1")
	if !errors.Is(err, store.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
