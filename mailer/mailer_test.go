package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBrevoSendPayload(t *testing.T) {
	var got brevoPayload
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		if r.URL.Path != "/v3/smtp/email" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	b := NewBrevo("key-123", "itdept@example.com")
	b.BaseURL = srv.URL
	err := b.Send(context.Background(), Message{
		To:      []string{"a@x.com", "b@x.com"},
		Subject: "Asset Borrow Reminder",
		Text:    "please return",
		HTML:    "<p>please return</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotKey != "key-123" {
		t.Errorf("api-key header = %s", gotKey)
	}
	if got.Sender.Email != "itdept@example.com" || len(got.To) != 2 || got.To[1].Email != "b@x.com" {
		t.Errorf("payload = %+v", got)
	}
	if got.TextContent != "please return" || got.HTMLContent != "<p>please return</p>" {
		t.Errorf("content = %+v", got)
	}
}

func TestResendSendPayload(t *testing.T) {
	var got resendPayload
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/emails" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewResend("re-key", "itdept@example.com")
	m.BaseURL = srv.URL
	if err := m.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "s", Text: "t", HTML: "h"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAuth != "Bearer re-key" {
		t.Errorf("auth = %s", gotAuth)
	}
	if got.From != "itdept@example.com" || len(got.To) != 1 || got.Subject != "s" {
		t.Errorf("payload = %+v", got)
	}
}

func TestSendFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid sender", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	b := NewBrevo("key", "from@example.com")
	b.BaseURL = srv.URL
	err := b.Send(context.Background(), Message{To: []string{"a@x.com"}})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Provider != "Brevo" || te.Status != http.StatusUnprocessableEntity {
		t.Errorf("transport error = %+v", te)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("BREVO_API_KEY", "")
	t.Setenv("RESEND_API_KEY", "")
	if _, ok := NewFromEnv("from@example.com").(*DryRun); !ok {
		t.Error("no keys must degrade to dry-run")
	}

	t.Setenv("RESEND_API_KEY", "re-key")
	if _, ok := NewFromEnv("from@example.com").(*Resend); !ok {
		t.Error("resend key must pick Resend")
	}

	t.Setenv("BREVO_API_KEY", "key")
	if _, ok := NewFromEnv("from@example.com").(*Brevo); !ok {
		t.Error("brevo key must win over resend")
	}
}
