package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const resendBaseURL = "https://api.resend.com"

type Resend struct {
	apiKey     string
	from       string
	httpClient *http.Client

	BaseURL string
}

func NewResend(apiKey, from string) *Resend {
	return &Resend{
		apiKey: apiKey,
		from:   from,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: resendBaseURL,
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	body, _ := json.Marshal(resendPayload{
		From:    r.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &TransportError{Provider: "Resend", Status: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}
