package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const brevoBaseURL = "https://api.brevo.com"

type Brevo struct {
	apiKey     string
	from       string
	httpClient *http.Client

	BaseURL string // 测试时指向 httptest server
}

func NewBrevo(apiKey, from string) *Brevo {
	return &Brevo{
		apiKey: apiKey,
		from:   from,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: brevoBaseURL,
	}
}

type brevoRecipient struct {
	Email string `json:"email"`
}

type brevoPayload struct {
	Sender      brevoRecipient   `json:"sender"`
	To          []brevoRecipient `json:"to"`
	Subject     string           `json:"subject"`
	TextContent string           `json:"textContent"`
	HTMLContent string           `json:"htmlContent"`
}

func (b *Brevo) Send(ctx context.Context, msg Message) error {
	payload := brevoPayload{
		Sender:      brevoRecipient{Email: b.from},
		Subject:     msg.Subject,
		TextContent: msg.Text,
		HTMLContent: msg.HTML,
	}
	for _, to := range msg.To {
		payload.To = append(payload.To, brevoRecipient{Email: to})
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.BaseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &TransportError{Provider: "Brevo", Status: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}
