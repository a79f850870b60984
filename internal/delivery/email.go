package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atriumcare/carecoord-backend/pkg/config"
	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	pkgerrors "github.com/atriumcare/carecoord-backend/pkg/errors"
)

const (
	defaultSendGridBaseURL       = "https://api.sendgrid.com/v3"
	responseBodyReadLimit  int64 = 1024
)

// EmailAdapter delivers notifications over email through the SendGrid v3
// mail send API.
type EmailAdapter struct {
	httpClient *http.Client
	directory  RecipientDirectory
	retry      RetryPolicy
	baseURL    string
	apiKey     string
	from       string
}

// EmailOption configures optional adapter behavior.
type EmailOption func(*EmailAdapter)

// WithEmailHTTPClient overrides the default HTTP client.
func WithEmailHTTPClient(client *http.Client) EmailOption {
	return func(a *EmailAdapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithEmailBaseURL overrides the configured SendGrid base URL.
func WithEmailBaseURL(baseURL string) EmailOption {
	return func(a *EmailAdapter) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			a.baseURL = trimmed
		}
	}
}

// NewEmailAdapter builds the SendGrid-backed email adapter.
func NewEmailAdapter(cfg config.EmailConfig, retry RetryPolicy, directory RecipientDirectory, opts ...EmailOption) (*EmailAdapter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sendgrid api key is required")
	}
	if directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recipient directory is required")
	}

	adapter := &EmailAdapter{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		directory:  directory,
		retry:      retry,
		baseURL:    defaultSendGridBaseURL,
		apiKey:     apiKey,
		from:       strings.TrimSpace(cfg.DefaultFrom),
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		adapter.baseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}

	return adapter, nil
}

func (a *EmailAdapter) Channel() enums.Channel {
	return enums.ChannelEmail
}

// Deliver sends the notification as an email. Transient provider statuses
// are retried with backoff; all other failures are terminal.
func (a *EmailAdapter) Deliver(ctx context.Context, notification *models.Notification) Result {
	recipient, err := a.directory.Lookup(ctx, notification.UserID)
	if err != nil {
		return failure(enums.ChannelEmail, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve email recipient"))
	}
	if recipient == nil || !validEmail(strings.TrimSpace(recipient.Email)) {
		return failure(enums.ChannelEmail, pkgerrors.New(pkgerrors.CodeValidation, "recipient has no valid email address"))
	}

	payload, err := json.Marshal(a.buildSendRequest(notification, recipient))
	if err != nil {
		return failure(enums.ChannelEmail, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal mail send request"))
	}

	var messageID string
	err = a.retry.run(ctx, func(ctx context.Context) (bool, error) {
		id, retryable, err := a.send(ctx, payload)
		if err != nil {
			return retryable, err
		}
		messageID = id
		return false, nil
	})
	if err != nil {
		return failure(enums.ChannelEmail, err)
	}

	metadata := map[string]string{"to": recipient.Email}
	if messageID != "" {
		metadata["message_id"] = messageID
	}
	return Result{Channel: enums.ChannelEmail, Success: true, Metadata: metadata}
}

type mailSendRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (a *EmailAdapter) buildSendRequest(notification *models.Notification, recipient *Recipient) mailSendRequest {
	return mailSendRequest{
		Personalizations: []mailPersonalization{{
			To: []mailAddress{{Email: recipient.Email, Name: recipient.Name}},
		}},
		From:    mailAddress{Email: a.from},
		Subject: notification.Title,
		Content: []mailContent{{Type: "text/plain", Value: notification.Message}},
	}
}

func (a *EmailAdapter) send(ctx context.Context, payload []byte) (messageID string, retryable bool, err error) {
	url := strings.TrimRight(a.baseURL, "/") + "/mail/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build mail send request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", true, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute mail send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp.Header.Get("X-Message-Id"), false, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	err = pkgerrors.Wrap(pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		"mail send request failed")
	return "", IsTransientStatus(resp.StatusCode), err
}
