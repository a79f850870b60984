package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atriumcare/carecoord-backend/pkg/config"
	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	pkgerrors "github.com/atriumcare/carecoord-backend/pkg/errors"
)

const defaultTwilioBaseURL = "https://api.twilio.com/2010-04-01"

// SMSAdapter delivers notifications as text messages through the Twilio
// Messages API.
type SMSAdapter struct {
	httpClient *http.Client
	directory  RecipientDirectory
	retry      RetryPolicy
	baseURL    string
	accountSID string
	authToken  string
	from       string
}

// SMSOption configures optional adapter behavior.
type SMSOption func(*SMSAdapter)

// WithSMSHTTPClient overrides the default HTTP client.
func WithSMSHTTPClient(client *http.Client) SMSOption {
	return func(a *SMSAdapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithSMSBaseURL overrides the configured Twilio base URL.
func WithSMSBaseURL(baseURL string) SMSOption {
	return func(a *SMSAdapter) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			a.baseURL = trimmed
		}
	}
}

// NewSMSAdapter builds the Twilio-backed SMS adapter.
func NewSMSAdapter(cfg config.SMSConfig, retry RetryPolicy, directory RecipientDirectory, opts ...SMSOption) (*SMSAdapter, error) {
	sid := strings.TrimSpace(cfg.AccountSID)
	token := strings.TrimSpace(cfg.AuthToken)
	from := strings.TrimSpace(cfg.FromNumber)
	if sid == "" || token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "twilio credentials are required")
	}
	if from == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "twilio from number is required")
	}
	if directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recipient directory is required")
	}

	adapter := &SMSAdapter{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		directory:  directory,
		retry:      retry,
		baseURL:    defaultTwilioBaseURL,
		accountSID: sid,
		authToken:  token,
		from:       from,
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

func (a *SMSAdapter) Channel() enums.Channel {
	return enums.ChannelSMS
}

// Deliver sends title and message as a single text. Transient provider
// statuses are retried with backoff; all other failures are terminal.
func (a *SMSAdapter) Deliver(ctx context.Context, notification *models.Notification) Result {
	recipient, err := a.directory.Lookup(ctx, notification.UserID)
	if err != nil {
		return failure(enums.ChannelSMS, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve sms recipient"))
	}
	if recipient == nil || !validPhone(strings.TrimSpace(recipient.Phone)) {
		return failure(enums.ChannelSMS, pkgerrors.New(pkgerrors.CodeValidation, "recipient has no valid phone number"))
	}

	form := url.Values{}
	form.Set("To", recipient.Phone)
	form.Set("From", a.from)
	form.Set("Body", notification.Title+"\n"+notification.Message)
	body := form.Encode()

	var messageSID string
	err = a.retry.run(ctx, func(ctx context.Context) (bool, error) {
		sid, retryable, err := a.send(ctx, body)
		if err != nil {
			return retryable, err
		}
		messageSID = sid
		return false, nil
	})
	if err != nil {
		return failure(enums.ChannelSMS, err)
	}

	metadata := map[string]string{"to": recipient.Phone}
	if messageSID != "" {
		metadata["message_sid"] = messageSID
	}
	return Result{Channel: enums.ChannelSMS, Success: true, Metadata: metadata}
}

func (a *SMSAdapter) send(ctx context.Context, form string) (messageSID string, retryable bool, err error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", strings.TrimRight(a.baseURL, "/"), url.PathEscape(a.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build sms send request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.accountSID, a.authToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", true, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute sms send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		var apiResp struct {
			SID string `json:"sid"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			// Message was accepted; losing the SID is not a delivery failure.
			return "", false, nil
		}
		return apiResp.SID, false, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	err = pkgerrors.Wrap(pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		"sms send request failed")
	return "", IsTransientStatus(resp.StatusCode), err
}
