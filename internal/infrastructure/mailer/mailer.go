// Package mailer delivers the generated report sheets by email through
// SendGrid. Each report run produces one message per recipient group with
// the rendered PDFs attached.
package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Sentinel errors for mail delivery.
var (
	ErrMissingAPIKey = errors.New("mailer: api key is required")
	ErrMissingFrom   = errors.New("mailer: from address is required")
	ErrNoRecipients  = errors.New("mailer: message has no recipients")
	ErrSendFailed    = errors.New("mailer: send failed")
)

// Config holds the SendGrid settings.
type Config struct {
	APIKey string
	// BaseURL overrides the SendGrid API host; used by tests.
	BaseURL      string
	MailSendPath string
	FromEmail    string
	FromName     string
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.FromEmail == "" {
		return ErrMissingFrom
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.sendgrid.com"
	}
	if c.MailSendPath == "" {
		c.MailSendPath = "/v3/mail/send"
	}
}

// Attachment is one file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	To          []string
	CC          []string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer sends report messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SendgridMailer delivers messages through the SendGrid v3 API.
type SendgridMailer struct {
	config Config
	logger *zap.Logger
}

// NewSendgridMailer creates a mailer after validating the configuration.
func NewSendgridMailer(config Config, logger *zap.Logger) (*SendgridMailer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if logger == nil {
		logger = zap.NewNop()
	}

	return &SendgridMailer{
		config: config,
		logger: logger.Named("mailer"),
	}, nil
}

// Send delivers one message. Tracking is disabled: these are operational
// mails to the farm crew, not marketing.
func (m *SendgridMailer) Send(ctx context.Context, msg *Message) error {
	v3, err := buildMail(m.config, msg)
	if err != nil {
		return err
	}

	request := sendgrid.GetRequest(m.config.APIKey, m.config.MailSendPath, m.config.BaseURL)
	request.Method = http.MethodPost
	request.Body = mail.GetRequestBody(v3)

	response, err := sendgrid.MakeRequestRetryWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if response.StatusCode >= 400 {
		m.logger.Error("sendgrid rejected message",
			zap.Int("status", response.StatusCode),
			zap.String("body", response.Body))
		return fmt.Errorf("%w: status %d", ErrSendFailed, response.StatusCode)
	}

	m.logger.Info("message sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))

	return nil
}

// buildMail converts a Message to the SendGrid wire structure.
func buildMail(config Config, msg *Message) (*mail.SGMailV3, error) {
	if msg == nil || len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail(config.FromName, config.FromEmail))
	v3.Subject = msg.Subject

	enable := false
	v3.SetTrackingSettings(&mail.TrackingSettings{
		ClickTracking:        &mail.ClickTrackingSetting{Enable: &enable},
		OpenTracking:         &mail.OpenTrackingSetting{Enable: &enable},
		SubscriptionTracking: &mail.SubscriptionTrackingSetting{Enable: &enable},
	})

	personalization := mail.NewPersonalization()
	for _, to := range msg.To {
		personalization.AddTos(mail.NewEmail("", to))
	}
	for _, cc := range msg.CC {
		if !containsAddress(msg.To, cc) {
			personalization.AddCCs(mail.NewEmail("", cc))
		}
	}
	v3.AddPersonalizations(personalization)

	if msg.Body != "" {
		v3.AddContent(mail.NewContent("text/plain", msg.Body))
	}
	if msg.HTMLBody != "" {
		v3.AddContent(mail.NewContent("text/html", msg.HTMLBody))
	}

	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Data))
		a.SetType(att.ContentType)
		a.SetFilename(att.Filename)
		a.SetDisposition("attachment")
		v3.AddAttachment(a)
	}

	return v3, nil
}

func containsAddress(addrs []string, addr string) bool {
	for _, a := range addrs {
		if a == addr {
			return true
		}
	}
	return false
}

// DryRunMailer logs messages instead of sending them; used in development
// and when no API key is configured.
type DryRunMailer struct {
	logger *zap.Logger
}

// NewDryRunMailer creates a mailer that only logs.
func NewDryRunMailer(logger *zap.Logger) *DryRunMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRunMailer{logger: logger.Named("mailer")}
}

// Send logs the message and succeeds.
func (m *DryRunMailer) Send(ctx context.Context, msg *Message) error {
	if msg == nil || len(msg.To) == 0 {
		return ErrNoRecipients
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		names = append(names, att.Filename)
	}

	m.logger.Info("dry run: not sending",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", names))

	return nil
}

var (
	_ Mailer = (*SendgridMailer)(nil)
	_ Mailer = (*DryRunMailer)(nil)
)
