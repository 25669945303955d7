package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/pricofy/crypto-price-api/internal/domain"
)

// Transport delivers messages to the relay.
type Transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// TransportFactory builds a Transport from relay credentials.
type TransportFactory func(user, password string) (Transport, error)

// CredentialSource supplies the relay password.
type CredentialSource interface {
	Get(ctx context.Context) (string, error)
}

// SMTPTransport returns a factory for an authenticated SMTP client on
// host:port using STARTTLS when the server offers it.
func SMTPTransport(host string, port int) TransportFactory {
	return func(user, password string) (Transport, error) {
		client, err := mail.NewClient(host,
			mail.WithPort(port),
			mail.WithTLSPolicy(mail.TLSOpportunistic),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(password),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// MailerOptions configure a Mailer.
type MailerOptions struct {
	From string
	User string
}

// Mailer sends search notifications. The transport is built on first use
// and reused for the life of the process.
type Mailer struct {
	opts    MailerOptions
	creds   CredentialSource
	factory TransportFactory
	logger  zerolog.Logger

	mu        sync.Mutex
	transport Transport
}

// NewMailer creates a mailer.
func NewMailer(opts MailerOptions, creds CredentialSource, factory TransportFactory, logger zerolog.Logger) *Mailer {
	return &Mailer{
		opts:    opts,
		creds:   creds,
		factory: factory,
		logger:  logger.With().Str("component", "mailer").Logger(),
	}
}

// SendNotification emails content to recipient. It never fails the caller:
// an invalid recipient or any delivery error is logged and a nil receipt is
// returned.
func (m *Mailer) SendNotification(ctx context.Context, searchID string, content domain.EmailContent, recipient string) *domain.Receipt {
	log := m.logger.With().Str("search_id", searchID).Str("recipient", recipient).Logger()

	if !domain.ValidEmail(recipient) {
		log.Error().Msg("invalid or missing recipient email address; skipping notification")
		return nil
	}

	receipt, err := m.send(ctx, content, recipient)
	if err != nil {
		log.Error().Err(err).Msg("email sending failed")
		return nil
	}

	log.Info().Str("message_id", receipt.MessageID).Msg("email sent")
	return receipt
}

func (m *Mailer) send(ctx context.Context, content domain.EmailContent, recipient string) (*domain.Receipt, error) {
	t, err := m.transportFor(ctx)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.opts.From); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(content.Subject)
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, content.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, content.HTML)

	if err := t.DialAndSendWithContext(ctx, msg); err != nil {
		return nil, fmt.Errorf("deliver message: %w", err)
	}

	var id string
	if ids := msg.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		id = strings.Trim(ids[0], "<>")
	}
	return &domain.Receipt{MessageID: id}, nil
}

func (m *Mailer) transportFor(ctx context.Context) (Transport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transport != nil {
		return m.transport, nil
	}

	password, err := m.creds.Get(ctx)
	if err != nil {
		return nil, err
	}

	m.logger.Info().Msg("initializing SMTP transport")
	t, err := m.factory(m.opts.User, password)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	m.transport = t
	return t, nil
}
