package email

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/config"
)

// Message represents a single email to be sent.
type Message struct {
	To      []string // Recipient email addresses.
	Subject string   // Email subject.
	Body    string   // HTML email content.
}

// Sender defines an interface for sending batches of emails.
type Sender interface {
	// SendBatch sends multiple Message objects in a single session.
	SendBatch(messages []Message) error
}

// NewSender returns an SMTP-backed Sender when the SMTP group is configured,
// and a log-backed one otherwise so the rest of the application never has to
// care which delivery path is active.
func NewSender(cfg *config.Config, logger *zap.Logger) (Sender, error) {
	if cfg.SMTPConfigured() {
		return NewSMTPSender(cfg, logger)
	}
	logger.Info("SMTP not configured, emails will be written to the log")
	return NewLogSender(logger), nil
}

// SMTPSender is a concrete implementation of Sender using SMTP.
type SMTPSender struct {
	host      string
	port      int
	from      string
	auth      smtp.Auth
	tlsConfig *tls.Config
	logger    *zap.Logger
}

// NewSMTPSender builds a sender from the SMTP settings in cfg.
func NewSMTPSender(cfg *config.Config, logger *zap.Logger) (*SMTPSender, error) {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	tlsConfig := &tls.Config{ServerName: cfg.SMTPHost}

	return &SMTPSender{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		from:      cfg.SMTPFrom,
		auth:      auth,
		tlsConfig: tlsConfig,
		logger:    logger,
	}, nil
}

// createClient encapsulates dialing and setting up an SMTP client connection.
// It handles both implicit TLS (port 465) and STARTTLS (other ports).
func (s *SMTPSender) createClient() (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var conn net.Conn
	var err error

	if s.port == 465 {
		// Implicit TLS
		conn, err = tls.Dial("tcp", addr, s.tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to dial SMTPS on %s: %w", addr, err)
		}
	} else {
		// Plain TCP, upgraded via STARTTLS below
		conn, err = net.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to dial SMTP on %s: %w", addr, err)
		}
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			s.logger.Warn("failed to close raw connection", zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if s.port != 465 {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			if cerr := client.Close(); cerr != nil {
				s.logger.Warn("failed to close SMTP client after missing STARTTLS", zap.Error(cerr))
			}
			return nil, fmt.Errorf("SMTP server does not support STARTTLS")
		}
		if err := client.StartTLS(s.tlsConfig); err != nil {
			if cerr := client.Close(); cerr != nil {
				s.logger.Warn("failed to close SMTP client after STARTTLS failure", zap.Error(cerr))
			}
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	return client, nil
}

// SendBatch opens a single SMTP session and sends all provided emails sequentially.
func (s *SMTPSender) SendBatch(messages []Message) (err error) {
	client, err := s.createClient()
	if err != nil {
		s.logger.Error("failed to open SMTP session", zap.Error(err))
		return err
	}
	// ensure QUIT is sent and connection closed
	defer func() {
		if quitErr := client.Quit(); quitErr != nil && err == nil {
			s.logger.Error("failed to close SMTP connection", zap.Error(quitErr))
			err = fmt.Errorf("failed to close SMTP connection: %w", quitErr)
		}
	}()

	// Authenticate once per session
	if err := client.Auth(s.auth); err != nil {
		s.logger.Error("SMTP authentication failed", zap.Error(err))
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	// Send each message, resetting the envelope between them
	for _, msg := range messages {
		if err := client.Reset(); err != nil {
			return fmt.Errorf("failed to reset SMTP session: %w", err)
		}
		if err := s.send(client, msg); err != nil {
			s.logger.Error("failed to send email", zap.Strings("to", msg.To), zap.Error(err))
			return err
		}
	}

	s.logger.Info("all messages sent successfully", zap.Int("count", len(messages)))
	return nil
}

// send sends a single Message using an existing SMTP client session.
func (s *SMTPSender) send(client *smtp.Client, m Message) error {
	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("failed to set MAIL FROM: %w", err)
	}
	for _, addr := range m.To {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to add RCPT TO %q: %w", addr, err)
		}
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start DATA command: %w", err)
	}

	headers := []string{
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", strings.Join(m.To, ",")),
		fmt.Sprintf("Subject: %s", m.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="utf-8"`,
	}
	fullMessage := strings.Join(headers, "\r\n") + "\r\n\r\n" + m.Body

	if _, writeErr := wc.Write([]byte(fullMessage)); writeErr != nil {
		if cErr := wc.Close(); cErr != nil {
			s.logger.Warn("failed to close DATA writer after write error", zap.Error(cErr))
		}
		return fmt.Errorf("failed to write message body: %w", writeErr)
	}
	if cErr := wc.Close(); cErr != nil {
		return fmt.Errorf("failed to close DATA writer: %w", cErr)
	}

	s.logger.Debug("email sent", zap.Strings("to", m.To), zap.String("subject", m.Subject))
	return nil
}

// LogSender writes emails to the log instead of a mail server. It stands in
// for SMTPSender in development and demo setups.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender returns a Sender that records messages via the given logger.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendBatch logs every message and never fails.
func (l *LogSender) SendBatch(messages []Message) error {
	for _, m := range messages {
		l.logger.Info("email (log delivery)",
			zap.Strings("to", m.To),
			zap.String("subject", m.Subject),
			zap.String("body", m.Body),
		)
	}
	return nil
}
