package infra

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"math/rand"
	"net/smtp"
	"time"

	"clubpos/internal/config"

	"github.com/jordan-wright/email"
)

// SenderPool sends boleta emails rotating randomly across a pool of SMTP
// identities, so no single account hits the provider's per-sender quota.
// Identities are injected from config; rotation is invisible to callers.
type SenderPool struct {
	host        string
	port        int
	identities  []config.SenderIdentity
	sendTimeout time.Duration
}

func NewSenderPool(cfg *config.Config) (*SenderPool, error) {
	identities := cfg.SenderIdentities()
	if len(identities) == 0 {
		return nil, fmt.Errorf("smtp: no sender identities configured")
	}
	return &SenderPool{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		identities:  identities,
		sendTimeout: 30 * time.Second,
	}, nil
}

// Send delivers one message with an optional PDF attachment, using a
// randomly picked identity. The SMTP dial has no context support, so the
// send runs in a goroutine bounded by sendTimeout.
func (p *SenderPool) Send(to, subject, htmlBody string, pdf []byte, filename string) error {
	identity := p.identities[rand.Intn(len(p.identities))]

	e := email.NewEmail()
	e.From = identity.User
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(htmlBody)

	if len(pdf) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdf), filename, "application/pdf"); err != nil {
			return fmt.Errorf("smtp: attach pdf: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	auth := smtp.PlainAuth("", identity.User, identity.Password, p.host)

	done := make(chan error, 1)
	go func() {
		if p.port == 465 {
			// Implicit TLS from the first byte.
			done <- e.SendWithTLS(addr, auth, &tls.Config{ServerName: p.host})
			return
		}
		done <- e.Send(addr, auth)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: send as %s: %w", identity.User, err)
		}
		return nil
	case <-time.After(p.sendTimeout):
		return fmt.Errorf("smtp: send as %s timed out after %s", identity.User, p.sendTimeout)
	}
}
