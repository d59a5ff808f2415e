package imap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"3tcapital/bridgeguardian/internal/infrastructure/security"
)

const (
	// DefaultTag prefixes every probe command.
	DefaultTag = "a"
	// DefaultMailbox must appear in the LIST response of a working bridge.
	DefaultMailbox = "INBOX"

	defaultTimeout = 5 * time.Second
	readChunk      = 4096
	excerptRunes   = 160
)

// ErrUnhealthyResponse is returned when the bridge answered but the response
// lacks the login confirmation or the mailbox marker.
var ErrUnhealthyResponse = errors.New("unhealthy imap response")

// Config describes the probe target and credentials.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	DialTimeout time.Duration
	ReadTimeout time.Duration
	Tag         string
	Mailbox     string
}

// Prober checks an IMAP endpoint by logging in, listing mailboxes and logging out.
type Prober struct {
	addr        string
	user        string
	password    string
	dialTimeout time.Duration
	readTimeout time.Duration
	tag         string
	mailbox     string
	dialer      func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewProber creates a prober with defaults for zero-valued fields.
func NewProber(cfg Config) *Prober {
	p := &Prober{
		addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		user:        cfg.User,
		password:    cfg.Password,
		dialTimeout: cfg.DialTimeout,
		readTimeout: cfg.ReadTimeout,
		tag:         cfg.Tag,
		mailbox:     cfg.Mailbox,
	}
	if p.dialTimeout <= 0 {
		p.dialTimeout = defaultTimeout
	}
	if p.readTimeout <= 0 {
		p.readTimeout = defaultTimeout
	}
	if p.tag == "" {
		p.tag = DefaultTag
	}
	if p.mailbox == "" {
		p.mailbox = DefaultMailbox
	}
	d := &net.Dialer{Timeout: p.dialTimeout}
	p.dialer = d.DialContext
	return p
}

// Address returns the host:port being probed.
func (p *Prober) Address() string {
	return p.addr
}

// Probe runs one health check. It returns nil when the response contains both
// the tagged OK completion and the mailbox name, anywhere in the text.
func (p *Prober) Probe(ctx context.Context) error {
	conn, err := p.dialer(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("dial imap %s: %w", p.addr, err)
	}
	defer conn.Close()

	// Commands are pipelined; no per-command acknowledgement is awaited.
	for _, cmd := range p.commands() {
		if err := conn.SetWriteDeadline(time.Now().Add(p.readTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
		if _, err := io.WriteString(conn, cmd); err != nil {
			return fmt.Errorf("send imap command: %w", err)
		}
	}

	raw, err := p.readAll(conn)
	if err != nil {
		return fmt.Errorf("read imap response: %w", err)
	}
	return p.evaluate(strings.ToValidUTF8(string(raw), ""))
}

func (p *Prober) commands() []string {
	return []string{
		fmt.Sprintf("%s LOGIN %s %s\r\n", p.tag, p.user, p.password),
		fmt.Sprintf("%s LIST \"\" \"*\"\r\n", p.tag),
		fmt.Sprintf("%s LOGOUT\r\n", p.tag),
	}
}

// readAll accumulates everything the peer sends until it closes the
// connection or a single read exceeds the read timeout. Any other read error
// is returned and the partial response is discarded.
func (p *Prober) readAll(conn net.Conn) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunk)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
		n, err := conn.Read(chunk)
		buf.Write(chunk[:n])
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, os.ErrDeadlineExceeded):
			return buf.Bytes(), nil
		default:
			return nil, err
		}
	}
}

func (p *Prober) evaluate(text string) error {
	loginOK := strings.Contains(text, p.tag+" OK")
	mailboxOK := strings.Contains(text, p.mailbox)
	if loginOK && mailboxOK {
		return nil
	}

	var missing []string
	if !loginOK {
		missing = append(missing, fmt.Sprintf("%q", p.tag+" OK"))
	}
	if !mailboxOK {
		missing = append(missing, fmt.Sprintf("%q", p.mailbox))
	}
	// Servers may echo the LOGIN line back in error responses.
	excerpt := security.Excerpt(security.Redact(text, p.password), excerptRunes)
	return fmt.Errorf("%w: missing %s (response: %q)", ErrUnhealthyResponse, strings.Join(missing, " and "), excerpt)
}
