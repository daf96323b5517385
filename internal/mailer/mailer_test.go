package mailer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"trendradar/internal/digest"

	"github.com/go-playground/assert/v2"
	"github.com/wneessen/go-mail"
)

var testMessage = &digest.Message{
	Subject: "TrendRadar 10月17日 晚间 AI简报",
	HTML:    "<h2>晚间回顾</h2></body></html>",
	Model:   "gemini-2.5-pro",
}

func TestNew_DisabledWithoutConfig(t *testing.T) {
	n := New(nil, nil)

	_, ok := n.(*Disabled)
	assert.Equal(t, true, ok)
	assert.Equal(t, false, n.Enabled())
}

func TestNew_SMTPWithConfig(t *testing.T) {
	n := New(&Config{Host: "smtp.example.com", Port: 465, From: "bot@example.com", To: "reader@example.com"}, nil)

	_, ok := n.(*SMTPMailer)
	assert.Equal(t, true, ok)
	assert.Equal(t, true, n.Enabled())
}

func TestDisabled_PrintsDigest(t *testing.T) {
	var buf bytes.Buffer
	n := New(nil, &buf)

	err := n.Send(context.Background(), testMessage)

	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.HasPrefix(buf.String(), "Subject: TrendRadar 10月17日 晚间 AI简报\n\n"))
	assert.Equal(t, true, strings.Contains(buf.String(), "<h2>晚间回顾</h2>"))
}

func TestBuildMessage(t *testing.T) {
	m := NewSMTPMailer(Config{
		Host: "smtp.example.com",
		Port: 465,
		From: "bot@example.com",
		To:   "reader@example.com",
	})

	msg, err := m.buildMessage(testMessage)
	assert.Equal(t, nil, err)

	subjects := msg.GetGenHeader(mail.HeaderSubject)
	assert.Equal(t, 1, len(subjects))
	subject, err := new(mime.WordDecoder).DecodeHeader(subjects[0])
	assert.Equal(t, nil, err)
	assert.Equal(t, testMessage.Subject, subject)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.Contains(buf.String(), "reader@example.com"))
	assert.Equal(t, true, strings.Contains(buf.String(), "text/html"))
}

func TestBuildMessage_InvalidRecipient(t *testing.T) {
	m := NewSMTPMailer(Config{From: "bot@example.com", To: "not an address"})

	_, err := m.buildMessage(testMessage)
	assert.NotEqual(t, nil, err)
}

// fakeSMTP accepts one connection and records the client's first line, or
// the first byte when the client opens with a TLS handshake.
type fakeSMTP struct {
	addr  string
	lines chan []string
}

func newFakeSMTP(t *testing.T, greet bool) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	f := &fakeSMTP{addr: ln.Addr().String(), lines: make(chan []string, 1)}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			f.lines <- nil
			return
		}
		defer conn.Close()
		conn.SetDeadline(time.Now().Add(3 * time.Second))

		r := bufio.NewReader(conn)
		if !greet {
			b, _ := r.ReadByte()
			f.lines <- []string{string([]byte{b})}
			return
		}

		// ESMTP server that never offers STARTTLS
		var lines []string
		fmt.Fprint(conn, "220 localhost ESMTP\r\n")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				break
			}
			line = strings.TrimSpace(line)
			lines = append(lines, line)
			switch {
			case strings.HasPrefix(line, "EHLO"):
				fmt.Fprint(conn, "250-localhost\r\n250 AUTH PLAIN\r\n")
			case strings.HasPrefix(line, "QUIT"):
				fmt.Fprint(conn, "221 bye\r\n")
				f.lines <- lines
				return
			default:
				fmt.Fprint(conn, "250 ok\r\n")
			}
		}
		f.lines <- lines
	}()

	return f
}

func (f *fakeSMTP) mailer(t *testing.T, implicitTLS bool) *SMTPMailer {
	t.Helper()

	host, port, err := net.SplitHostPort(f.addr)
	if err != nil {
		t.Fatalf("bad listener address: %v", err)
	}
	p, _ := strconv.Atoi(port)

	return NewSMTPMailer(Config{
		Host:        host,
		Port:        p,
		Username:    "bot@example.com",
		Password:    "secret",
		From:        "bot@example.com",
		To:          "reader@example.com",
		Timeout:     2 * time.Second,
		ImplicitTLS: implicitTLS,
	})
}

func TestSend_ImplicitTLSOpensWithHandshake(t *testing.T) {
	srv := newFakeSMTP(t, false)

	err := srv.mailer(t, true).Send(context.Background(), testMessage)
	assert.NotEqual(t, nil, err)

	// 0x16 is the TLS handshake record type
	assert.Equal(t, []string{"\x16"}, <-srv.lines)
}

func TestSend_RequiresSTARTTLS(t *testing.T) {
	srv := newFakeSMTP(t, true)

	err := srv.mailer(t, false).Send(context.Background(), testMessage)
	assert.NotEqual(t, nil, err)

	lines := <-srv.lines
	assert.Equal(t, true, len(lines) > 0)
	assert.Equal(t, true, strings.HasPrefix(lines[0], "EHLO"))
	for _, line := range lines {
		assert.Equal(t, false, strings.HasPrefix(line, "AUTH"))
		assert.Equal(t, false, strings.HasPrefix(line, "MAIL FROM"))
	}
}

func TestNewClient_Address(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "127.0.0.1", Port: 2525, Username: "u", Password: "p"})

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	assert.Equal(t, nil, err)
	assert.Equal(t, "127.0.0.1:2525", client.ServerAddr())
	assert.Equal(t, "TLSMandatory", client.TLSPolicy())
}
