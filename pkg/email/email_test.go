package email

import (
	"context"
	"errors"
	"inys-backend/internal/domain"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAccountCreated(t *testing.T) {
	svc := NewEmailService(Config{Host: "smtp.example.com", Port: "587", Username: "relay@example.com", Password: "x"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := svc.SendAccountCreated(context.Background(), domain.AccountNotice{
		Name:     "Jane <Doe>",
		Email:    "jane@example.com",
		LoginURL: "https://inys.example/cms/admin",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "relay@example.com", gotFrom)
	assert.Equal(t, []string{"jane@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: relay@example.com\r\nTo: jane@example.com\r\n"))
	assert.Contains(t, gotMsg, "https://inys.example/cms/admin")
	assert.Contains(t, gotMsg, "Jane &lt;Doe&gt;")
}

func TestSendAccountCreatedWrapsError(t *testing.T) {
	svc := NewEmailService(Config{Host: "smtp.example.com", Port: "587", Username: "u", Password: "p", FromEmail: "noreply@example.com"})
	svc.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }

	err := svc.SendAccountCreated(context.Background(), domain.AccountNotice{Email: "jane@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewEmailService(Config{Host: "smtp.example.com"}).IsConfigured())
	assert.True(t, NewEmailService(Config{Host: "h", Username: "u", Password: "p"}).IsConfigured())
}
