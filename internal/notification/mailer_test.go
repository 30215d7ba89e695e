package notification

import (
	"testing"

	"github.com/certwatch/certwatch-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		raw    string
		suffix string
		want   string
	}{
		{"ops@example.com", "corp.example.com", "ops@example.com"},
		{"  OPS@Example.COM ", "", "ops@example.com"},
		{"jdoe", "corp.example.com", "jdoe@corp.example.com"},
		{"jdoe", "@corp.example.com", "jdoe@corp.example.com"},
		{"jdoe", "", "jdoe"},
		{"   ", "corp.example.com", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAddress(tt.raw, tt.suffix), tt.raw)
	}
}

func TestNewSMTPMailerValidation(t *testing.T) {
	_, err := NewSMTPMailer(config.EmailConfig{From: "alerts@example.com"})
	assert.Error(t, err)

	_, err = NewSMTPMailer(config.EmailConfig{SMTPHost: "smtp.example.com"})
	assert.Error(t, err)

	m, err := NewSMTPMailer(config.EmailConfig{SMTPHost: "smtp.example.com", From: "alerts@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, m.port)
}

func TestSMTPMailerRejectsEmptyBatch(t *testing.T) {
	m, err := NewSMTPMailer(config.EmailConfig{SMTPHost: "smtp.example.com", From: "alerts@example.com"})
	require.NoError(t, err)
	assert.Error(t, m.Send(nil, "subject", "<html></html>", nil))
}
