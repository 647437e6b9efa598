package mailer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestSendValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		to   []string
	}{
		{"no host", SMTPConfig{}, []string{"a@example.com"}},
		{"no recipients", SMTPConfig{Host: "smtp.example.com", Port: 587}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSMTPMailer(tt.cfg, zerolog.Nop())
			if err := m.Send(context.Background(), tt.to, "subject", "body"); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
