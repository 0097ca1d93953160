// Package mailbox wraps the backend's /mailbox endpoint used for price-drop
// notification messages.
package mailbox

import (
	"context"

	"github.com/pkg/errors"

	"github.com/voyago/voyago-go/httpclient"
)

const basePath = "/api/v1/mailbox"

// Email is a mailbox message. Unlike the auth endpoints, the mailbox
// endpoint takes its body unwrapped.
type Email struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type Service struct {
	client *httpclient.Client
}

func NewService(client *httpclient.Client) *Service {
	return &Service{client: client}
}

// CreateEmail files a new message into the user's mailbox.
func (s *Service) CreateEmail(ctx context.Context, subject, content string) error {
	if subject == "" {
		return errors.New("[Service.CreateEmail] subject is required")
	}
	if err := s.client.Post(ctx, basePath, Email{Subject: subject, Content: content}, nil); err != nil {
		return errors.Wrap(err, "[Service.CreateEmail]")
	}
	return nil
}
