package email

import "context"

// NoopNotifier is used when email delivery is disabled in configuration.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) SendWelcome(ctx context.Context, email, name string) error { return nil }

func (NoopNotifier) SendIdentityLinked(ctx context.Context, email, provider string) error {
	return nil
}

func (NoopNotifier) SendIdentityUnlinked(ctx context.Context, email, provider string) error {
	return nil
}
