package push

import (
	"context"
	"errors"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"twiller-backend/internal/domain"
)

// ErrSubscriptionGone marks endpoints the push service no longer accepts;
// callers should prune them.
var ErrSubscriptionGone = errors.New("push subscription gone")

type Sender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error
}

type WebPushSender struct {
	subject    string
	publicKey  string
	privateKey string
}

func NewWebPushSender(subject, publicKey, privateKey string) *WebPushSender {
	return &WebPushSender{subject: subject, publicKey: publicKey, privateKey: privateKey}
}

func (s *WebPushSender) Configured() bool {
	return s.publicKey != "" && s.privateKey != ""
}

func (s *WebPushSender) Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrSubscriptionGone
	}
	return nil
}
