// Package notify reports run progress and outcomes to the person who requested them.
package notify

//go:generate $MOCKGEN -source=notifier.go -destination=mocks/notifier_mock.go

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// Message is a user-facing notification.
type Message struct {
	// Text is the notification body.
	Text string
	// Links are share or index links produced by a delivery.
	Links []string
	// Err is set when the message reports a failure.
	Err error
	// ReplyTo is the handle of an earlier announcement this message follows up.
	ReplyTo string
}

// Notifier delivers notifications and progress updates to a recipient.
type Notifier interface {
	// Announce posts the start of a collection and returns a handle to refer to it later.
	Announce(ctx context.Context, recipient string, msg *Message) string
	// Notify sends a message to the recipient.
	Notify(ctx context.Context, recipient string, msg *Message)
	// UpdateProgress reports that item index (1-based) of total is done.
	UpdateProgress(ctx context.Context, recipient string, index, total int, label string)
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	// log is the destination logger.
	log *zap.SugaredLogger
	// announcements numbers the posted announcements.
	announcements atomic.Int64
}

// NewLogNotifier creates a notifier writing to l, or to the global logger when l is nil.
func NewLogNotifier(l *zap.SugaredLogger) Notifier {
	if l == nil {
		l = logger.Logger()
	}

	return &LogNotifier{log: l}
}

// Announce posts the start of a collection and returns a handle to refer to it later.
func (n *LogNotifier) Announce(_ context.Context, recipient string, msg *Message) string {
	if msg == nil {
		return ""
	}

	ref := "announcement-" + strconv.FormatInt(n.announcements.Add(1), 10)

	n.log.Infow(msg.Text, "recipient", recipient, "ref", ref)

	return ref
}

// Notify sends a message to the recipient.
func (n *LogNotifier) Notify(_ context.Context, recipient string, msg *Message) {
	if msg == nil {
		return
	}

	kvs := []any{"recipient", recipient}
	if msg.ReplyTo != "" {
		kvs = append(kvs, "reply_to", msg.ReplyTo)
	}

	if msg.Err != nil {
		n.log.Errorw(msg.Text, append(kvs, "error", msg.Err)...)

		return
	}

	if len(msg.Links) > 0 {
		kvs = append(kvs, "links", msg.Links)
	}

	n.log.Infow(msg.Text, kvs...)
}

// UpdateProgress reports that item index (1-based) of total is done.
func (n *LogNotifier) UpdateProgress(_ context.Context, recipient string, index, total int, label string) {
	n.log.Infow("Progress "+ProgressText(index, total),
		"recipient", recipient,
		"item", label)
}

// ProgressText formats a progress counter such as "(3/12)".
func ProgressText(index, total int) string {
	return "(" + strconv.Itoa(index) + "/" + strconv.Itoa(total) + ")"
}
