package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedNotifier returns a notifier and the log entries it writes.
func newObservedNotifier() (Notifier, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return NewLogNotifier(zap.New(core).Sugar()), logs
}

// TestNewLogNotifier_DefaultLogger tests the nil logger fallback.
func TestNewLogNotifier_DefaultLogger(t *testing.T) {
	t.Parallel()

	notifier := NewLogNotifier(nil)
	require.NotNil(t, notifier)

	impl, ok := notifier.(*LogNotifier)
	require.True(t, ok)
	assert.NotNil(t, impl.log)
}

// TestLogNotifier_Notify tests message rendering.
func TestLogNotifier_Notify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		msg           *Message
		expectedLevel zapcore.Level
		expectedKeys  []string
	}{
		{
			name:          "plain text",
			msg:           &Message{Text: "Album delivered"},
			expectedLevel: zapcore.InfoLevel,
			expectedKeys:  []string{"recipient"},
		},
		{
			name:          "with links",
			msg:           &Message{Text: "Album delivered", Links: []string{"https://gofile.io/d/x"}},
			expectedLevel: zapcore.InfoLevel,
			expectedKeys:  []string{"recipient", "links"},
		},
		{
			name:          "failure",
			msg:           &Message{Text: "Delivery failed", Err: errors.New("boom")},
			expectedLevel: zapcore.ErrorLevel,
			expectedKeys:  []string{"recipient", "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			notifier, logs := newObservedNotifier()
			notifier.Notify(context.Background(), "alice", tt.msg)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.expectedLevel, entries[0].Level)
			assert.Equal(t, tt.msg.Text, entries[0].Message)

			fields := entries[0].ContextMap()
			for _, key := range tt.expectedKeys {
				assert.Contains(t, fields, key)
			}

			assert.Equal(t, "alice", fields["recipient"])
		})
	}
}

// TestLogNotifier_NilMessage tests that nil messages are ignored.
func TestLogNotifier_NilMessage(t *testing.T) {
	t.Parallel()

	notifier, logs := newObservedNotifier()
	notifier.Notify(context.Background(), "alice", nil)

	assert.Zero(t, logs.Len())
}

// TestLogNotifier_Announce tests that announcements get distinct handles usable as replies.
func TestLogNotifier_Announce(t *testing.T) {
	t.Parallel()

	notifier, logs := newObservedNotifier()
	ctx := context.Background()

	first := notifier.Announce(ctx, "alice", &Message{Text: "Album: Kind of Blue"})
	second := notifier.Announce(ctx, "alice", &Message{Text: "Album: Blue Train"})

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.Empty(t, notifier.Announce(ctx, "alice", nil))

	notifier.Notify(ctx, "alice", &Message{Text: "Album delivered", ReplyTo: first})

	entries := logs.FilterMessage("Album delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, first, entries[0].ContextMap()["reply_to"])
}

// TestLogNotifier_UpdateProgress tests progress entries.
func TestLogNotifier_UpdateProgress(t *testing.T) {
	t.Parallel()

	notifier, logs := newObservedNotifier()
	notifier.UpdateProgress(context.Background(), "alice", 2, 10, "Kind of Blue")

	entries := logs.FilterMessage("Progress (2/10)").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Kind of Blue", entries[0].ContextMap()["item"])
}

// TestProgressText tests the progress counter format.
func TestProgressText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(1/3)", ProgressText(1, 3))
	assert.Equal(t, "(0/0)", ProgressText(0, 0))
}
