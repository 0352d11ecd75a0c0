package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/logger"
)

type senderStub struct {
	chatIDs []int64
	texts   []string
	err     error
}

func (s *senderStub) SendMarkdown(_ context.Context, chatID int64, markdown string) (*telegram.Message, error) {
	s.chatIDs = append(s.chatIDs, chatID)
	s.texts = append(s.texts, markdown)
	return &telegram.Message{}, s.err
}

func TestNotifyDonation(t *testing.T) {
	sender := &senderStub{}
	a := NewGroupAnnouncer(sender, 500, logger.Discard())

	a.NotifyDonation(context.Background(), "rahul", penalty.FromRupees(236))

	require.Len(t, sender.texts, 1)
	assert.Equal(t, int64(500), sender.chatIDs[0])
	assert.Contains(t, sender.texts[0], "rahul")
	assert.Contains(t, sender.texts[0], "₹236.00")
	assert.Contains(t, sender.texts[0], "donated")
}

func TestNotifyExceptionIncludesReason(t *testing.T) {
	sender := &senderStub{}
	a := NewGroupAnnouncer(sender, 500, logger.Discard())

	a.NotifyException(context.Background(), "priya", "was sick")

	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "priya")
	assert.Contains(t, sender.texts[0], "was sick")
}

func TestSendFailureIsSwallowed(t *testing.T) {
	sender := &senderStub{err: errors.New("network down")}
	a := NewGroupAnnouncer(sender, 500, logger.Discard())

	// Must not panic or propagate; the command already committed.
	a.NotifyDonation(context.Background(), "rahul", penalty.FromRupees(100))
	a.NotifyException(context.Background(), "rahul", "travel")
	assert.Len(t, sender.texts, 2)
}
