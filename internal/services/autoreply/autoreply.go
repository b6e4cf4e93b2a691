package autoreply

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"storechatgo/internal/services/chat"
)

// MessagePublisher fans a stored message out to its room. The ws server
// implements it; broadcasting to a room that has since emptied is a no-op,
// the reply still lands in history.
type MessagePublisher interface {
	PublishMessage(msg *chat.ChatMessageDTO)
}

type IAutoResponder interface {
	Eligible(roomID string) bool
	ScheduleReply(roomID string, pub MessagePublisher)
}

const (
	supportRoomPrefix = "support"
	senderName        = "Support Team"
	storeTimeout      = 4 * time.Second
)

var replies = []string{
	"Thanks for reaching out! An agent will be with you shortly.",
	"We have received your message and are looking into it.",
	"Could you share your order number so we can help faster?",
	"Our team is on it. Feel free to add any details in the meantime.",
	"Thanks for your patience, we will get back to you in a moment.",
}

type responder struct {
	svc      chat.IChatService
	minDelay time.Duration
	maxDelay time.Duration
}

func NewResponder(svc chat.IChatService, minDelay, maxDelay time.Duration) IAutoResponder {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &responder{svc: svc, minDelay: minDelay, maxDelay: maxDelay}
}

func (r *responder) Eligible(roomID string) bool {
	return strings.HasPrefix(roomID, supportRoomPrefix)
}

// ScheduleReply queues one scripted system reply for the room after a
// randomized delay. The reply takes the same store-then-broadcast path as a
// user message: nothing is published unless the store acknowledged the write.
func (r *responder) ScheduleReply(roomID string, pub MessagePublisher) {
	delay := r.minDelay
	if jitter := r.maxDelay - r.minDelay; jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter) + 1))
	}

	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		stored, err := r.svc.AppendMessage(ctx, chat.MessageDraft{
			UserID:     nil, // system-authored
			SenderType: chat.SenderTypeAdmin,
			SenderName: senderName,
			Message:    replies[rand.Intn(len(replies))],
			RoomID:     roomID,
		})
		if err != nil {
			zap.L().Warn("autoreply.append", zap.String("room", roomID), zap.Error(err))
			return
		}
		pub.PublishMessage(stored)
	})
}
