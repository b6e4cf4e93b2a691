package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type ChatMessageDTO struct {
	ID         int64     `json:"id"`
	UserID     *string   `json:"userId"`
	SenderType string    `json:"senderType" example:"user"`
	SenderName string    `json:"senderName" example:"Jane Doe"`
	Message    string    `json:"message"`
	RoomID     string    `json:"roomId"     example:"general"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"  example:"2025-07-27T16:05:05Z"`
}

// MessageDraft is a ChatMessageDTO before the store has assigned id/createdAt.
type MessageDraft struct {
	UserID     *string
	SenderType string
	SenderName string
	Message    string
	RoomID     string
}

type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (p *Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

const (
	SenderTypeUser  = "user"
	SenderTypeAdmin = "admin"
)

var (
	ErrEmptyMessage      = errors.New("message must not be empty")
	ErrInvalidSenderType = errors.New("invalid sender type")
	ErrUserNotFound      = errors.New("user not found")
)

type IChatService interface {
	AppendMessage(ctx context.Context, draft MessageDraft) (*ChatMessageDTO, error)
	RecentMessages(ctx context.Context, roomID string, limit int) ([]ChatMessageDTO, error)
	ProfileOf(ctx context.Context, userID string) (*Profile, error)
	MarkRead(ctx context.Context, roomID, readerID string) (int64, error)
}

type chatService struct {
	db *sql.DB
}

func NewChatService(db *sql.DB) IChatService {
	return &chatService{db: db}
}

// AppendMessage inserts the draft and returns the stored row. The store is the
// only place ids and timestamps come from.
func (svc *chatService) AppendMessage(ctx context.Context, draft MessageDraft) (*ChatMessageDTO, error) {
	draft.Message = strings.TrimSpace(draft.Message)
	if draft.Message == "" {
		return nil, ErrEmptyMessage
	}
	if draft.SenderType != SenderTypeUser && draft.SenderType != SenderTypeAdmin {
		return nil, ErrInvalidSenderType
	}

	const ins = `
	  INSERT INTO chat_messages (user_id, sender_type, sender_name, message, room_id, is_read)
	       VALUES ($1, $2, $3, $4, $5, false)
	    RETURNING id, created_at`

	dto := &ChatMessageDTO{
		UserID:     draft.UserID,
		SenderType: draft.SenderType,
		SenderName: draft.SenderName,
		Message:    draft.Message,
		RoomID:     draft.RoomID,
	}
	err := svc.db.QueryRowContext(ctx, ins,
		draft.UserID, draft.SenderType, draft.SenderName,
		draft.Message, draft.RoomID,
	).Scan(&dto.ID, &dto.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return dto, nil
}

// RecentMessages returns the newest `limit` messages of a room, oldest first,
// so clients can render history top-down without re-sorting.
func (svc *chatService) RecentMessages(ctx context.Context, roomID string, limit int) ([]ChatMessageDTO, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `SELECT id, user_id, sender_type, sender_name, message,
	                  room_id, is_read, created_at
	             FROM chat_messages
	            WHERE room_id = $1
	            ORDER BY id DESC
	            LIMIT $2`

	rows, err := svc.db.QueryContext(ctx, q, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]ChatMessageDTO, 0, limit)
	for rows.Next() {
		var m ChatMessageDTO
		if err := rows.Scan(&m.ID, &m.UserID, &m.SenderType, &m.SenderName,
			&m.Message, &m.RoomID, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// query is newest-first; flip to chronological order
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (svc *chatService) ProfileOf(ctx context.Context, userID string) (*Profile, error) {
	const q = `SELECT coalesce(first_name,''), coalesce(last_name,'')
	             FROM users WHERE id = $1`
	p := &Profile{}
	if err := svc.db.QueryRowContext(ctx, q, userID).Scan(&p.FirstName, &p.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return p, nil
}

// MarkRead flips is_read on every message in the room that the reader did not
// author. Runs outside the send/broadcast path; this is the read-receipt flow.
func (svc *chatService) MarkRead(ctx context.Context, roomID, readerID string) (int64, error) {
	const upd = `UPDATE chat_messages
	                SET is_read = true
	              WHERE room_id = $1
	                AND is_read = false
	                AND (user_id IS NULL OR user_id <> $2)`

	res, err := svc.db.ExecContext(ctx, upd, roomID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
