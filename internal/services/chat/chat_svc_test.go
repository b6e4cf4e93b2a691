package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSvc(t *testing.T) (IChatService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewChatService(db), mock
}

func TestAppendMessage(t *testing.T) {
	svc, mock := newMockSvc(t)

	uid := "u1"
	created := time.Date(2025, 7, 27, 16, 5, 5, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(&uid, SenderTypeUser, "Jane Doe", "hello", "general").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))

	dto, err := svc.AppendMessage(context.Background(), MessageDraft{
		UserID:     &uid,
		SenderType: SenderTypeUser,
		SenderName: "Jane Doe",
		Message:    "  hello  ",
		RoomID:     "general",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), dto.ID)
	assert.Equal(t, "hello", dto.Message) // trimmed before insert
	assert.Equal(t, created, dto.CreatedAt)
	assert.False(t, dto.IsRead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendMessageEmpty(t *testing.T) {
	svc, mock := newMockSvc(t)

	_, err := svc.AppendMessage(context.Background(), MessageDraft{
		SenderType: SenderTypeUser,
		Message:    "   ",
		RoomID:     "general",
	})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.NoError(t, mock.ExpectationsWereMet()) // no query issued
}

func TestAppendMessageBadSenderType(t *testing.T) {
	svc, _ := newMockSvc(t)

	_, err := svc.AppendMessage(context.Background(), MessageDraft{
		SenderType: "bot",
		Message:    "hi",
		RoomID:     "general",
	})
	assert.ErrorIs(t, err, ErrInvalidSenderType)
}

func TestRecentMessagesOldestFirst(t *testing.T) {
	svc, mock := newMockSvc(t)

	cols := []string{"id", "user_id", "sender_type", "sender_name",
		"message", "room_id", "is_read", "created_at"}
	now := time.Now().UTC()
	// store returns newest-first
	rows := sqlmock.NewRows(cols).
		AddRow(int64(3), "u2", "user", "Bob", "third", "general", false, now).
		AddRow(int64(2), nil, "admin", "Support", "second", "general", false, now).
		AddRow(int64(1), "u1", "user", "Alice", "first", "general", true, now)
	mock.ExpectQuery(`SELECT .+ FROM chat_messages`).
		WithArgs("general", 50).
		WillReturnRows(rows)

	list, err := svc.RecentMessages(context.Background(), "general", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[2].ID)
	assert.Nil(t, list[1].UserID)
	assert.Equal(t, SenderTypeAdmin, list[1].SenderType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileOf(t *testing.T) {
	svc, mock := newMockSvc(t)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}).AddRow("Jane", "Doe"))

	p, err := svc.ProfileOf(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.DisplayName())
}

func TestProfileOfNotFound(t *testing.T) {
	svc, mock := newMockSvc(t)

	// an empty row set surfaces as sql.ErrNoRows from QueryRowContext
	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}))

	_, err := svc.ProfileOf(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendMessageStoreFailure(t *testing.T) {
	svc, mock := newMockSvc(t)

	uid := "u1"
	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(&uid, SenderTypeUser, "Jane Doe", "hello", "general").
		WillReturnError(errors.New("connection refused"))

	_, err := svc.AppendMessage(context.Background(), MessageDraft{
		UserID:     &uid,
		SenderType: SenderTypeUser,
		SenderName: "Jane Doe",
		Message:    "hello",
		RoomID:     "general",
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead(t *testing.T) {
	svc, mock := newMockSvc(t)

	mock.ExpectExec(`UPDATE chat_messages`).
		WithArgs("support-u1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := svc.MarkRead(context.Background(), "support-u1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
