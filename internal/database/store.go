package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-realtime-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// Store is the persistence surface used by REST producers and socket handlers.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// SaveMessage assigns an id and creation time when missing, then inserts.
func (s *Store) SaveMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// Conversation returns the messages exchanged between a and b, newest first.
func (s *Store) Conversation(ctx context.Context, a, b string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Order("created_at desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return msgs, nil
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Kind == "" {
		n.Kind = "generic"
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkNotificationRead flags a notification owned by userID as read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load notification: %w", err)
	}
	if n.Read {
		return &n, nil
	}

	at := s.now().UTC()
	n.Read = true
	n.ReadAt = &at
	if err := s.db.WithContext(ctx).Model(&n).Updates(map[string]any{"read": true, "read_at": at}).Error; err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}

// SetUserStatus upserts the user's published status.
func (s *Store) SetUserStatus(ctx context.Context, userID, status string) error {
	row := models.UserStatus{UserID: userID, Status: status, UpdatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	return nil
}

func (s *Store) UserStatus(ctx context.Context, userID string) (string, error) {
	var row models.UserStatus
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load user status: %w", err)
	}
	return row.Status, nil
}

// RoomGrantees lists the identities allowed into room. Empty means unrestricted.
func (s *Store) RoomGrantees(ctx context.Context, room string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.RoomGrant{}).
		Where("room = ?", room).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load room grants: %w", err)
	}
	return ids, nil
}

// GrantRoom restricts room to userIDs, recording grantor. Callers are trusted
// producers; existing grants are kept.
func (s *Store) GrantRoom(ctx context.Context, room, grantor string, userIDs []string) error {
	rows := make([]models.RoomGrant, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		rows = append(rows, models.RoomGrant{Room: room, UserID: id, GrantedBy: grantor, CreatedAt: s.now().UTC()})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("grant room: %w", err)
	}
	return nil
}
