package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleet_tracker/internal/models"
)

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return wrap("create notification", s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	return wrap("save notification "+n.ID, s.db.WithContext(ctx).Save(n).Error)
}

func (s *GormStore) FindNotification(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := first(s.db.WithContext(ctx).Where("id = ?", id), &n, "notification", id); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *GormStore) ListNotifications(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	var out []models.Notification
	q := notificationQuery(s.db.WithContext(ctx), filter).Order("created_at DESC")
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap("list notifications", err)
	}
	return out, nil
}

func (s *GormStore) CountNotifications(ctx context.Context, filter NotificationFilter) (int64, error) {
	return count(notificationQuery(s.db.WithContext(ctx), filter), "count notifications")
}

func (s *GormStore) MarkAllRead(ctx context.Context, receiver string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver = ? AND is_read = ?", receiver, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, wrap("mark all read for "+receiver, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) DeleteNotification(ctx context.Context, id string) error {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	return deleteOne(q, &models.Notification{}, "notification", id)
}

func (s *GormStore) DeleteNotificationsByReceiver(ctx context.Context, receiver string) (int64, error) {
	res := s.db.WithContext(ctx).Where("receiver = ?", receiver).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, wrap("delete notifications for "+receiver, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, wrap("delete expired notifications", res.Error)
	}
	return res.RowsAffected, nil
}

func notificationQuery(db *gorm.DB, f NotificationFilter) *gorm.DB {
	q := db.Model(&models.Notification{})
	if f.Receiver != "" {
		q = q.Where("receiver = ?", f.Receiver)
	}
	if f.Sender != "" {
		q = q.Where("sender = ?", f.Sender)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.BusNumber != "" {
		q = q.Where("bus_number = ?", f.BusNumber)
	}
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	return q
}
