package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/realtime"
	"fleet_tracker/internal/repository"
)

// NotificationInput describes one notification to dispatch. BusNumber is optional.
type NotificationInput struct {
	Sender    string
	Receiver  string
	Type      models.NotificationType
	Title     string
	Message   string
	BusNumber string
}

// NotificationService persists notifications and pushes them to the receiver's live topic.
type NotificationService struct {
	store repository.NotificationRepository
	push  Publisher
	now   Clock
}

func NewNotificationService(store repository.NotificationRepository, push Publisher) *NotificationService {
	return &NotificationService{store: store, push: push, now: time.Now}
}

// TopicFor maps a receiver to its live topic.
func TopicFor(receiver string) string {
	switch {
	case strings.EqualFold(receiver, models.ReceiverAdmin):
		return realtime.AdminTopic
	case receiver == models.ReceiverBroadcast:
		return realtime.BroadcastTopic
	default:
		return realtime.DriverTopic(receiver)
	}
}

// Dispatch stores the notification, then pushes it. A failed push is logged and
// never returned; a failed store write is.
//
// The admin and broadcast receivers are matched case-insensitively and stored in
// their canonical spelling, so the persisted inbox and the live topic agree.
func (s *NotificationService) Dispatch(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	if err := required("receiver", in.Receiver); err != nil {
		return nil, err
	}
	switch {
	case strings.EqualFold(in.Receiver, models.ReceiverAdmin):
		in.Receiver = models.ReceiverAdmin
	case strings.EqualFold(in.Receiver, models.ReceiverBroadcast):
		in.Receiver = models.ReceiverBroadcast
	}
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("unknown notification type %q", in.Type)
	}

	n := &models.Notification{
		Sender:    in.Sender,
		Receiver:  in.Receiver,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		BusNumber: in.BusNumber,
		IsRead:    false,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, apperr.Persistence("create notification", err)
	}
	logrus.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"receiver":        n.Receiver,
		"type":            n.Type,
	}).Info("Notification created.")

	s.deliver(ctx, TopicFor(n.Receiver), n)
	return n, nil
}

// CreateBroadcast addresses the notification to every user.
func (s *NotificationService) CreateBroadcast(ctx context.Context, sender string, typ models.NotificationType, title, message string) (*models.Notification, error) {
	return s.Dispatch(ctx, NotificationInput{
		Sender:   sender,
		Receiver: models.ReceiverBroadcast,
		Type:     typ,
		Title:    title,
		Message:  message,
	})
}

func (s *NotificationService) SendInfo(ctx context.Context, receiver, title, message string) (*models.Notification, error) {
	return s.Dispatch(ctx, NotificationInput{
		Sender: models.SenderSystem, Receiver: receiver, Type: models.NotificationInfo,
		Title: title, Message: message,
	})
}

func (s *NotificationService) SendAlert(ctx context.Context, receiver, title, message, busNumber string) (*models.Notification, error) {
	return s.Dispatch(ctx, NotificationInput{
		Sender: models.SenderSystem, Receiver: receiver, Type: models.NotificationAlert,
		Title: title, Message: message, BusNumber: busNumber,
	})
}

func (s *NotificationService) SendWarning(ctx context.Context, receiver, title, message, busNumber string) (*models.Notification, error) {
	return s.Dispatch(ctx, NotificationInput{
		Sender: models.SenderSystem, Receiver: receiver, Type: models.NotificationWarning,
		Title: title, Message: message, BusNumber: busNumber,
	})
}

// SendMaintenanceAlert tells a driver their bus needs work.
func (s *NotificationService) SendMaintenanceAlert(ctx context.Context, driverUsername, busNumber, message string) (*models.Notification, error) {
	return s.Dispatch(ctx, NotificationInput{
		Sender: models.SenderSystem, Receiver: driverUsername, Type: models.NotificationMaintenance,
		Title: "Maintenance Required", Message: message, BusNumber: busNumber,
	})
}

func (s *NotificationService) deliver(ctx context.Context, topic string, n *models.Notification) {
	if s.push == nil {
		return
	}
	if err := s.push.Publish(ctx, topic, n); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"notification_id": n.ID,
			"topic":           topic,
		}).Warn("Live notification delivery failed.")
	}
}

// Get loads one notification. A non-empty owner limits the lookup to that inbox:
// notifications addressed to anyone else read as not found.
func (s *NotificationService) Get(ctx context.Context, id, owner string) (*models.Notification, error) {
	n, err := s.store.FindNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner != "" && n.Receiver != owner {
		return nil, apperr.NotFound("notification %s not found", id)
	}
	return n, nil
}

// ListForReceiver returns an inbox, newest first.
func (s *NotificationService) ListForReceiver(ctx context.Context, receiver string) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, repository.NotificationFilter{Receiver: receiver})
}

func (s *NotificationService) ListUnread(ctx context.Context, receiver string) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, repository.NotificationFilter{Receiver: receiver, UnreadOnly: true})
}

func (s *NotificationService) UnreadCount(ctx context.Context, receiver string) (int64, error) {
	return s.store.CountNotifications(ctx, repository.NotificationFilter{Receiver: receiver, UnreadOnly: true})
}

// List returns every notification matching filter; the zero filter lists everything.
func (s *NotificationService) List(ctx context.Context, filter repository.NotificationFilter) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, filter)
}

// MarkAsRead flags one notification as read, scoped to owner like Get.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, owner string) (*models.Notification, error) {
	n, err := s.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	n.IsRead = true
	if err := s.store.SaveNotification(ctx, n); err != nil {
		return nil, apperr.Persistence("mark notification read", err)
	}
	return n, nil
}

// MarkAllAsRead flags the whole inbox as read and returns how many rows changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, receiver string) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, receiver)
	if err != nil {
		return 0, apperr.Persistence("mark all read", err)
	}
	logrus.WithFields(logrus.Fields{"receiver": receiver, "count": n}).Info("Notifications marked read.")
	return n, nil
}

// Delete removes one notification, scoped to owner like Get.
func (s *NotificationService) Delete(ctx context.Context, id, owner string) error {
	if owner != "" {
		if _, err := s.Get(ctx, id, owner); err != nil {
			return err
		}
	}
	if err := s.store.DeleteNotification(ctx, id); err != nil {
		return err
	}
	logrus.WithField("notification_id", id).Info("Notification deleted.")
	return nil
}

func (s *NotificationService) DeleteAllForReceiver(ctx context.Context, receiver string) (int64, error) {
	n, err := s.store.DeleteNotificationsByReceiver(ctx, receiver)
	if err != nil {
		return 0, apperr.Persistence("delete notifications", err)
	}
	logrus.WithFields(logrus.Fields{"receiver": receiver, "count": n}).Info("Notifications deleted.")
	return n, nil
}

// notify dispatches on behalf of a state machine whose own writes already
// succeeded, so any failure is logged and dropped.
func (s *NotificationService) notify(ctx context.Context, in NotificationInput) {
	if _, err := s.Dispatch(ctx, in); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"receiver": in.Receiver,
			"title":    in.Title,
		}).Error("Notification dispatch failed after state change.")
	}
}

// notifyDriver is notify for driver receivers. An empty username skips the notification.
func (s *NotificationService) notifyDriver(ctx context.Context, driverUsername string, in NotificationInput) {
	if strings.TrimSpace(driverUsername) == "" {
		logrus.WithFields(logrus.Fields{
			"title":      in.Title,
			"bus_number": in.BusNumber,
		}).Warn("No driver assigned, skipping driver notification.")
		return
	}
	in.Receiver = driverUsername
	s.notify(ctx, in)
}
