package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/repository"
)

const (
	cleanupLock = "notification-cleanup"
	// cleanupLease is how long a day's sweep stays claimed once taken.
	cleanupLease = 6 * time.Hour
)

// lockName is the per-day lock key. It is never released after a successful
// sweep, so instances whose midnight fires late find it taken and skip.
func lockName(day time.Time) string {
	return cleanupLock + ":" + day.Format(time.DateOnly)
}

// ErrAlreadyRunning is returned by RunOnce while another run holds the lock.
var ErrAlreadyRunning = errors.New("notification cleanup already running")

// NotificationCleanup deletes notifications older than the retention window once a day,
// at local midnight.
type NotificationCleanup struct {
	store     repository.NotificationRepository
	locker    Locker
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
	running   atomic.Bool
}

func NewNotificationCleanup(store repository.NotificationRepository, locker Locker, retention, timeout time.Duration) *NotificationCleanup {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &NotificationCleanup{
		store:     store,
		locker:    locker,
		retention: retention,
		timeout:   timeout,
		now:       time.Now,
	}
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// Start runs the job in the background until ctx is done.
func (j *NotificationCleanup) Start(ctx context.Context) {
	logrus.WithField("retention", j.retention).Info("Notification cleanup job started.")
	go func() {
		for {
			now := j.now()
			timer := time.NewTimer(nextMidnight(now).Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				logrus.Info("Notification cleanup job stopped.")
				return
			case <-timer.C:
				if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
					logrus.WithError(err).Error("Notification cleanup failed.")
				}
			}
		}
	}()
}

// RunOnce deletes every notification created before now minus the retention window.
// At most one sweep runs per calendar day across all instances sharing the locker.
func (j *NotificationCleanup) RunOnce(ctx context.Context) (int64, error) {
	if !j.running.CompareAndSwap(false, true) {
		return 0, ErrAlreadyRunning
	}
	defer j.running.Store(false)

	now := j.now()
	lock := lockName(now)
	release, ok, err := j.locker.TryLock(ctx, lock, cleanupLease)
	if err != nil {
		return 0, err
	}
	if !ok {
		logrus.WithField("lock", lock).Info("Notification cleanup skipped, already claimed for today.")
		return 0, ErrAlreadyRunning
	}

	cutoff := now.Add(-j.retention)
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	deleted, err := j.store.DeleteNotificationsBefore(runCtx, cutoff)
	if err != nil {
		// give the day back so a later attempt can retry
		release(context.Background())
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"cutoff":  cutoff.Format(time.RFC3339),
		"deleted": deleted,
	}).Info("Old notifications removed.")
	return deleted, nil
}
