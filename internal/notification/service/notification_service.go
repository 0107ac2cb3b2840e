package service

import (
	"context"
	"errors"

	"github.com/inkwell/blog-backend/internal/common/clock"
	"github.com/inkwell/blog-backend/internal/common/constants"
	"github.com/inkwell/blog-backend/internal/common/crypto"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/logger"
	"github.com/inkwell/blog-backend/internal/notification/domain"
	"github.com/inkwell/blog-backend/internal/notification/repository"
	"github.com/inkwell/blog-backend/internal/observability/metrics"
)

type NotificationService struct {
	notifications repository.Repository
	idGenerator   crypto.IDGenerator
	clock         clock.Clock
	log           *logger.Logger
}

func NewNotificationService(
	notifications repository.Repository,
	idGenerator crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		idGenerator:   idGenerator,
		clock:         clk,
		log:           log,
	}
}

// Notify records a notification for a user. Failures are reported to the
// caller, who decides whether they abort the surrounding operation; comment
// creation, for one, does not.
func (s *NotificationService) Notify(ctx context.Context, userID, notificationType, message string) error {
	id, err := s.idGenerator.NewID()
	if err != nil {
		return commonerrors.ErrInternalError.WithCause(err)
	}

	notification := domain.Notification{
		ID:        id,
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		s.log.WithFields(ctx, logger.Fields{"action": "notify", "user_id": userID}).Errorf("notification insert failed: %v", err)
		return err
	}

	metrics.NotificationsCreated.Inc()
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	return s.notifications.ListByUserID(ctx, userID, limit, offset)
}

// MarkRead lets a user mark only their own notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return commonerrors.ErrNotificationNotFound
		}
		return err
	}

	if notification.UserID != userID {
		// Hidden as 404 so users cannot probe other users' notification ids.
		return commonerrors.ErrNotificationNotFound
	}

	return s.notifications.MarkRead(ctx, notificationID)
}

// DeleteOld prunes notifications older than the retention window; wired into
// the periodic cleanup runner.
func (s *NotificationService) DeleteOld(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-constants.NotificationRetention)
	return s.notifications.DeleteOlderThan(ctx, cutoff)
}
