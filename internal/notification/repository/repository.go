package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/inkwell/blog-backend/internal/common/db"
	"github.com/inkwell/blog-backend/internal/notification/domain"
)

type Repository interface {
	Create(ctx context.Context, notification domain.Notification) error
	FindByID(ctx context.Context, id string) (domain.Notification, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

var ErrNotificationNotFound = pgx.ErrNoRows

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const notificationColumns = `id, user_id, type, message, is_read, created_at`

func (r *PgRepository) Create(ctx context.Context, notification domain.Notification) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO notifications (id, user_id, type, message, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Message,
		notification.IsRead,
		notification.CreatedAt,
	)
	return db.HandleExecError(err, "create notification", start)
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Notification, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`,
		id,
	)

	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt)
	if err := db.HandleQueryError(err, ErrNotificationNotFound, "find notification", start); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

func (r *PgRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list notifications", start)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, db.HandleQueryError(err, nil, "list notifications", start)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "list notifications", start)
	}
	db.MeasureQueryDuration("list notifications", start)
	return notifications, nil
}

func (r *PgRepository) MarkRead(ctx context.Context, id string) error {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return db.HandleExecError(err, "mark notification read", start)
	}
	db.MeasureQueryDuration("mark notification read", start)
	if res.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PgRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM notifications WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, db.HandleExecError(err, "delete old notifications", start)
	}
	db.MeasureQueryDuration("delete old notifications", start)
	return res.RowsAffected(), nil
}
