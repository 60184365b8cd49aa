package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"twiller-backend/internal/domain"
)

type PushRepository struct {
	db *pgxpool.Pool
}

func NewPushRepository(db *pgxpool.Pool) *PushRepository {
	return &PushRepository{db: db}
}

// Add stores a subscription; re-subscribing the same endpoint is a no-op.
func (r *PushRepository) Add(ctx context.Context, sub *domain.PushSubscription) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (endpoint) DO NOTHING
	`, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth)
	return err
}

func (r *PushRepository) Remove(ctx context.Context, userID, endpoint string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE user_id=$1 AND endpoint=$2`, userID, endpoint)
	return err
}

// RemoveEndpoint prunes an endpoint regardless of owner, used when the push
// service reports it gone.
func (r *PushRepository) RemoveEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM push_subscriptions WHERE endpoint=$1`, endpoint)
	return err
}

// ListNotifiable returns subscriptions of users who opted into
// notifications, excluding the given user.
func (r *PushRepository) ListNotifiable(ctx context.Context, excludeUserID string) ([]*domain.PushSubscription, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.user_id, s.endpoint, s.p256dh, s.auth
		FROM push_subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE u.notification_enabled AND s.user_id <> $1
	`, excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.PushSubscription{}
	for rows.Next() {
		var sub domain.PushSubscription
		var uid int64
		if err := rows.Scan(&uid, &sub.Endpoint, &sub.P256dh, &sub.Auth); err != nil {
			return nil, err
		}
		sub.UserID = strconv.FormatInt(uid, 10)
		out = append(out, &sub)
	}
	return out, rows.Err()
}
