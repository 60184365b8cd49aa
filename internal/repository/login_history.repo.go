package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"twiller-backend/internal/domain"
)

const historyListLimit = 50

type LoginHistoryRepository struct {
	db *pgxpool.Pool
}

func NewLoginHistoryRepository(db *pgxpool.Pool) *LoginHistoryRepository {
	return &LoginHistoryRepository{db: db}
}

func (r *LoginHistoryRepository) Record(ctx context.Context, rec *domain.LoginHistoryRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO login_history (id, user_id, browser, os, device, ip, login_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rec.ID, rec.UserID, rec.Browser, rec.OS, string(rec.Device), rec.IP, rec.LoginTime)
	return err
}

// ListByUser returns the newest entries first, capped at 50.
func (r *LoginHistoryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.LoginHistoryRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, browser, os, device, ip, login_time
		FROM login_history
		WHERE user_id=$1
		ORDER BY login_time DESC
		LIMIT $2
	`, userID, historyListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.LoginHistoryRecord{}
	for rows.Next() {
		var rec domain.LoginHistoryRecord
		var id, uid int64
		var device string
		if err := rows.Scan(&id, &uid, &rec.Browser, &rec.OS, &device, &rec.IP, &rec.LoginTime); err != nil {
			return nil, err
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.UserID = strconv.FormatInt(uid, 10)
		rec.Device = domain.DeviceClass(device)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
