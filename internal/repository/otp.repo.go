package repository

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"twiller-backend/internal/service/otp"
	"twiller-backend/pkg/id"
)

// OTPRepository keeps an audit trail of issued passcodes. Live codes stay in
// Redis; this table records issuance metadata only, never the code.
type OTPRepository struct {
	db *pgxpool.Pool
	sf *id.Snowflake
}

func NewOTPRepository(db *pgxpool.Pool, sf *id.Snowflake) *OTPRepository {
	return &OTPRepository{db: db, sf: sf}
}

// LogIssued records asynchronously so issuance never blocks on the audit
// write.
func (r *OTPRepository) LogIssued(ctx context.Context, identity, purpose, channel string, issuedAt, validUntil time.Time) {
	rowID := r.sf.Generate()
	go func() {
		_, err := r.db.Exec(context.Background(), `
			INSERT INTO otp_issuances (id, identity, purpose, channel, issued_at, valid_until)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, rowID, identity, purpose, channel, issuedAt, validUntil)
		if err != nil {
			log.Printf("Failed to record %s OTP issuance: %v", otp.FormatPurpose(purpose), err)
		}
	}()
}
