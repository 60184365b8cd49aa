package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twiller-backend/internal/domain"
	"twiller-backend/pkg/xerrors"
)

const userColumns = `
	id, username, display_name, avatar, email, mobile, password_hash,
	bio, location, website, joined_date, notification_enabled, last_reset_date,
	subscription_plan, subscription_start_date, subscription_expiry_date,
	tweet_count, preferred_language, pending_language, language_otp_hash, language_otp_expiry`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var userID int64
	var mobile, passwordHash *string
	err := row.Scan(
		&userID,
		&u.Username,
		&u.DisplayName,
		&u.Avatar,
		&u.Email,
		&mobile,
		&passwordHash,
		&u.Bio,
		&u.Location,
		&u.Website,
		&u.JoinedDate,
		&u.NotificationEnabled,
		&u.LastResetDate,
		&u.SubscriptionPlan,
		&u.SubscriptionStartDate,
		&u.SubscriptionExpiryDate,
		&u.TweetCount,
		&u.PreferredLanguage,
		&u.PendingLanguage,
		&u.LanguageOTPHash,
		&u.LanguageOTPExpiry,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ID = strconv.FormatInt(userID, 10)
	if mobile != nil {
		u.Mobile = *mobile
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, strings.TrimSpace(email))
	return scanUser(row)
}

// GetByIdentity finds a user by email or mobile number.
func (r *UserRepository) GetByIdentity(ctx context.Context, identity string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1) OR mobile=$1`,
		strings.TrimSpace(identity))
	return scanUser(row)
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, username, display_name, avatar, email, mobile, password_hash,
			bio, location, website, joined_date, notification_enabled,
			subscription_plan, tweet_count, preferred_language
		) VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''),$8,$9,$10,$11,$12,$13,$14,$15)
	`, u.ID, u.Username, u.DisplayName, u.Avatar, u.Email, u.Mobile, u.PasswordHash,
		u.Bio, u.Location, u.Website, u.JoinedDate, u.NotificationEnabled,
		u.SubscriptionPlan, u.TweetCount, u.PreferredLanguage)
	if err != nil && xerrors.ParsePGErrorCode(err) == "23505" {
		return xerrors.ErrUserAlreadyExists
	}
	return err
}

// allowed profile columns for the PATCH update, keyed by API field name.
var updatableColumns = map[string]string{
	"username":            "username",
	"displayName":         "display_name",
	"avatar":              "avatar",
	"mobile":              "mobile",
	"bio":                 "bio",
	"location":            "location",
	"website":             "website",
	"notificationEnabled": "notification_enabled",
}

// UpdateProfile applies a partial update and returns the fresh row.
// Unknown fields are ignored rather than rejected.
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, fields map[string]interface{}) (*domain.User, error) {
	set := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields)+1)
	args = append(args, strings.TrimSpace(email))

	for name, value := range fields {
		col, ok := updatableColumns[name]
		if !ok {
			continue
		}
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if len(set) == 0 {
		return r.GetByEmail(ctx, email)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE lower(email)=lower($1) RETURNING `+userColumns, args...)
	return scanUser(row)
}

func (r *UserRepository) SetPassword(ctx context.Context, userID, passwordHash string, resetAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash=$2, last_reset_date=$3 WHERE id=$1`,
		userID, passwordHash, resetAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetLanguageOTP(ctx context.Context, userID, pendingLanguage, codeHash string, expiry time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET pending_language=$2, language_otp_hash=$3, language_otp_expiry=$4 WHERE id=$1`,
		userID, pendingLanguage, codeHash, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

// CompleteLanguageChange promotes the pending language and clears the OTP
// fields in one statement.
func (r *UserRepository) CompleteLanguageChange(ctx context.Context, userID, language string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET preferred_language=$2,
			pending_language=NULL, language_otp_hash=NULL, language_otp_expiry=NULL
		WHERE id=$1`, userID, language)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetSubscription(ctx context.Context, userID, plan string, start, expiry *time.Time, resetTweetCount bool) error {
	query := `UPDATE users SET subscription_plan=$2, subscription_start_date=$3, subscription_expiry_date=$4`
	if resetTweetCount {
		query += `, tweet_count=0`
	}
	query += ` WHERE id=$1`

	tag, err := r.db.Exec(ctx, query, userID, plan, start, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) IncrementTweetCount(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET tweet_count=tweet_count+1 WHERE id=$1`, userID)
	return err
}
