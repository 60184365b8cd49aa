package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twiller-backend/internal/domain"
	"twiller-backend/pkg/xerrors"
)

const tweetColumns = `
	t.id, t.author_id, t.content, t.audio_url,
	t.likes, t.liked_by, t.retweets, t.retweeted_by, t.created_at`

type TweetRepository struct {
	db *pgxpool.Pool
}

func NewTweetRepository(db *pgxpool.Pool) *TweetRepository {
	return &TweetRepository{db: db}
}

func scanTweet(row pgx.Row) (*domain.Tweet, error) {
	var t domain.Tweet
	var id, authorID int64
	err := row.Scan(
		&id,
		&authorID,
		&t.Content,
		&t.AudioURL,
		&t.Likes,
		&t.LikedBy,
		&t.Retweets,
		&t.RetweetedBy,
		&t.Timestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrTweetNotFound
	}
	if err != nil {
		return nil, err
	}
	t.ID = strconv.FormatInt(id, 10)
	t.AuthorID = strconv.FormatInt(authorID, 10)
	if t.LikedBy == nil {
		t.LikedBy = []string{}
	}
	if t.RetweetedBy == nil {
		t.RetweetedBy = []string{}
	}
	return &t, nil
}

func (r *TweetRepository) Create(ctx context.Context, t *domain.Tweet) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tweets (id, author_id, content, audio_url, likes, liked_by, retweets, retweeted_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, t.ID, t.AuthorID, t.Content, t.AudioURL, t.Likes, t.LikedBy, t.Retweets, t.RetweetedBy, t.Timestamp)
	return err
}

func (r *TweetRepository) GetByID(ctx context.Context, id string) (*domain.Tweet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+tweetColumns+` FROM tweets t WHERE t.id=$1`, id)
	return scanTweet(row)
}

// ListAll returns the full feed newest-first with authors attached.
func (r *TweetRepository) ListAll(ctx context.Context) ([]*domain.Tweet, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tweetColumns+` FROM tweets t ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Tweet{}
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Like adds userID once; repeated likes are no-ops.
func (r *TweetRepository) Like(ctx context.Context, tweetID, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE tweets SET likes=likes+1, liked_by=array_append(liked_by, $2)
		WHERE id=$1 AND NOT ($2 = ANY(liked_by))
	`, tweetID, userID)
	return err
}

// Retweet adds userID once; repeated retweets are no-ops.
func (r *TweetRepository) Retweet(ctx context.Context, tweetID, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE tweets SET retweets=retweets+1, retweeted_by=array_append(retweeted_by, $2)
		WHERE id=$1 AND NOT ($2 = ANY(retweeted_by))
	`, tweetID, userID)
	return err
}
