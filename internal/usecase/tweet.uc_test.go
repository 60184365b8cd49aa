package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/rate"
	"twiller-backend/internal/service/otp"
	"twiller-backend/internal/service/timewindow"
	"twiller-backend/internal/ws"
	"twiller-backend/pkg/xerrors"
)

type memKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *memKV) Set(_ context.Context, ns, k string, value interface{}, ttl time.Duration) error {
	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		s = fmt.Sprintf("%v", v)
	}
	f.values[ns+":"+k] = s
	f.ttls[ns+":"+k] = ttl
	return nil
}

func (f *memKV) Get(_ context.Context, ns, k string) (string, error) {
	v, ok := f.values[ns+":"+k]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *memKV) Delete(_ context.Context, ns, k string) error {
	delete(f.values, ns+":"+k)
	return nil
}

func (f *memKV) GetTTL(_ context.Context, ns, k string) (time.Duration, error) {
	return f.ttls[ns+":"+k], nil
}

func (f *memKV) IncrWithExpire(_ context.Context, ns, k string, _ time.Duration) (int64, error) {
	f.values[ns+":"+k] += "x"
	return int64(len(f.values[ns+":"+k])), nil
}

type fakeStorage struct {
	uploads int
	lastURL string
}

func (s *fakeStorage) UploadAudio(_ context.Context, _ io.Reader, name string) (string, error) {
	s.uploads++
	s.lastURL = "https://cdn.example.com/twiller_audio/" + name + ".mp3"
	return s.lastURL, nil
}

type noopSender struct{}

func (noopSender) SendUploadOTP(context.Context, string, string, time.Duration) error { return nil }

type tweetFixture struct {
	uc      *TweetUsecase
	users   *fakeUserRepo
	tweets  *fakeTweetRepo
	hub     *fakeBroadcaster
	storage *fakeStorage
	otp     *otp.Service
	kv      *memKV
}

func newTweetFixture(t *testing.T, at time.Time, users ...*domain.User) *tweetFixture {
	t.Helper()

	window, err := timewindow.New("UTC", 14, 19)
	require.NoError(t, err)

	kv := newMemKV()
	otpSvc := otp.NewService(kv, rate.NewLimiter(kv, 10*time.Minute, 5, time.Minute), noopSender{}, nil, 5*time.Minute)

	f := &tweetFixture{
		users:   newFakeUserRepo(users...),
		tweets:  newFakeTweetRepo(),
		hub:     &fakeBroadcaster{},
		storage: &fakeStorage{},
		otp:     otpSvc,
		kv:      kv,
	}
	f.uc = NewTweetUsecase(f.tweets, f.users, &fakePushRepo{}, nil, f.hub, otpSvc, f.storage,
		fixedClock{t: at}, seqIDGen(), window, 5*time.Minute)
	return f
}

func audioTime() time.Time {
	return time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
}

func TestPostEnforcesPlanQuota(t *testing.T) {
	cases := []struct {
		plan    string
		count   int
		allowed bool
	}{
		{"Free", 0, true},
		{"Free", 1, false},
		{"Bronze", 2, true},
		{"Bronze", 3, false},
		{"Silver", 4, true},
		{"Silver", 5, false},
		{"Gold", 10000, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s with %d tweets", tc.plan, tc.count), func(t *testing.T) {
			user := &domain.User{ID: "u1", Email: "a@b.com", SubscriptionPlan: tc.plan, TweetCount: tc.count}
			f := newTweetFixture(t, audioTime(), user)

			_, err := f.uc.Post(context.Background(), "u1", "hello world", "")
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, xerrors.ErrTweetLimitReached)
			}
		})
	}
}

func TestPostCreatesAndBroadcasts(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice", Email: "a@b.com", SubscriptionPlan: "Gold"}
	f := newTweetFixture(t, audioTime(), user)

	tweet, err := f.uc.Post(context.Background(), "u1", "hello world", "")
	require.NoError(t, err)

	assert.Equal(t, "u1", tweet.AuthorID)
	require.NotNil(t, tweet.Author)
	assert.Equal(t, "alice", tweet.Author.Username)
	assert.Equal(t, 1, user.TweetCount)
	assert.Equal(t, []string{ws.MessageTypeNewTweet}, f.hub.events)
}

func TestPostRejectsEmpty(t *testing.T) {
	f := newTweetFixture(t, audioTime(), &domain.User{ID: "u1", SubscriptionPlan: "Gold"})

	_, err := f.uc.Post(context.Background(), "u1", "   ", "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidRequest)

	_, err = f.uc.Post(context.Background(), "u1", "", "https://cdn.example.com/a.mp3")
	assert.NoError(t, err, "audio-only tweets are fine")
}

func TestFeedPopulatesAuthors(t *testing.T) {
	alice := &domain.User{ID: "u1", Username: "alice", SubscriptionPlan: "Gold"}
	bob := &domain.User{ID: "u2", Username: "bob", SubscriptionPlan: "Gold"}
	f := newTweetFixture(t, audioTime(), alice, bob)

	_, err := f.uc.Post(context.Background(), "u1", "first", "")
	require.NoError(t, err)
	_, err = f.uc.Post(context.Background(), "u2", "second", "")
	require.NoError(t, err)

	feed, err := f.uc.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "second", feed[0].Content, "newest first")
	assert.Equal(t, "bob", feed[0].Author.Username)
	assert.Equal(t, "alice", feed[1].Author.Username)
}

func TestLikeAndRetweetAreIdempotent(t *testing.T) {
	alice := &domain.User{ID: "u1", Username: "alice", SubscriptionPlan: "Gold"}
	f := newTweetFixture(t, audioTime(), alice)
	tweet, err := f.uc.Post(context.Background(), "u1", "hello", "")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := f.uc.Like(context.Background(), tweet.ID, "u9")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Likes)
		assert.Equal(t, []string{"u9"}, got.LikedBy)
	}

	for i := 0; i < 2; i++ {
		got, err := f.uc.Retweet(context.Background(), tweet.ID, "u9")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Retweets)
	}

	_, err = f.uc.Like(context.Background(), "missing", "u9")
	assert.ErrorIs(t, err, xerrors.ErrTweetNotFound)
}

func TestUploadAudio(t *testing.T) {
	const email = "alice@example.com"

	// Requests a code and verifies it, reading the code out of the store the
	// way the user would out of the email.
	verifyCode := func(t *testing.T, f *tweetFixture) {
		t.Helper()
		_, err := f.otp.Request(context.Background(), email)
		require.NoError(t, err)

		raw, err := f.kv.Get(context.Background(), "upload_otp", email)
		require.NoError(t, err)
		var entry domain.OneTimePasscode
		require.NoError(t, json.Unmarshal([]byte(raw), &entry))
		require.NoError(t, f.otp.Verify(context.Background(), email, entry.Code))
	}

	t.Run("outside the window", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
		f := newTweetFixture(t, at, &domain.User{ID: "u1", Email: email})

		_, err := f.uc.UploadAudio(context.Background(), email, time.Minute, strings.NewReader("audio"))
		assert.ErrorIs(t, err, xerrors.ErrAudioWindowClosed)
	})

	t.Run("without a verified code", func(t *testing.T) {
		f := newTweetFixture(t, audioTime(), &domain.User{ID: "u1", Email: email})

		_, err := f.uc.UploadAudio(context.Background(), email, time.Minute, strings.NewReader("audio"))
		assert.ErrorIs(t, err, xerrors.ErrOTPNotVerified)
		assert.Zero(t, f.storage.uploads)
	})

	t.Run("too long keeps the code for a retry", func(t *testing.T) {
		f := newTweetFixture(t, audioTime(), &domain.User{ID: "u1", Email: email})
		verifyCode(t, f)

		_, err := f.uc.UploadAudio(context.Background(), email, 6*time.Minute, strings.NewReader("audio"))
		assert.ErrorIs(t, err, xerrors.ErrAudioTooLong)
		assert.Zero(t, f.storage.uploads)
		assert.NoError(t, f.otp.IsVerified(context.Background(), email))
	})

	t.Run("verified code is consumed by the upload", func(t *testing.T) {
		f := newTweetFixture(t, audioTime(), &domain.User{ID: "u1", Email: email})
		verifyCode(t, f)

		url, err := f.uc.UploadAudio(context.Background(), email, 4*time.Minute, strings.NewReader("audio"))
		require.NoError(t, err)
		assert.Equal(t, f.storage.lastURL, url)
		assert.Equal(t, 1, f.storage.uploads)

		_, err = f.uc.UploadAudio(context.Background(), email, time.Minute, strings.NewReader("audio"))
		assert.ErrorIs(t, err, xerrors.ErrOTPNotVerified, "second upload needs a fresh code")
	})
}
