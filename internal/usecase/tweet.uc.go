package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/service/media"
	"twiller-backend/internal/service/otp"
	"twiller-backend/internal/service/push"
	"twiller-backend/internal/service/timewindow"
	"twiller-backend/internal/ws"
	"twiller-backend/pkg/xerrors"
)

// Keywords that trigger a push notification to subscribed users when they
// appear in a new tweet.
var notifyKeywords = []string{"cricket", "science"}

type Broadcaster interface {
	Broadcast(msgType string, data interface{})
}

// TweetUsecase covers the feed, posting with plan quotas, reactions, and
// the OTP-gated audio upload.
type TweetUsecase struct {
	tweets     TweetRepo
	users      UserRepo
	pushSubs   PushRepo
	pushSender push.Sender
	hub        Broadcaster
	otp        *otp.Service
	storage    media.Storage
	clock      timewindow.Clock
	idgen      func() string

	audioWindow timewindow.Window
	audioMax    time.Duration
}

func NewTweetUsecase(
	tweets TweetRepo,
	users UserRepo,
	pushSubs PushRepo,
	pushSender push.Sender,
	hub Broadcaster,
	otpSvc *otp.Service,
	storage media.Storage,
	clock timewindow.Clock,
	idgen func() string,
	audioWindow timewindow.Window,
	audioMax time.Duration,
) *TweetUsecase {
	return &TweetUsecase{
		tweets:      tweets,
		users:       users,
		pushSubs:    pushSubs,
		pushSender:  pushSender,
		hub:         hub,
		otp:         otpSvc,
		storage:     storage,
		clock:       clock,
		idgen:       idgen,
		audioWindow: audioWindow,
		audioMax:    audioMax,
	}
}

// Post creates a tweet if the author's plan still allows one, bumps the
// cycle counter, and fans the tweet out to feed clients and keyword
// subscribers.
func (uc *TweetUsecase) Post(ctx context.Context, authorID, content, audioURL string) (*domain.Tweet, error) {
	if authorID == "" || (strings.TrimSpace(content) == "" && audioURL == "") {
		return nil, xerrors.ErrInvalidRequest
	}

	author, err := uc.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	plan, ok := domain.PlanByName(author.SubscriptionPlan)
	if !ok {
		plan = domain.SubscriptionPlans["Free"]
	}
	if !plan.AllowsTweet(author.TweetCount) {
		return nil, fmt.Errorf("%w: the %s plan allows %d tweet(s) per cycle; please upgrade to post more",
			xerrors.ErrTweetLimitReached, plan.Name, plan.Limit)
	}

	tweet := &domain.Tweet{
		ID:          uc.idgen(),
		AuthorID:    author.ID,
		Content:     content,
		AudioURL:    audioURL,
		LikedBy:     []string{},
		RetweetedBy: []string{},
		Timestamp:   uc.clock.Now(),
	}
	if err := uc.tweets.Create(ctx, tweet); err != nil {
		return nil, err
	}
	if err := uc.users.IncrementTweetCount(ctx, author.ID); err != nil {
		return nil, err
	}
	author.TweetCount++
	tweet.Author = author

	uc.hub.Broadcast(ws.MessageTypeNewTweet, tweet)

	if uc.matchesKeyword(content) {
		go uc.notifyKeywordSubscribers(tweet)
	}
	return tweet, nil
}

func (uc *TweetUsecase) matchesKeyword(content string) bool {
	lowered := strings.ToLower(content)
	for _, kw := range notifyKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func (uc *TweetUsecase) notifyKeywordSubscribers(tweet *domain.Tweet) {
	if uc.pushSender == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subs, err := uc.pushSubs.ListNotifiable(ctx, tweet.AuthorID)
	if err != nil {
		log.Printf("push: list subscribers: %v", err)
		return
	}

	author := tweet.AuthorID
	if tweet.Author != nil && tweet.Author.Username != "" {
		author = tweet.Author.Username
	}
	payload, err := json.Marshal(map[string]string{
		"title": "New tweet on Twiller",
		"body":  fmt.Sprintf("@%s tweeted: %s", author, truncate(tweet.Content, 80)),
		"url":   "/",
		"tag":   "keyword-tweet",
	})
	if err != nil {
		return
	}

	for _, sub := range subs {
		if err := uc.pushSender.Send(ctx, *sub, payload); err != nil {
			if err == push.ErrSubscriptionGone {
				_ = uc.pushSubs.RemoveEndpoint(ctx, sub.Endpoint)
				continue
			}
			log.Printf("push: send to %s: %v", sub.UserID, err)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Feed returns every tweet newest-first with authors attached.
func (uc *TweetUsecase) Feed(ctx context.Context) ([]*domain.Tweet, error) {
	tweets, err := uc.tweets.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]*domain.User)
	for _, t := range tweets {
		author, ok := authors[t.AuthorID]
		if !ok {
			author, err = uc.users.GetByID(ctx, t.AuthorID)
			if err != nil {
				// Orphaned tweet; leave Author nil rather than drop the row.
				authors[t.AuthorID] = nil
				continue
			}
			authors[t.AuthorID] = author
		}
		t.Author = author
	}
	return tweets, nil
}

func (uc *TweetUsecase) Like(ctx context.Context, tweetID, userID string) (*domain.Tweet, error) {
	if tweetID == "" || userID == "" {
		return nil, xerrors.ErrInvalidRequest
	}
	if err := uc.tweets.Like(ctx, tweetID, userID); err != nil {
		return nil, err
	}
	return uc.tweetWithAuthor(ctx, tweetID)
}

func (uc *TweetUsecase) Retweet(ctx context.Context, tweetID, userID string) (*domain.Tweet, error) {
	if tweetID == "" || userID == "" {
		return nil, xerrors.ErrInvalidRequest
	}
	if err := uc.tweets.Retweet(ctx, tweetID, userID); err != nil {
		return nil, err
	}
	return uc.tweetWithAuthor(ctx, tweetID)
}

func (uc *TweetUsecase) tweetWithAuthor(ctx context.Context, tweetID string) (*domain.Tweet, error) {
	tweet, err := uc.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if author, err := uc.users.GetByID(ctx, tweet.AuthorID); err == nil {
		tweet.Author = author
	}
	return tweet, nil
}

// UploadAudio accepts an audio file only inside the configured window,
// under the duration cap, and against a verified single-use passcode. The
// passcode is consumed before the upload starts.
func (uc *TweetUsecase) UploadAudio(ctx context.Context, email string, duration time.Duration, file io.Reader) (string, error) {
	if email == "" || file == nil {
		return "", xerrors.ErrInvalidRequest
	}
	if !uc.audioWindow.Contains(uc.clock.Now()) {
		return "", xerrors.ErrAudioWindowClosed
	}
	if err := uc.otp.IsVerified(ctx, email); err != nil {
		return "", err
	}
	if duration > uc.audioMax {
		return "", xerrors.ErrAudioTooLong
	}
	if err := uc.otp.ConsumeVerified(ctx, email); err != nil {
		return "", err
	}
	return uc.storage.UploadAudio(ctx, file, uc.idgen())
}
