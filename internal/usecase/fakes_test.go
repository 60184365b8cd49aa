package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/service/brevo"
	"twiller-backend/internal/service/payment"
	"twiller-backend/pkg/xerrors"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func seqIDGen() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// ---- users ----

type fakeUserRepo struct {
	users map[string]*domain.User // by id

	setPasswordCalls int
	lastPasswordHash string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByIdentity(_ context.Context, identity string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == identity || (u.Mobile != "" && u.Mobile == identity) {
			return u, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return xerrors.ErrUserAlreadyExists
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, email string, fields map[string]interface{}) (*domain.User, error) {
	u, err := r.GetByEmail(context.Background(), email)
	if err != nil {
		return nil, err
	}
	if bio, ok := fields["bio"].(string); ok {
		u.Bio = bio
	}
	if mobile, ok := fields["mobile"].(string); ok {
		u.Mobile = mobile
	}
	return u, nil
}

func (r *fakeUserRepo) SetPassword(_ context.Context, userID, passwordHash string, resetAt time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	t := resetAt
	u.LastResetDate = &t
	r.setPasswordCalls++
	r.lastPasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) SetLanguageOTP(_ context.Context, userID, pendingLanguage, codeHash string, expiry time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	lang, hash, exp := pendingLanguage, codeHash, expiry
	u.PendingLanguage = &lang
	u.LanguageOTPHash = &hash
	u.LanguageOTPExpiry = &exp
	return nil
}

func (r *fakeUserRepo) CompleteLanguageChange(_ context.Context, userID, language string) error {
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.PreferredLanguage = language
	u.PendingLanguage = nil
	u.LanguageOTPHash = nil
	u.LanguageOTPExpiry = nil
	return nil
}

func (r *fakeUserRepo) SetSubscription(_ context.Context, userID, plan string, start, expiry *time.Time, resetTweetCount bool) error {
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.SubscriptionPlan = plan
	u.SubscriptionStartDate = start
	u.SubscriptionExpiryDate = expiry
	if resetTweetCount {
		u.TweetCount = 0
	}
	return nil
}

func (r *fakeUserRepo) IncrementTweetCount(_ context.Context, userID string) error {
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.TweetCount++
	return nil
}

// ---- login history ----

type fakeHistoryRepo struct {
	records []*domain.LoginHistoryRecord
}

func (r *fakeHistoryRepo) Record(_ context.Context, rec *domain.LoginHistoryRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeHistoryRepo) ListByUser(_ context.Context, userID string) ([]*domain.LoginHistoryRecord, error) {
	var out []*domain.LoginHistoryRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ---- mailer ----

type sentMessage struct {
	kind string
	to   string
	code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

// The invoice mail goes out on a goroutine, so the fake locks.
func (m *fakeMailer) record(kind, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{kind: kind, to: to, code: code})
	return nil
}

func (m *fakeMailer) SendLoginOTP(_ context.Context, email, code string, _ time.Duration) error {
	return m.record("login_otp", email, code)
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email, newPassword string) error {
	return m.record("password_reset", email, newPassword)
}

func (m *fakeMailer) SendInvoice(_ context.Context, email string, _ brevo.InvoiceData) error {
	return m.record("invoice", email, "")
}

func (m *fakeMailer) SendLanguageOTP(_ context.Context, email, code string, _ time.Duration) error {
	return m.record("language_email", email, code)
}

func (m *fakeMailer) SendLanguageSMS(_ context.Context, mobile, code string, _ time.Duration) error {
	return m.record("language_sms", mobile, code)
}

func (m *fakeMailer) last() sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMessage{}
	}
	return m.sent[len(m.sent)-1]
}

// ---- login challenge store ----

type fakeChallengeStore struct {
	challenges map[string]*domain.LoginChallenge
}

func newFakeChallengeStore() *fakeChallengeStore {
	return &fakeChallengeStore{challenges: make(map[string]*domain.LoginChallenge)}
}

func (s *fakeChallengeStore) Put(_ context.Context, userID string, ch *domain.LoginChallenge, _ time.Duration) error {
	s.challenges[userID] = ch
	return nil
}

func (s *fakeChallengeStore) Get(_ context.Context, userID string) (*domain.LoginChallenge, error) {
	return s.challenges[userID], nil
}

func (s *fakeChallengeStore) ConsumeIf(_ context.Context, userID string, ch *domain.LoginChallenge) (bool, error) {
	cur, ok := s.challenges[userID]
	if !ok || cur.CodeHash != ch.CodeHash {
		return false, nil
	}
	delete(s.challenges, userID)
	return true, nil
}

// ---- user agent ----

type fakeParser struct {
	browser string
	device  domain.DeviceClass
}

func (p fakeParser) Parse(string) (string, string, domain.DeviceClass) {
	return p.browser, "TestOS", p.device
}

// ---- tweets ----

type fakeTweetRepo struct {
	tweets map[string]*domain.Tweet
	order  []string
}

func newFakeTweetRepo() *fakeTweetRepo {
	return &fakeTweetRepo{tweets: make(map[string]*domain.Tweet)}
}

func (r *fakeTweetRepo) Create(_ context.Context, t *domain.Tweet) error {
	r.tweets[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *fakeTweetRepo) GetByID(_ context.Context, id string) (*domain.Tweet, error) {
	if t, ok := r.tweets[id]; ok {
		return t, nil
	}
	return nil, xerrors.ErrTweetNotFound
}

func (r *fakeTweetRepo) ListAll(_ context.Context) ([]*domain.Tweet, error) {
	out := make([]*domain.Tweet, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.tweets[r.order[i]])
	}
	return out, nil
}

func (r *fakeTweetRepo) Like(_ context.Context, tweetID, userID string) error {
	t, ok := r.tweets[tweetID]
	if !ok {
		return xerrors.ErrTweetNotFound
	}
	for _, id := range t.LikedBy {
		if id == userID {
			return nil
		}
	}
	t.LikedBy = append(t.LikedBy, userID)
	t.Likes++
	return nil
}

func (r *fakeTweetRepo) Retweet(_ context.Context, tweetID, userID string) error {
	t, ok := r.tweets[tweetID]
	if !ok {
		return xerrors.ErrTweetNotFound
	}
	for _, id := range t.RetweetedBy {
		if id == userID {
			return nil
		}
	}
	t.RetweetedBy = append(t.RetweetedBy, userID)
	t.Retweets++
	return nil
}

// ---- push ----

type fakePushRepo struct {
	subs []*domain.PushSubscription
}

func (r *fakePushRepo) Add(_ context.Context, sub *domain.PushSubscription) error {
	for _, s := range r.subs {
		if s.Endpoint == sub.Endpoint {
			return nil
		}
	}
	r.subs = append(r.subs, sub)
	return nil
}

func (r *fakePushRepo) Remove(_ context.Context, userID, endpoint string) error {
	out := r.subs[:0]
	for _, s := range r.subs {
		if !(s.UserID == userID && s.Endpoint == endpoint) {
			out = append(out, s)
		}
	}
	r.subs = out
	return nil
}

func (r *fakePushRepo) RemoveEndpoint(_ context.Context, endpoint string) error {
	out := r.subs[:0]
	for _, s := range r.subs {
		if s.Endpoint != endpoint {
			out = append(out, s)
		}
	}
	r.subs = out
	return nil
}

func (r *fakePushRepo) ListNotifiable(_ context.Context, excludeUserID string) ([]*domain.PushSubscription, error) {
	var out []*domain.PushSubscription
	for _, s := range r.subs {
		if s.UserID != excludeUserID {
			out = append(out, s)
		}
	}
	return out, nil
}

// ---- broadcast ----

type fakeBroadcaster struct {
	events []string
}

func (b *fakeBroadcaster) Broadcast(msgType string, _ interface{}) {
	b.events = append(b.events, msgType)
}

// ---- payments ----

type fakePayments struct {
	paid      bool
	retrieved string
	session   *payment.CheckoutSession
}

func (p *fakePayments) CreateCheckoutSession(_ context.Context, plan domain.SubscriptionPlan, email, clientURL string) (*payment.CheckoutSession, error) {
	p.session = &payment.CheckoutSession{
		ID:  "cs_test_" + plan.Name,
		URL: clientURL + "/checkout/" + plan.Name,
	}
	return p.session, nil
}

func (p *fakePayments) RetrieveSession(_ context.Context, sessionID string) (*payment.SessionStatus, error) {
	p.retrieved = sessionID
	return &payment.SessionStatus{ID: sessionID, Paid: p.paid}, nil
}
