package logingate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/service/timewindow"
	"twiller-backend/internal/service/useragent"
	"twiller-backend/pkg/xerrors"
)

// Outcome of a gate check after credentials have already been verified.
type Outcome string

const (
	OutcomeRestricted        Outcome = "restricted"
	OutcomeAdmitted          Outcome = "admitted"
	OutcomeChallengeRequired Outcome = "challenge_required"
)

type Decision struct {
	Outcome Outcome
	Message string
	// Set when Outcome is OutcomeChallengeRequired.
	UserID string
	Email  string
	// Set when Outcome is OutcomeAdmitted.
	History *domain.LoginHistoryRecord
}

// ChallengeStore keeps the ephemeral login OTP state, keyed by user id.
// At most one challenge exists per user; Put replaces any pending one.
type ChallengeStore interface {
	Put(ctx context.Context, userID string, ch *domain.LoginChallenge, ttl time.Duration) error
	// Get returns nil without error when no challenge is pending.
	Get(ctx context.Context, userID string) (*domain.LoginChallenge, error)
	// ConsumeIf removes the challenge only if it is still the one passed in,
	// so a challenge is consumed exactly once even under concurrent verifies.
	ConsumeIf(ctx context.Context, userID string, ch *domain.LoginChallenge) (bool, error)
}

type HistoryRecorder interface {
	Record(ctx context.Context, rec *domain.LoginHistoryRecord) error
}

type CodeSender interface {
	SendLoginOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

// IssuanceLogger is an optional audit sink for issued challenges. It never
// sees the code itself.
type IssuanceLogger interface {
	LogIssued(ctx context.Context, userID, purpose, channel string, issuedAt, validUntil time.Time)
}

// Gate decides login disposition after credential verification succeeds.
// The mobile time restriction and the browser-based challenge are
// independent checks: a mobile Edge browser gets the time check and then
// skips the challenge.
type Gate struct {
	parser  useragent.Parser
	window  timewindow.Window
	store   ChallengeStore
	history HistoryRecorder
	sender  CodeSender
	audit   IssuanceLogger
	clock   timewindow.Clock
	ttl     time.Duration
	idgen   func() string
}

func NewGate(
	parser useragent.Parser,
	window timewindow.Window,
	store ChallengeStore,
	history HistoryRecorder,
	sender CodeSender,
	audit IssuanceLogger,
	clock timewindow.Clock,
	ttl time.Duration,
	idgen func() string,
) *Gate {
	return &Gate{
		parser:  parser,
		window:  window,
		store:   store,
		history: history,
		sender:  sender,
		audit:   audit,
		clock:   clock,
		ttl:     ttl,
		idgen:   idgen,
	}
}

func (g *Gate) classify(rawUA, ip string) domain.ClientInfo {
	browser, osName, device := g.parser.Parse(rawUA)
	return domain.ClientInfo{
		Browser:   browser,
		OS:        osName,
		Device:    device,
		IP:        ip,
		UserAgent: rawUA,
	}
}

func (g *Gate) historyRecord(userID string, client domain.ClientInfo, at time.Time) *domain.LoginHistoryRecord {
	return &domain.LoginHistoryRecord{
		ID:        g.idgen(),
		UserID:    userID,
		Browser:   client.Browser,
		OS:        client.OS,
		Device:    client.Device,
		IP:        client.IP,
		LoginTime: at,
	}
}

// Check classifies the request and decides among three outcomes: reject
// (time-restricted), admit directly with a history record, or issue an OTP
// challenge.
func (g *Gate) Check(ctx context.Context, user *domain.User, rawUA, ip string) (*Decision, error) {
	client := g.classify(rawUA, ip)
	now := g.clock.Now()

	if client.Device == domain.DeviceMobile && !g.window.Contains(now) {
		return &Decision{
			Outcome: OutcomeRestricted,
			Message: fmt.Sprintf("Mobile logins are allowed only between %s.", g.window.Describe()),
		}, nil
	}

	if strings.Contains(strings.ToLower(client.Browser), "edge") {
		rec := g.historyRecord(user.ID, client, now)
		if err := g.history.Record(ctx, rec); err != nil {
			return nil, err
		}
		return &Decision{Outcome: OutcomeAdmitted, History: rec}, nil
	}

	code := randomCode(6)
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	ch := &domain.LoginChallenge{
		Email:     user.Email,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(g.ttl),
	}
	if err := g.store.Put(ctx, user.ID, ch, g.ttl); err != nil {
		return nil, err
	}

	if g.audit != nil {
		g.audit.LogIssued(ctx, user.ID, "login", "email", now, ch.ExpiresAt)
	}

	if err := g.sender.SendLoginOTP(ctx, user.Email, code, g.ttl); err != nil {
		// The challenge is already persisted; a verify with the code learned
		// through another channel would still work.
		log.Printf("login OTP delivery failed for %s: %v", user.Email, err)
		return nil, fmt.Errorf("%w: %v", xerrors.ErrDeliveryFailure, err)
	}

	return &Decision{
		Outcome: OutcomeChallengeRequired,
		UserID:  user.ID,
		Email:   user.Email,
		Message: "OTP sent to your registered email. Please verify to complete login.",
	}, nil
}

// VerifyChallenge completes a pending challenge. On success it records a
// history entry built from this request's metadata, which may differ from
// the request that triggered the challenge.
func (g *Gate) VerifyChallenge(ctx context.Context, user *domain.User, code, rawUA, ip string) (*domain.LoginHistoryRecord, error) {
	ch, err := g.store.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, xerrors.ErrNoPendingChallenge
	}

	now := g.clock.Now()
	if now.After(ch.ExpiresAt) {
		_, _ = g.store.ConsumeIf(ctx, user.ID, ch)
		return nil, xerrors.ErrChallengeExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(ch.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		return nil, xerrors.ErrInvalidOTP
	}

	consumed, err := g.store.ConsumeIf(ctx, user.ID, ch)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// A concurrent verify won, or a new challenge replaced this one.
		return nil, xerrors.ErrNoPendingChallenge
	}

	rec := g.historyRecord(user.ID, g.classify(rawUA, ip), now)
	if err := g.history.Record(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
