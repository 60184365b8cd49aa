package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/service/brevo"
	"twiller-backend/internal/service/payment"
	"twiller-backend/internal/service/timewindow"
	"twiller-backend/pkg/id"
	"twiller-backend/pkg/xerrors"
)

const subscriptionDays = 30

// SubscriptionUsecase covers paid plan checkout plus the push notification
// opt-in that ships with it.
type SubscriptionUsecase struct {
	users    UserRepo
	pushSubs PushRepo
	payments payment.Provider
	mailer   Mailer
	clock    timewindow.Clock

	window    timewindow.Window
	clientURL string
}

func NewSubscriptionUsecase(
	users UserRepo,
	pushSubs PushRepo,
	payments payment.Provider,
	mailer Mailer,
	clock timewindow.Clock,
	window timewindow.Window,
	clientURL string,
) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		users:     users,
		pushSubs:  pushSubs,
		payments:  payments,
		mailer:    mailer,
		clock:     clock,
		window:    window,
		clientURL: clientURL,
	}
}

// CreateCheckout opens a payment session for a paid plan. Checkout is only
// available inside the configured window.
func (uc *SubscriptionUsecase) CreateCheckout(ctx context.Context, planName, email, origin string) (*payment.CheckoutSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, xerrors.ErrEmailRequired
	}
	if !uc.window.Contains(uc.clock.Now()) {
		return nil, fmt.Errorf("%w: payments are only accepted %s", xerrors.ErrPaymentWindowClosed, uc.window.Describe())
	}
	plan, ok := domain.PlanByName(planName)
	if !ok || plan.Price == 0 {
		return nil, xerrors.ErrInvalidPlan
	}

	clientURL := uc.clientURL
	if origin != "" {
		clientURL = origin
	}
	return uc.payments.CreateCheckoutSession(ctx, plan, email, clientURL)
}

// VerifyPayment confirms a checkout session was paid, activates the plan
// for thirty days with a fresh tweet counter, and emails the invoice.
func (uc *SubscriptionUsecase) VerifyPayment(ctx context.Context, sessionID, planName, email string) (*domain.User, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, xerrors.ErrSessionIDRequired
	}
	email = strings.ToLower(strings.TrimSpace(email))
	plan, ok := domain.PlanByName(planName)
	if !ok || plan.Price == 0 {
		return nil, xerrors.ErrInvalidPlan
	}

	status, err := uc.payments.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !status.Paid {
		return nil, xerrors.ErrPaymentNotComplete
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	expiry := now.AddDate(0, 0, subscriptionDays)
	if err := uc.users.SetSubscription(ctx, user.ID, plan.Name, &now, &expiry, true); err != nil {
		return nil, err
	}
	user.SubscriptionPlan = plan.Name
	user.SubscriptionStartDate = &now
	user.SubscriptionExpiryDate = &expiry
	user.TweetCount = 0

	limit := strconv.Itoa(plan.Limit)
	if plan.Limit == domain.UnlimitedTweets {
		limit = "Unlimited"
	}
	inv := brevo.InvoiceData{
		PlanName:      plan.Name,
		Amount:        plan.Price,
		InvoiceNumber: id.GenerateUUID("inv"),
		PaymentDate:   now.Format("02 Jan 2006"),
		ExpiryDate:    expiry.Format("02 Jan 2006"),
		TweetLimit:    limit,
	}
	// The plan is already active; invoice delivery failure should not fail
	// the verification.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.mailer.SendInvoice(ctx, user.Email, inv); err != nil {
			log.Printf("invoice delivery failed for %s: %v", user.Email, err)
		}
	}()

	return user, nil
}

// Subscribe stores a browser push subscription for the user.
func (uc *SubscriptionUsecase) Subscribe(ctx context.Context, userID string, sub domain.PushSubscription) error {
	if userID == "" || sub.Endpoint == "" {
		return xerrors.ErrInvalidRequest
	}
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return err
	}
	sub.UserID = userID
	return uc.pushSubs.Add(ctx, &sub)
}

func (uc *SubscriptionUsecase) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if userID == "" || endpoint == "" {
		return xerrors.ErrInvalidRequest
	}
	return uc.pushSubs.Remove(ctx, userID, endpoint)
}
