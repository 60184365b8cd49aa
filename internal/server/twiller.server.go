package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"twiller-backend/internal/config"
	"twiller-backend/internal/handler"
	"twiller-backend/internal/migrations"
	"twiller-backend/internal/rate"
	"twiller-backend/internal/repository"
	"twiller-backend/internal/router"
	"twiller-backend/internal/service/brevo"
	"twiller-backend/internal/service/logingate"
	"twiller-backend/internal/service/media"
	"twiller-backend/internal/service/otp"
	"twiller-backend/internal/service/payment"
	"twiller-backend/internal/service/push"
	"twiller-backend/internal/service/timewindow"
	"twiller-backend/internal/service/useragent"
	"twiller-backend/internal/usecase"
	"twiller-backend/internal/ws"
	"twiller-backend/pkg/cache"
	"twiller-backend/pkg/id"
)

func runMigrations(connString string) error {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

// NewServer wires the whole backend and returns the HTTP server plus a
// cleanup func closing the shared pools.
func NewServer(cfg config.Config) (*http.Server, func()) {
	if err := runMigrations(cfg.DBConnString); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}

	kv := cache.NewCache([]string{cfg.RedisAddr}, cfg.RedisPass, false)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	sf, err := id.NewSnowflake(3)
	if err != nil {
		log.Fatalf("snowflake: %v", err)
	}

	clock := timewindow.SystemClock{}
	loginWindow, err := timewindow.New(cfg.Timezone, cfg.LoginWindowStart, cfg.LoginWindowEnd)
	if err != nil {
		log.Fatalf("login window: %v", err)
	}
	audioWindow, err := timewindow.New(cfg.Timezone, cfg.AudioWindowStart, cfg.AudioWindowEnd)
	if err != nil {
		log.Fatalf("audio window: %v", err)
	}
	paymentWindow, err := timewindow.New(cfg.Timezone, cfg.PaymentWindowStart, cfg.PaymentWindowEnd)
	if err != nil {
		log.Fatalf("payment window: %v", err)
	}

	userRepo := repository.NewUserRepository(dbpool)
	historyRepo := repository.NewLoginHistoryRepository(dbpool)
	tweetRepo := repository.NewTweetRepository(dbpool)
	pushRepo := repository.NewPushRepository(dbpool)
	otpRepo := repository.NewOTPRepository(dbpool, sf)

	mailer := brevo.NewMailer(brevo.NewClient(cfg.BrevoAPIKey, cfg.BrevoSenderID, cfg.BrevoSender))

	gate := logingate.NewGate(
		useragent.NewParser(),
		loginWindow,
		logingate.NewRedisChallengeStore(kv),
		historyRepo,
		mailer,
		otpRepo,
		clock,
		cfg.OTP_TTL,
		sf.Generate,
	)

	limiter := rate.NewLimiter(kv, cfg.OTP_Window, cfg.OTP_MaxPerWindow, cfg.OTP_Cooldown)
	otpSvc := otp.NewService(kv, limiter, mailer, otpRepo, cfg.OTP_TTL)

	storage, err := media.NewCloudinaryStorage(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	var pushSender push.Sender
	webPush := push.NewWebPushSender(cfg.VAPIDSubject, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	if webPush.Configured() {
		pushSender = webPush
	} else {
		log.Println("VAPID keys not set, push notifications disabled")
	}

	hub := ws.NewHub()
	go hub.Run()

	authUC := usecase.NewAuthUsecase(userRepo, historyRepo, gate, mailer, clock, sf.Generate, cfg.OTP_TTL, otp.RandomCode)
	tweetUC := usecase.NewTweetUsecase(tweetRepo, userRepo, pushRepo, pushSender, hub, otpSvc, storage, clock, sf.Generate, audioWindow, cfg.AudioMaxDuration)
	subUC := usecase.NewSubscriptionUsecase(userRepo, pushRepo, payment.NewStripeProvider(cfg.StripeSecretKey), mailer, clock, paymentWindow, cfg.ClientURL)

	h := handler.NewHandler(authUC, tweetUC, subUC, otpSvc, hub)

	r := chi.NewRouter()
	router.SetupRoutes(r, h, rdb)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	cleanup := func() {
		dbpool.Close()
		_ = rdb.Close()
	}
	return srv, cleanup
}
