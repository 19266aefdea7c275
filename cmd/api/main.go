package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fusion/internal/auth"
	"fusion/internal/config"
	"fusion/internal/handler"
	"fusion/internal/infra/db"
	"fusion/internal/infra/invoice"
	"fusion/internal/infra/mailer"
	"fusion/internal/infra/messaging"
	"fusion/internal/infra/mongostore"
	"fusion/internal/infra/payment"
	infraRepo "fusion/internal/infra/repository"
	repo "fusion/internal/repository"
	"fusion/internal/server"
	"fusion/internal/usecase"
	"fusion/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// 保存先ごとのrepository一式
type stores struct {
	tx            repo.TransactionManager
	users         repo.UserRepository
	refreshTokens repo.RefreshTokenRepository
	products      repo.ProductRepository
	carts         repo.CartRepository
	orders        repo.OrderRepository
	addresses     repo.AddressRepository
	wishlists     repo.WishlistRepository
	auditLogs     repo.AuditLogRepository
	close         func()
}

func openPostgres(cfg config.Config) (*stores, error) {
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}

	return &stores{
		tx:            infraRepo.NewTxManagerGorm(gormDB),
		users:         infraRepo.NewUserGormRepository(gormDB),
		refreshTokens: infraRepo.NewRefreshTokenGormRepository(gormDB),
		products:      infraRepo.NewProductGormRepository(gormDB),
		carts:         infraRepo.NewCartGormRepository(gormDB),
		orders:        infraRepo.NewOrderGormRepository(gormDB),
		addresses:     infraRepo.NewAddressGormRepository(gormDB),
		wishlists:     infraRepo.NewWishlistGormRepository(gormDB),
		auditLogs:     infraRepo.NewAuditLogGormRepository(gormDB),
		close: func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config, logger echo.Logger) (*stores, error) {
	client, err := db.ConnectMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mdb := client.Database(cfg.MongoDB)
	if err := mongostore.EnsureIndexes(ctx, mdb); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if !cfg.MongoTransactions {
		logger.Warnf("MONGO_TRANSACTIONS=false: order insert and cart clear run without a transaction")
	}

	return &stores{
		tx:            mongostore.NewTxManager(client, mdb, cfg.MongoTransactions),
		users:         mongostore.NewUserRepository(mdb),
		refreshTokens: mongostore.NewRefreshTokenRepository(mdb),
		products:      mongostore.NewProductRepository(mdb),
		carts:         mongostore.NewCartRepository(mdb),
		orders:        mongostore.NewOrderRepository(mdb),
		addresses:     mongostore.NewAddressRepository(mdb),
		wishlists:     mongostore.NewWishlistRepository(mdb),
		auditLogs:     mongostore.NewAuditLogRepository(mdb),
		close: func() {
			_ = client.Disconnect(context.Background())
		},
	}, nil
}

func main() {
	// .envは任意（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	e := server.NewEcho(cfg)
	logger := e.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	var s *stores
	switch cfg.StoreDriver {
	case config.StorePostgres:
		s, err = openPostgres(cfg)
	default:
		s, err = openMongo(ctx, cfg, logger)
	}
	if err != nil {
		logger.Fatalf("store %s: %v", cfg.StoreDriver, err)
	}
	defer s.close()
	logger.Infof("store: %s", cfg.StoreDriver)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.RefreshTokenSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	// 注文イベント（ブローカー未設定なら送らない）
	var publisher usecase.OrderEventPublisher = messaging.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
	}

	// SMTP未設定ならリンクをログに出すだけ
	var mail usecase.Mailer = mailer.NewLogMailer(logger)
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	if cfg.RazorpayKeyID == "" {
		logger.Warnf("RAZORPAY_KEY_ID is not set: payment endpoints will fail")
	}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(s.carts, s.products, idGen, clock)
	orderUC := usecase.NewOrderUsecase(usecase.OrderDeps{
		Tx:        s.tx,
		Orders:    s.orders,
		Addresses: s.addresses,
		Carts:     s.carts,
		Users:     s.users,
		Publisher: publisher,
		Invoices:  invoice.NewPDFRenderer(),
		IDs:       idGen,
		Clock:     clock,
		Logger:    logger,
		Pricing:   cfg.OrderPricing,
	})
	adminOrderUC := usecase.NewAdminOrderUsecase(s.tx, s.orders, publisher, idGen, clock, logger)
	addressUC := usecase.NewAddressUsecase(s.addresses, idGen, clock)
	wishlistUC := usecase.NewWishlistUsecase(s.wishlists, s.products, clock)
	productUC := usecase.NewProductUsecase(s.tx, s.products, idGen, clock)
	auditLogUC := usecase.NewAuditLogUsecase(s.auditLogs)
	paymentUC := usecase.NewPaymentUsecase(payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), s.orders, idGen)
	authUC := usecase.NewAuthUsecase(usecase.AuthDeps{
		Users:         s.users,
		RefreshTokens: s.refreshTokens,
		AuditLogs:     s.auditLogs,
		Tokens:        tokens,
		Hasher:        hasher,
		Validator:     validator.NewAuthValidator(s.users),
		Mailer:        mail,
		IDs:           idGen,
		Clock:         clock,
		Logger:        logger,
		ResetURLBase:  cfg.ResetURLBase,
	})

	//Handler生成
	server.RegisterRoutes(e, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Address:      handler.NewAddressHandler(addressUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Payment:      handler.NewPaymentHandler(paymentUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminUser:    handler.NewAdminUserHandler(authUC),
		AdminAudit:   handler.NewAdminAuditLogHandler(auditLogUC),
	}, tokens, s.users)

	//Server起動
	if err := server.Start(ctx, e, cfg.Addr()); err != nil {
		logger.Errorf("server: %v", err)
	}
}
