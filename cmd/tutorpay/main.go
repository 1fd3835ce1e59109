package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeRez0/tutorpay/internal/adapter/alert"
	"github.com/MikeRez0/tutorpay/internal/adapter/auth"
	"github.com/MikeRez0/tutorpay/internal/adapter/cache"
	"github.com/MikeRez0/tutorpay/internal/adapter/client/disbursement"
	"github.com/MikeRez0/tutorpay/internal/adapter/config"
	"github.com/MikeRez0/tutorpay/internal/adapter/event"
	handler "github.com/MikeRez0/tutorpay/internal/adapter/handler/http"
	"github.com/MikeRez0/tutorpay/internal/adapter/logger"
	"github.com/MikeRez0/tutorpay/internal/adapter/storage"
	"github.com/MikeRez0/tutorpay/internal/adapter/storage/memory"
	"github.com/MikeRez0/tutorpay/internal/adapter/storage/repository"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/MikeRez0/tutorpay/internal/core/service"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log, err := logger.NewLogger(conf.App)
	if err != nil {
		fmt.Printf("error creating log: %s", err)
		return
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	develop := conf.App.Mode == config.AppModeDevelop

	var repo port.Repository
	if conf.Database.DSN == "" {
		if !develop {
			log.Error("database is not configured")
			return
		}
		log.Warn("Database is not configured, using in-memory storage")
		repo = memory.NewRepository()
	} else {
		db, err := storage.NewDBStorage(ctx, conf.Database)
		if err != nil {
			log.Error("database error", zap.Error(err))
			return
		}
		defer db.Close()

		err = db.RunMigrations()
		if err != nil {
			log.Error("database migration error", zap.Error(err))
			return
		}

		repo, err = repository.NewRepository(db)
		if err != nil {
			log.Error("repository creating error", zap.Error(err))
			return
		}
	}

	var notifyCache port.NotifyCache
	var alerter port.Alerter
	if conf.Redis.Addr == "" {
		log.Warn("Redis is not configured, notify cache is local and alerts are only logged")
		notifyCache = cache.NewLocal()
		alerter = alert.NewLogger(log.Named("alert"))
	} else {
		rdb, err := cache.ConnectRedis(ctx, conf.Redis)
		if err != nil {
			log.Error("redis error", zap.Error(err))
			return
		}
		defer func() { _ = rdb.Close() }()
		notifyCache = cache.NewNotifyCache(rdb, conf.Redis.NotifyTTL)

		queue := alert.NewQueue(conf.Redis)
		defer func() { _ = queue.Close() }()
		alerter = queue

		processor := alert.NewProcessor(conf.Redis, log.Named("alert"))
		if err := processor.Start(); err != nil {
			log.Error("alert processor start error", zap.Error(err))
			return
		}
		defer processor.Shutdown()
	}

	var publisher port.EventPublisher
	if conf.RabbitMQ.URL == "" {
		publisher = event.NewLogger(log.Named("event"))
	} else {
		producer, err := event.NewProducer(conf.RabbitMQ, log.Named("event"))
		if err != nil {
			log.Error("rabbitmq error", zap.Error(err))
			return
		}
		defer producer.Close()
		publisher = producer
	}

	tokenService, err := auth.New(conf.Auth)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	var disburser port.Disburser
	if conf.Disbursement.HostString == "" && develop {
		log.Warn("Disbursement channel is not configured, payouts are simulated")
		disburser = disbursement.NewSimulated(log.Named("disbursement"))
	} else {
		disburser, err = disbursement.NewClient(conf.Disbursement, log.Named("disbursement"))
		if err != nil {
			log.Error("disbursement client creating error", zap.Error(err))
			return
		}
	}

	feePercent, err := decimal.Parse(conf.Gateway.PlatformFeePercent)
	if err != nil {
		log.Error("platform fee percent is not a number", zap.Error(err))
		return
	}

	walletService, err := service.NewWalletService(repo, publisher, log.Named("wallet"))
	if err != nil {
		log.Error("wallet service creating error", zap.Error(err))
		return
	}
	paymentService, err := service.NewPaymentService(repo, walletService, notifyCache, alerter, publisher,
		service.GatewayOptions{
			MerchantID:         conf.Gateway.MerchantID,
			MerchantSecret:     conf.Gateway.MerchantSecret,
			Currency:           conf.Gateway.Currency,
			CheckoutURL:        conf.Gateway.CheckoutURL,
			ReturnURL:          conf.Gateway.ReturnURL,
			CancelURL:          conf.Gateway.CancelURL,
			NotifyURL:          conf.Gateway.NotifyURL,
			NotifyTimeout:      conf.Gateway.NotifyTimeout,
			PlatformFeePercent: feePercent,
			PayoutPolicy:       domain.PayoutPolicy(conf.Gateway.PayoutPolicy),
		}, log.Named("payment"))
	if err != nil {
		log.Error("payment service creating error", zap.Error(err))
		return
	}

	scheduler := disbursement.NewScheduler(ctx, conf.Disbursement.RetryDelay, log.Named("payout"))
	approvalService, err := service.NewApprovalService(repo, walletService, disburser, scheduler, publisher,
		log.Named("approval"))
	if err != nil {
		log.Error("approval service creating error", zap.Error(err))
		return
	}

	scheduler.StartWorkers(approvalService, conf.Disbursement.Workers)
	recalled, err := disbursement.RecallPayouts(ctx, repo, scheduler)
	if err != nil {
		log.Error("recall payouts error", zap.Error(err))
		return
	}
	if recalled > 0 {
		log.Info("Unpaid withdrawals queued for payout", zap.Int("count", recalled))
	}

	paymentHandler, err := handler.NewPaymentHandler(paymentService, log.Named("payment handler"))
	if err != nil {
		log.Error("payment handler creating error", zap.Error(err))
		return
	}
	walletHandler, err := handler.NewWalletHandler(walletService, log.Named("wallet handler"))
	if err != nil {
		log.Error("wallet handler creating error", zap.Error(err))
		return
	}
	adminHandler, err := handler.NewAdminHandler(walletService, approvalService, paymentService,
		log.Named("admin handler"))
	if err != nil {
		log.Error("admin handler creating error", zap.Error(err))
		return
	}

	r, err := handler.NewRouter(conf.App, tokenService, paymentHandler, walletHandler, adminHandler,
		log.Named("router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	server := r.Server(conf.HTTP.HostString)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Listening", zap.String("address", conf.HTTP.HostString))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("router serve error", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
}
