package http

import (
	"net/http"
	"time"

	"github.com/MikeRez0/tutorpay/internal/adapter/config"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.App,
	tokenService port.TokenService,
	paymentHandler *PaymentHandler,
	walletHandler *WalletHandler,
	adminHandler *AdminHandler,
	logger *zap.Logger) (*Router, error) {

	if conf.Mode == config.AppModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	h := NewHandler(logger)

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		// called by the gateway, authenticated by its hash only
		api.POST("/payments/notify", paymentHandler.Notify)

		authed := api.Group("", h.authCheck(tokenService))

		authed.POST("/payments/checkout", paymentHandler.Checkout)

		wallet := authed.Group("/wallet", h.requireRoles(domain.RoleTutor))
		{
			wallet.GET("/balance", walletHandler.Balance)
			wallet.POST("/withdrawals", walletHandler.RequestWithdrawal)
			wallet.GET("/withdrawals", walletHandler.ListWithdrawals)
		}

		admin := authed.Group("/admin", h.requireRoles(domain.RoleAdmin, domain.RoleSuperAdmin))
		{
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.GET("/withdrawals/summary", adminHandler.WithdrawalSummary)
			admin.POST("/withdrawals/:id/decision", adminHandler.Decide)
			admin.POST("/withdrawals/:id/payout", adminHandler.Payout)
			admin.GET("/revenue", adminHandler.Revenue)
			admin.POST("/modules", adminHandler.RegisterModule)
		}
	}

	return &Router{router}, nil
}

// Server wraps the router into an http.Server listening on listenAddr.
func (r *Router) Server(listenAddr string) *http.Server {
	return &http.Server{
		Addr:              listenAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
