package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiketbus/internal/cache"
	intconfig "tiketbus/internal/config"
	"tiketbus/internal/gateway"
	api "tiketbus/internal/http"
	"tiketbus/internal/queue"
	"tiketbus/internal/repositories"
	"tiketbus/internal/resilience"
	"tiketbus/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	authCache := cache.NewAuthCache(
		repositories.OperatorRepository{},
		repositories.CompanyRepository{},
		env.AuthCacheTTL,
	)

	audit := queue.NewAuditBatcher(repositories.AuditRepository{}, env.AuditBatchSize, env.AuditFlushInterval)
	defer audit.Stop()

	breaker := resilience.NewCircuitBreaker(env.BreakerFailureThreshold, env.BreakerSuccessThreshold, env.BreakerTimeout)
	payments := gateway.NewPaymentClient(env.PaymentAPIURL, env.PaymentAPIKey, env.PaymentTimeout)

	settlement := services.SettlementService{
		Gateway: payments,
		Breaker: breaker,
		Audit:   audit,
	}

	transfers := queue.NewTransferQueue(settlement, env.TransferBatchSize, env.TransferFlushInterval, env.TransferMaxRetries, env.TransferRetryBase)
	transfers.OnPermanentFailure = settlement.PermanentFailure
	defer transfers.Stop()

	limiter := resilience.NewRateLimiter(env.RateLimitMax, env.RateLimitWindow)
	defer limiter.Stop()

	r := api.NewRouter(api.Deps{
		Env:       env,
		AuthCache: authCache,
		Audit:     audit,
		Transfers: transfers,
		Breaker:   breaker,
		Limiter:   limiter,
		Gateway:   payments,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server berjalan di http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gagal menjalankan server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Mematikan server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Shutdown server gagal: %v", err)
	}

	log.Println("Server berhenti dengan aman.")
}
