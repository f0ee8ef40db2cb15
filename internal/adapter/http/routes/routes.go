package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "bid_pricing/docs" // swag generated
	"bid_pricing/internal/adapter/http/handlers"
	"bid_pricing/internal/adapter/persistence/repository"
	"bid_pricing/internal/infrastructure/database"
	"bid_pricing/internal/infrastructure/itemstore"
	"bid_pricing/internal/infrastructure/metrics"
	"bid_pricing/internal/usecase"
	"bid_pricing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	defaultPort            = 8080
	defaultShutdownTimeout = 10 * time.Second
	defaultSessionIdleTTL  = 30 * time.Minute
)

var router = gin.Default()

// Run starts the server and blocks until SIGINT or SIGTERM. Pending bid
// total writes are flushed before it returns.
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	aggregate, closeDeps := getRoutes()
	defer closeDeps()

	srv := &http.Server{
		Addr:              ":" + getenvDefault("PORT", strconv.Itoa(defaultPort)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[server] listening addr=%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to startup the application: %v", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown failed err=%v", err)
	}
	aggregate.Flush(shutdownCtx)
	log.Printf("[server] stopped")
}

func getRoutes() (usecase.IAggregateSyncUseCase, func()) {
	ddb := database.ConnectDynamoDB()
	cache := database.ConnectSnapshotStore()
	syncMetrics := metrics.NewSyncMetrics()

	totalRepo := repository.NewBidTotalDynamoRepository(ddb)
	itemRepo := newItemRepository(ddb)

	aggregateUseCase := usecase.NewAggregateSyncUseCase(totalRepo, cache, syncMetrics, aggregateDebounce())
	itemUseCase := usecase.NewItemSyncUseCase(itemRepo, cache, aggregateUseCase, syncMetrics)

	itemHandler := handlers.NewBidItemHandler(itemUseCase)
	totalHandler := handlers.NewBidTotalHandler(aggregateUseCase)

	router.GET("/metrics", gin.WrapH(syncMetrics.Handler()))

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addBidRoutes(v1, itemHandler, totalHandler)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepIdleSessions(sweepCtx, sessionIdleTTL(), itemUseCase, aggregateUseCase)

	return aggregateUseCase, func() {
		stopSweep()
		if err := cache.Close(); err != nil {
			log.Printf("[snapshot][sqlite] close failed err=%v", err)
		}
	}
}

// newItemRepository picks the item store from ITEM_STORE_BACKEND.
func newItemRepository(ddb *dynamodb.Client) interfaces.IDemolitionItemRepository {
	switch backend := strings.ToLower(getenvDefault("ITEM_STORE_BACKEND", "dynamodb")); backend {
	case "http":
		timeout := time.Duration(getenvInt("ITEM_STORE_TIMEOUT_MS", int(itemstore.DefaultTimeout/time.Millisecond))) * time.Millisecond
		log.Printf("[server] item store backend=http base_url=%s timeout=%s", os.Getenv("ITEM_STORE_BASE_URL"), timeout)
		return itemstore.NewHTTPClient(os.Getenv("ITEM_STORE_BASE_URL"), timeout)
	case "dynamodb":
		return repository.NewDemolitionItemDynamoRepository(ddb)
	default:
		log.Printf("[server] unknown item store backend=%s; using dynamodb", backend)
		return repository.NewDemolitionItemDynamoRepository(ddb)
	}
}

func aggregateDebounce() time.Duration {
	ms := getenvInt("AGGREGATE_DEBOUNCE_MS", int(usecase.DefaultAggregateDebounce/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

func sessionIdleTTL() time.Duration {
	ms := getenvInt("SESSION_IDLE_TTL_MS", int(defaultSessionIdleTTL/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

type idleEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// sweepIdleSessions drops bid sessions idle for ttl until ctx is done. It
// checks every ttl/2.
func sweepIdleSessions(ctx context.Context, ttl time.Duration, evictors ...idleEvictor) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, e := range evictors {
				e.EvictIdle(ttl)
			}
		}
	}
}

func setMiddlewares() {
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(getenvDefault(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
