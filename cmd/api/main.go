package main

import (
	"context"
	"crmsync/cmd/internal/config"
	"crmsync/cmd/internal/http/handler"
	"crmsync/cmd/internal/http/middleware"
	"crmsync/cmd/internal/http/router"
	"crmsync/cmd/internal/infrastructure/minhareceita"
	"crmsync/cmd/internal/infrastructure/ratelimit"
	"crmsync/cmd/internal/infrastructure/rdstation"
	"crmsync/cmd/internal/service"
	"crmsync/cmd/internal/service/jobs"
	"crmsync/cmd/internal/utils/uid"
	"crmsync/cmd/internal/utils/validators"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

const envVarsPrefix = "/crmsync/prod/"

func main() {
	// Loads env vars depending on environment
	if os.Getenv("GO_ENV") == "production" {
		loadProdEnv() // AWS SSM Parameter Store
	} else {
		// Loads from .env, if there is one
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("unable to load .env: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setLogLevel(cfg.LogLevel)
	uid.Init(cfg.NodeID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Clients
	crmClient := rdstation.NewClient(cfg.CRM)

	var registry service.RegistryClient
	if cfg.Receita.Enabled {
		registry = minhareceita.NewClient(cfg.Receita.BaseURL)
	}

	// Services
	formService := service.NewFormService(crmClient, registry, validators.New(), service.FormOptions{
		StrictCNPJ:     cfg.StrictCNPJ,
		RelinkContacts: cfg.CRM.RelinkContacts,
	})

	var formMiddleware []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		store := ratelimit.NewStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		go jobs.NewLimiterJanitor(store, cfg.RateLimit.CleanupEvery).Start(ctx)

		limiterCfg := &middleware.RateLimitConfig{Store: store}
		if cfg.Redis.Addr != "" {
			rdb := connectRedis(ctx, cfg.Redis)
			defer func() { _ = rdb.Close() }()
			limiterCfg.Stats = ratelimit.NewRedisStatsStore(rdb, cfg.Redis.StatsPrefix, 24*time.Hour)
		}
		formMiddleware = append(formMiddleware, middleware.NewRateLimitMiddleware(limiterCfg))
	}

	ipExtractor := echo.ExtractIPDirect()
	if cfg.TrustProxyHeaders {
		ipExtractor = echo.ExtractIPFromXFFHeader()
	}

	e := router.New(router.Options{
		FormRoute:          handler.NewFormRoute(formService),
		FormMiddleware:     formMiddleware,
		RequestIDGenerator: uid.RequestID,
		IPExtractor:        ipExtractor,
	})

	logConfig(cfg)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to shut down cleanly: %v", err)
		}
	}()

	if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("redis stats ping error: %v", err)
	}
	return rdb
}

func loadProdEnv() {
	ctx := context.Background()
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	client := ssm.NewFromConfig(cfg)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	prefixLength := len(envVarsPrefix)
	count := 0
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			log.Fatalf("unable to load prod environment, %v", err)
		}

		// Export vars
		for _, param := range out.Parameters {
			key := (*param.Name)[prefixLength:]
			if enverr := os.Setenv(key, *param.Value); enverr != nil {
				log.Fatalf("unable to set environment variable, %v", enverr)
			}
			count++
		}
	}
	log.Debugf("loaded %d prod environment variables", count)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DEBUG)
	case "warn":
		log.SetLevel(log.WARN)
	case "error":
		log.SetLevel(log.ERROR)
	default:
		log.SetLevel(log.INFO)
	}
}

func logConfig(cfg *config.Config) {
	log.Infof("crm: baseURL=%s scanLimit=%d relinkContacts=%v dealField=%q",
		cfg.CRM.BaseURL, cfg.CRM.ScanLimit, cfg.CRM.RelinkContacts, cfg.CRM.DealCNPJFieldID)
	log.Infof("form: strictCNPJ=%v receitaLookup=%v", cfg.StrictCNPJ, cfg.Receita.Enabled)
	log.Infof("rate: enabled=%v rps=%.3f burst=%d redisStats=%v trustProxy=%v",
		cfg.RateLimit.Enabled, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.Redis.Addr != "", cfg.TrustProxyHeaders)
}
