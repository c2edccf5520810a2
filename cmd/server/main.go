package main

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streampot/streampot/pkg/amountpkg"
	"github.com/streampot/streampot/pkg/configpkg"
	"github.com/streampot/streampot/pkg/metricspkg"

	"github.com/streampot/streampot/internal/drawscheduler"
	"github.com/streampot/streampot/internal/ledgerdelivery"
	"github.com/streampot/streampot/internal/ledgerservice"
	"github.com/streampot/streampot/internal/lotterydelivery"
	"github.com/streampot/streampot/internal/lotteryservice"
	"github.com/streampot/streampot/internal/middleware"
	"github.com/streampot/streampot/internal/staterepo"
)

// Repo is the persistence surface shared by both services.
type Repo interface {
	ledgerservice.Repo
	lotteryservice.Repo
}

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	repo, err := openRepo(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open state store")
	}

	server, err := createServer(repo, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	err = server.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

// openRepo selects the persistence backend. A redis backend that cannot be
// reached within the ping timeout falls back to the flat-file store so the
// service can still come up.
func openRepo(config configpkg.Config, logger zerolog.Logger) (Repo, error) {
	if config.StoreBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddress})

		ctx, cancel := context.WithTimeout(context.Background(), config.RedisPingTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err == nil {
			return staterepo.NewRepoRedis(client), nil
		}

		logger.Warn().
			Str("address", config.RedisAddress).
			Msg("redis unreachable, falling back to file store")
	}

	return staterepo.NewRepoFile(config.StateFilePath)
}

func createServer(repo Repo, logger zerolog.Logger, config configpkg.Config) (*gin.Engine, error) {
	ticketUnit, err := amountpkg.Parse(config.TicketUnit)
	if err != nil {
		return nil, errors.New("cannot parse ticket unit")
	}

	ledgerService := ledgerservice.New(repo)

	var lotteryService *lotteryservice.Service

	scheduler := drawscheduler.New(logger, func(poolID string) {
		lotteryService.HandleDrawDue(poolID)
	})

	lotteryService = lotteryservice.New(repo, ledgerService, scheduler, lotteryservice.Config{
		TicketUnit:       ticketUnit,
		MinPoolDuration:  config.MinPoolDuration,
		MaxPoolDuration:  config.MaxPoolDuration,
		DrawRetryBackoff: config.DrawRetryBackoff,
	}, logger)

	ctx := logger.WithContext(context.Background())

	if err := ledgerService.Recover(ctx); err != nil {
		return nil, errors.New("cannot recover accounts")
	}

	if err := lotteryService.Recover(ctx); err != nil {
		return nil, errors.New("cannot recover pools")
	}

	ledgerHandler := ledgerdelivery.NewHandler(ledgerService)
	lotteryHandler := lotterydelivery.NewHandler(lotteryService)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())

	server.GET("/accounts/:id/balance", ledgerHandler.Balance)
	server.POST("/accounts/:id/debit", ledgerHandler.Debit)
	server.POST("/accounts/:id/credit", ledgerHandler.Credit)
	server.POST("/accounts/:id/lock", ledgerHandler.Lock)
	server.POST("/transfers", ledgerHandler.Transfer)

	server.POST("/pools", lotteryHandler.Create)
	server.GET("/pools", lotteryHandler.List)
	server.GET("/pools/:id", lotteryHandler.Get)
	server.POST("/pools/:id/entries", lotteryHandler.Enter)
	server.POST("/pools/:id/cancel", lotteryHandler.Cancel)
	server.POST("/pools/:id/draw", lotteryHandler.Draw)
	server.GET("/pools/:id/entrants/:account", lotteryHandler.Entrant)
	server.POST("/pools/purge", lotteryHandler.Purge)

	server.GET("/metrics", gin.WrapH(metricspkg.Handler()))

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", lotterydelivery.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	return server, nil
}
