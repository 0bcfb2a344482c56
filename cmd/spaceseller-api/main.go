// README: Entry point; loads config, wires services, starts the HTTP server and shuts down gracefully.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/config"
	httptransport "github.com/npsfilm/spaceseller-36983-sub001/internal/http"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/infra"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/maps"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/catalog"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/matching"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/notification"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/order"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/reliability"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/wizard"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := infra.NewLogger(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	tp, err := infra.NewTracerProvider("spaceseller-api", cfg.Tracing.JaegerEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("init tracing")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	pricingSvc := pricing.NewService(decimal.NewFromFloat(cfg.Pricing.TaxRate))
	catalogSvc := catalog.NewService(catalog.NewStore(dbPool), redisClient)

	matchingSvc := matching.NewService(matching.NewStore(redisClient), matching.TravelRule{
		IncludedKm: cfg.Eligibility.IncludedKm,
		PerKmRate:  decimal.NewFromFloat(cfg.Eligibility.PerKmRate),
	})

	var publisher *notification.Publisher
	kafkaWriter := infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if kafkaWriter != nil {
		publisher = notification.NewPublisher(kafkaWriter)
	} else {
		logger.Warn().Msg("no kafka brokers configured, order events are not published")
	}
	notificationSvc := notification.NewService(notification.NewStore(dbPool), publisher)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore)
	submitter := order.NewSubmitter(orderStore, catalogSvc, notificationSvc, pricingSvc)

	deps := wizard.Deps{
		Drafts:      orderSvc,
		DraftWriter: orderStore,
		Eligibility: matchingSvc,
		Submitter:   submitter,
		Pricing:     pricingSvc,
	}
	if cfg.Maps.APIKey != "" {
		geocoder, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("init geocoder")
		}
		deps.Geocoder = geocoder
	} else {
		logger.Warn().Msg("no maps api key, locations are validated from client coordinates")
	}
	wizardMgr := wizard.NewManager(deps, wizard.Options{
		AutosaveEnabled: cfg.Autosave.Enabled,
		Autosave: order.AutosaveOptions{
			InitialDelay: cfg.Autosave.InitialDelay,
			Interval:     cfg.Autosave.Interval,
		},
		MaxRadiusKm: cfg.Eligibility.MaxRadiusKm,
	})

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Wizard:      wizardMgr,
		Reliability: reliability.NewService(reliability.NewStore(dbPool)),
		Matching:    matchingSvc,
		Logger:      logger,
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// stop autosave loops before the pool closes under them
		wizardMgr.Shutdown()
		if kafkaWriter != nil {
			if cerr := kafkaWriter.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("close kafka writer")
			}
		}
		if tp != nil {
			if terr := tp.Shutdown(shutdownCtx); terr != nil {
				logger.Warn().Err(terr).Msg("shutdown tracer provider")
			}
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
