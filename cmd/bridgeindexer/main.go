package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bridgeindexer/internal/chainreg"
	"bridgeindexer/internal/checkpoint"
	"bridgeindexer/internal/config"
	"bridgeindexer/internal/ingestion"
	"bridgeindexer/internal/metrics"
	"bridgeindexer/internal/reconciler"
	"bridgeindexer/internal/store"
	"bridgeindexer/internal/tokenreg"
	"bridgeindexer/pkg/chain/evm"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.Logging)
	log.Info().Msg("Starting bridge indexer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("Application error")
	}

	log.Info().Msg("Bridge indexer shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()
	if cfg.Metrics.Enabled {
		if err := m.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			m.Shutdown(shutdownCtx)
		}()
		log.Info().Int("port", cfg.Metrics.Port).Msg("Metrics server started")
	}

	chains, err := chainreg.New(cfg.Chains)
	if err != nil {
		return fmt.Errorf("building chain registry: %w", err)
	}

	pg, err := store.New(ctx, cfg.Persistence.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pg.Close()
	log.Info().Msg("Postgres store initialized")

	cp := checkpoint.New(fmt.Sprintf("%s:%d", cfg.Checkpoint.Host, cfg.Checkpoint.Port))
	defer cp.Close()
	if err := cp.Ping(ctx); err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	log.Info().Msg("Checkpoint store initialized")

	rec := reconciler.New(pg)

	chainCtx := make(map[uint64]*ingestion.ChainContext, len(chains.All()))
	for _, chainCfg := range cfg.Chains {
		chain, ok := chains.ByID(chainCfg.ChainID)
		if !ok {
			continue
		}

		client, err := evm.Dial(chain.Name, chain.RPCURL, chain.RequiresPOAExtension)
		if err != nil {
			return fmt.Errorf("dialing %s: %w", chain.Name, err)
		}
		client.SetMetrics(m)

		warmupStart := time.Now()

		addresses := make([]common.Address, 0, len(chainCfg.Tokens))
		for _, a := range chainCfg.Tokens {
			addresses = append(addresses, common.HexToAddress(a))
		}
		tokens, err := tokenreg.Warmup(ctx, client, addresses)
		if err != nil {
			return fmt.Errorf("warming up tokens for %s: %w", chain.Name, err)
		}

		pools := map[tokenreg.PoolKind]common.Address{}
		if chain.NUSDPool != nil {
			pools[tokenreg.PoolKindNUSD] = *chain.NUSDPool
		}
		if chain.NETHPool != nil {
			pools[tokenreg.PoolKindNETH] = *chain.NETHPool
		}
		poolReg, err := tokenreg.BuildPoolRegistry(ctx, client, pools)
		if err != nil {
			return fmt.Errorf("building pool registry for %s: %w", chain.Name, err)
		}

		m.RecordWarmupLatency(chain.Name, time.Since(warmupStart))
		m.SetTokensTracked(chain.Name, len(addresses))

		chainCtx[chain.ChainID] = &ingestion.ChainContext{
			Chain:   chain,
			Client:  client,
			Tokens:  tokens,
			Pools:   poolReg,
			Metrics: m,
		}

		log.Info().Str("chain", chain.Name).Uint64("chain_id", chain.ChainID).Msg("chain registries warmed up")
	}

	pipeline := ingestion.NewPipeline(chains, chainCtx, rec, m)

	g, gCtx := errgroup.WithContext(ctx)
	for _, cc := range chainCtx {
		cc := cc
		g.Go(func() error {
			log.Info().Str("chain", cc.Chain.Name).Msg("starting ingestion worker")
			// One chain exhausting its retries must not tear down its
			// siblings; log it and leave the rest of the fleet running.
			if err := ingestion.Worker(gCtx, cc, cp, pipeline); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Str("chain", cc.Chain.Name).Err(err).Msg("ingestion worker stopped")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	return nil
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}
