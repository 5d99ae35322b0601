package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"effectjack/server/blackjack"
	"effectjack/server/config"
	"effectjack/server/engine"
	"effectjack/server/store"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

// backend bundles the persistence and card supply gateways chosen by STORE.
type backend struct {
	store  blackjack.Store
	supply engine.Supply
	close  func()
}

func openBackend(ctx context.Context, cfg config.Config, migrate, seed bool, src engine.Source, lg *zap.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if migrate || cfg.AutoMigrate {
			if err := store.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
			lg.Info("migrated")
		}
		if seed || cfg.SeedDeck {
			if err := db.SeedCatalog(ctx, engine.StandardSuits(), engine.StandardDeck()); err != nil {
				db.Close()
				return nil, err
			}
			lg.Info("standard deck seeded")
		}
		return &backend{store: db, supply: db, close: db.Close}, nil

	case config.StoreRedis:
		r, err := store.OpenRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  r,
			supply: store.NewCatalog(engine.StandardDeck(), src),
			close:  func() { _ = r.Close() },
		}, nil

	default:
		return &backend{
			store:  store.NewMemory(),
			supply: store.NewCatalog(engine.StandardDeck(), src),
			close:  func() {},
		}, nil
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	useColor = !cfg.NoColor && os.Getenv("NO_COLOR") == ""
	decimal.MarshalJSONWithoutQuotes = true

	var migrate, seed, simulate bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--seed":
			seed = true
		case "--simulate":
			simulate = true
		}
	}

	randSeed := cfg.RandSeed
	if randSeed == 0 {
		if randSeed, err = engine.NewSeed(); err != nil {
			lg.Fatal("seed random source", zap.Error(err))
		}
	}
	src := engine.NewSource(randSeed)
	lg.Info("random source ready", zap.Int64("seed", randSeed))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if simulate {
		bet, err := decimal.NewFromString(cfg.SimBet)
		if err != nil {
			lg.Fatal("SIM_BET", zap.Error(err))
		}
		svc := blackjack.NewService(store.NewMemory(), store.NewCatalog(engine.StandardDeck(), src), blackjack.Options{
			Rand:           src,
			Log:            lg.Named("sim"),
			MaxDealerSteps: cfg.MaxDealerSteps,
		})
		if _, err := runSimulation(ctx, svc, cfg.SimRounds, bet, src, lg); err != nil {
			lg.Fatal("simulation failed", zap.Error(err))
		}
		return
	}

	if (migrate || seed) && cfg.Store != config.StorePostgres {
		lg.Fatal("--migrate and --seed need STORE=postgres", zap.String("store", cfg.Store))
	}

	be, err := openBackend(ctx, cfg, migrate, seed, src, lg)
	if err != nil {
		lg.Fatal("open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer be.close()
	if migrate || seed {
		return
	}

	svc := blackjack.NewService(be.store, be.supply, blackjack.Options{
		Rand:           src,
		Log:            lg.Named("game"),
		MaxDealerSteps: cfg.MaxDealerSteps,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(svc, lg.Named("http")),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	lg.Info("listening", zap.String("addr", "http://localhost:"+cfg.Port), zap.String("store", cfg.Store))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
