package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"crew-assignment-service/internal/adapters/cache"
	"crew-assignment-service/internal/adapters/repositories"
	"crew-assignment-service/internal/adapters/routing"
	"crew-assignment-service/internal/api"
	"crew-assignment-service/internal/config"
	"crew-assignment-service/internal/platform/db"
	"crew-assignment-service/internal/platform/metrics"
	"crew-assignment-service/internal/ports"
	"crew-assignment-service/internal/services"
)

// repos bundles the repository ports chosen at startup.
type repos struct {
	jobs        ports.JobRequestRepository
	crews       ports.CrewRepository
	simulations ports.SimulationRepository
	decisions   ports.DecisionRepository
}

// main is the application composition root.
// It wires concrete adapters (Postgres or memory, Redis, Distance Matrix) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var conn *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := repositories.InitSchema(conn); err != nil {
			log.Fatal(err)
		}
	}

	r, err := buildRepos(ctx, conn, cfg.SeedPath)
	if err != nil {
		log.Fatal(err)
	}

	travelCache, redisClient, err := buildTravelCache(ctx, cfg, conn)
	if err != nil {
		log.Fatal(err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var provider ports.RouteProvider
	if cfg.RoutingAPIKey != "" {
		provider, err = routing.NewDistanceMatrixProvider(
			cfg.RoutingAPIKey,
			routing.WithBaseURL(cfg.RoutingBaseURL),
			routing.WithRateLimit(cfg.RoutingRatePerSec),
		)
		if err != nil {
			log.Fatal(err)
		}
	}

	estimator := services.NewTravelCostEstimator(travelCache, provider, cfg.RoutingTimeout)
	simulator := services.NewSimulator(r.jobs, r.crews, r.simulations, estimator, cfg.CostModel, cfg.SimulationConcurrency)
	orchestrator := services.NewDecisionOrchestrator(r.decisions, r.simulations, r.jobs, services.ApprovalConfig{
		AllowCrewLeadApprove: cfg.AllowCrewLeadApprove,
	})

	scheduler, err := startCachePurge(cfg.CachePurgeSchedule, travelCache)
	if err != nil {
		log.Fatal(err)
	}
	defer scheduler.Stop()

	router := api.NewRouter(api.Deps{
		Simulations: simulator,
		Decisions:   orchestrator,
		Estimator:   estimator,
	})

	// Timeouts leave room for a cold-cache simulation (one routing call per crew).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// buildRepos uses Postgres when a connection is available, otherwise an in-memory
// store seeded from seedPath.
func buildRepos(ctx context.Context, conn *sql.DB, seedPath string) (repos, error) {
	if conn != nil {
		return repos{
			jobs:        repositories.NewPostgresJobRequestRepository(conn),
			crews:       repositories.NewPostgresCrewRepository(conn),
			simulations: repositories.NewPostgresSimulationRepository(conn),
			decisions:   repositories.NewPostgresDecisionRepository(conn),
		}, nil
	}

	log.Println("DATABASE_URL not set; using in-memory repositories")
	store := repositories.NewMemoryStore()
	if _, err := os.Stat(seedPath); err == nil {
		if err := repositories.SeedFromJSON(ctx, store, store, seedPath); err != nil {
			return repos{}, err
		}
		log.Printf("Seeded in-memory store from %s", seedPath)
	} else {
		log.Printf("seed file %s not found; starting empty", seedPath)
	}

	return repos{jobs: store, crews: store, simulations: store, decisions: store}, nil
}

// buildTravelCache prefers Redis, then the Postgres table, then process memory.
func buildTravelCache(ctx context.Context, cfg *config.Config, conn *sql.DB) (ports.TravelCache, *redis.Client, error) {
	if cfg.RedisURL != "" {
		client, err := db.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("travel cache: redis")
		return cache.NewRedisTravelCache(client), client, nil
	}
	if conn != nil {
		log.Println("travel cache: postgres")
		return cache.NewSQLTravelCache(conn), nil, nil
	}
	log.Println("travel cache: memory")
	return cache.NewMemoryTravelCache(), nil, nil
}

// startCachePurge schedules expired-entry deletion for caches that need it.
// Redis expires keys itself, so it gets an idle scheduler.
func startCachePurge(schedule string, tc ports.TravelCache) (*cron.Cron, error) {
	c := cron.New()

	if purgeable, ok := tc.(ports.PurgeableTravelCache); ok {
		_, err := c.AddFunc(schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			n, err := purgeable.PurgeExpired(ctx, time.Now())
			if err != nil {
				log.Printf("travel cache purge failed: %v", err)
				return
			}
			log.Printf("travel cache purge removed=%d", n)
		})
		if err != nil {
			return nil, err
		}
	}

	c.Start()
	return c, nil
}
