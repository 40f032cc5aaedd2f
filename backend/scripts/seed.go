package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"socialmesh/backend/internal/store"
	"socialmesh/backend/internal/store/graphstore"
	"socialmesh/backend/pkg/config"
	"socialmesh/backend/pkg/logger"
)

// Seeds the graph backend with a handful of demo users and connections for
// local development. Run with: go run backend/scripts/seed.go
func main() {
	connType := flag.String("type", "Work", "Connection type for the seeded pairs")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	ctx := context.Background()
	defer driver.Close(ctx)

	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	graphStore := graphstore.New(driver)

	users := []string{"alice", "bob", "carol", "dave"}
	if err := graphStore.EnsureUsers(ctx, users...); err != nil {
		log.Fatal("Failed to seed users", zap.Error(err))
	}
	log.Info("Seeded users", zap.Strings("ids", users))

	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "carol"},
	}
	for _, pair := range pairs {
		userA, userB := store.NormalizePair(pair[0], pair[1])
		conn := store.Connection{
			UserA: userA,
			UserB: userB,
			Type:  *connType,
			Since: time.Now().UTC(),
		}
		if err := graphStore.CreateConnection(ctx, conn); err != nil {
			log.Fatal("Failed to seed connection",
				zap.String("user_a", userA),
				zap.String("user_b", userB),
				zap.Error(err),
			)
		}
	}
	log.Info("Seeded connections", zap.Int("count", len(pairs)), zap.String("type", *connType))

	log.Info("Seeding complete")
}
