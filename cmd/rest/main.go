package main

import (
	"context"
	"log"

	"sahayak-be/internal/bootstrap"
	"sahayak-be/internal/config"
	"sahayak-be/internal/server"
	"sahayak-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer - DISABLED
	// shutdownTracer := tracer.InitTracer()
	// defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBWithPool(cfg.Database.Connection, database.Pool{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Archive Consumer...")
		if err := container.ArchiveService.Consume(context.Background()); err != nil {
			log.Printf("Background Archive Consumer Error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting Inactivity Sweeper...")
		container.SweeperService.Run(context.Background())
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
