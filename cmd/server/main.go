// cmd/server/main.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/hek316/workin/internal/config"
	"github.com/hek316/workin/internal/handlers"
	"github.com/hek316/workin/internal/notify"
	"github.com/hek316/workin/internal/routes"
	"github.com/hek316/workin/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	db := storage.OpenDB()
	if err := handlers.SeedDefaultOffices(db, cfg.DefaultOfficeLat, cfg.DefaultOfficeLng); err != nil {
		log.Fatal("seed offices: ", err)
	}

	hub := notify.NewHub()
	defer hub.Close()

	r := routes.NewRouter(db, cfg, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := ":" + port
	log.Printf("Server running on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
