package main

import (
	"log"
	"net/http"
	"os"

	"renamebot/config"
	"renamebot/database"
	"renamebot/telegram"

	"github.com/gorilla/mux"
)

type Server struct {
	config *config.Config
	db     *database.DB
	router *mux.Router
}

func main() {
	cfg := config.Load()

	db, err := database.Init(cfg.MongoURL, cfg.DBName)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		log.Fatal("Failed to create download directory:", err)
	}
	if err := os.MkdirAll(cfg.MetadataDir, 0755); err != nil {
		log.Fatal("Failed to create metadata directory:", err)
	}

	if err := telegram.InitBot(cfg, db); err != nil {
		log.Fatal("Failed to initialize Telegram bot:", err)
	}

	server := &Server{
		config: cfg,
		db:     db,
		router: mux.NewRouter(),
	}

	server.setupRoutes()

	log.Printf("→ Status server starting on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, server.router))
}

func (s *Server) setupRoutes() {
	s.router.Use(loggingMiddleware)
	s.router.Use(enableCORS)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET")
}
