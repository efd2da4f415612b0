// Copyright (C) 2025 intelgroups
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/intelgroups/groups/backend/config"
	"github.com/intelgroups/groups/backend/handlers"
	"github.com/intelgroups/groups/backend/integration"
	"github.com/intelgroups/groups/backend/logging"
	"github.com/intelgroups/groups/backend/middleware"
	"github.com/intelgroups/groups/backend/service"
	"github.com/intelgroups/groups/backend/storage/document"
	"github.com/intelgroups/groups/backend/storage/github"
	"github.com/intelgroups/groups/backend/storage/postgres"
	redisstore "github.com/intelgroups/groups/backend/storage/redis"
)

const reconcileInterval = time.Minute

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database connection
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		dbURL = "postgres://localhost/intelgroups?sslmode=disable"
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	outbox := postgres.NewStore(db)
	if err := outbox.Migrate(); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis connection
	redisOpts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := goredis.NewClient(redisOpts)
	defer rdb.Close()

	// Storage
	blobs := github.NewClient(cfg.GitHubToken, cfg.GitHubRepo)
	store := document.NewStore(blobs, cfg.GroupsFile, cfg.PremiumFile, cfg.AdminID)
	audio := redisstore.NewAudioCache(rdb)
	attempts := redisstore.NewAttemptCounter(rdb)

	// Integrations
	notifier, err := integration.NewNotifier(cfg.BotToken, cfg.AdminID)
	if err != nil {
		slog.Error("failed to start telegram notifier", "error", err)
		os.Exit(1)
	}
	ledger := integration.NewLedgerClient(cfg.LedgerURL, cfg.AdminPassword)

	purchases := service.NewPurchaseService(store, store, outbox, attempts, ledger)

	// Handlers
	groupHandler := handlers.NewGroupHandler(store, notifier)
	messageHandler := handlers.NewMessageHandler(store, audio, notifier, cfg.GroupLinkURL)
	premiumHandler := handlers.NewPremiumHandler(store, ledger, purchases)
	depositHandler := handlers.NewDepositHandler(notifier)
	adminHandler := handlers.NewAdminHandler(store, store, notifier)

	// Router
	r := mux.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	// Static pages
	page := func(name string) http.HandlerFunc {
		path := filepath.Join(cfg.StaticDir, name)
		return func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, path)
		}
	}
	r.HandleFunc("/", page("index.html")).Methods("GET")
	r.HandleFunc("/index.html", page("index.html")).Methods("GET")
	r.HandleFunc("/group.html", page("group.html")).Methods("GET")
	r.HandleFunc("/create-group.html", page("create-group.html")).Methods("GET")
	r.HandleFunc("/premium.html", page("premium.html")).Methods("GET")
	r.HandleFunc("/deposit.html", page("deposit.html")).Methods("GET")
	r.HandleFunc("/admin", page("admin.html")).Methods("GET")

	// Premium and balance
	r.HandleFunc("/get-balance", premiumHandler.GetBalance).Methods("POST")
	r.HandleFunc("/api/premium-list", premiumHandler.ListPremium).Methods("GET")
	r.HandleFunc("/generate-premium-passcode", premiumHandler.GeneratePasscode).Methods("POST")
	r.HandleFunc("/api/buy-premium", premiumHandler.BuyPremium).Methods("POST")

	// Groups
	r.HandleFunc("/api/groups", groupHandler.ListGroups).Methods("GET")
	r.HandleFunc("/api/groups/{id}", groupHandler.GetGroup).Methods("GET")
	r.HandleFunc("/api/groups/create", groupHandler.CreateGroup).Methods("POST")
	r.HandleFunc("/api/groups/{id}/join", groupHandler.JoinGroup).Methods("POST")
	r.HandleFunc("/api/groups/{id}/leave", groupHandler.LeaveGroup).Methods("POST")
	r.HandleFunc("/api/groups/{id}/edit", groupHandler.EditGroup).Methods("POST")
	r.HandleFunc("/api/groups/{id}/delete", groupHandler.DeleteGroup).Methods("POST")

	// Messages
	r.HandleFunc("/api/groups/{id}/messages", messageHandler.ListMessages).Methods("GET")
	r.HandleFunc("/api/groups/{id}/messages", messageHandler.PostMessage).Methods("POST")
	r.HandleFunc("/api/groups/{id}/messages/{msgId}", messageHandler.DeleteMessage).Methods("DELETE")
	r.HandleFunc("/api/audio/{msgId}", messageHandler.GetAudio).Methods("GET")

	// Deposits
	r.HandleFunc("/deposit", depositHandler.Deposit).Methods("POST")

	// Admin
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.AdminPassword))
	admin.HandleFunc("/groups", adminHandler.ListAllGroups).Methods("GET")
	admin.HandleFunc("/groups/{id}/delete", adminHandler.ForceDeleteGroup).Methods("POST")
	admin.HandleFunc("/premium/check", adminHandler.CheckPremium).Methods("POST")
	admin.HandleFunc("/premium/add", adminHandler.AddPremium).Methods("POST")
	admin.HandleFunc("/premium/remove", adminHandler.RemovePremium).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Settlement reconciler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go purchases.RunReconciler(ctx, reconcileInterval)

	addr := ":" + cfg.Port
	slog.Info("server running", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
