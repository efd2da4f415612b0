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

// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	StaticDir string

	BotToken      string
	AdminID       string
	AdminPassword string

	GitHubToken string
	GitHubRepo  string
	GroupsFile  string
	PremiumFile string

	LedgerURL    string
	DatabaseURL  string
	RedisURL     string
	GroupLinkURL string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          envOr("PORT", "3000"),
		StaticDir:     envOr("STATIC_DIR", "static"),
		BotToken:      os.Getenv("BOT_TOKEN"),
		AdminID:       os.Getenv("ADMIN_ID"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:    os.Getenv("GITHUB_REPO"),
		GroupsFile:    envOr("GROUPS_FILE", "groups.js"),
		PremiumFile:   envOr("PREMIUM_FILE", "premium.js"),
		LedgerURL:     os.Getenv("LEDGER_URL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      envOr("REDIS_URL", "redis://localhost:6379"),
		GroupLinkURL:  envOr("GROUP_LINK_URL", "https://t.me/intelligentverificationlinkbot"),
	}

	for name, value := range map[string]string{
		"ADMIN_PASSWORD": cfg.AdminPassword,
		"GITHUB_TOKEN":   cfg.GitHubToken,
		"GITHUB_REPO":    cfg.GitHubRepo,
		"LEDGER_URL":     cfg.LedgerURL,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s must be set", name)
		}
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
