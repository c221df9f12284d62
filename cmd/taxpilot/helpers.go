package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/taxpilot-ai/taxpilot/internal/common"
	"github.com/taxpilot-ai/taxpilot/internal/engine"
	"github.com/taxpilot-ai/taxpilot/internal/intent"
	"github.com/taxpilot-ai/taxpilot/internal/llm"
	"github.com/taxpilot-ai/taxpilot/internal/review"
	"github.com/taxpilot-ai/taxpilot/internal/storage"
)

// databasePath resolves the SQLite path from config, defaulting to the XDG
// data directory.
func databasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "taxpilot", "taxpilot.db"), nil
}

// openStorage opens the SQLite store at the configured path.
func openStorage() (*storage.SQLiteStorage, error) {
	path, err := databasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, common.NewUserError("could not open the tax database at "+path, err)
	}
	return store, nil
}

// buildEngine assembles the conversation engine with its collaborators. The
// remote reasoning client is wired only when an API key is configured.
func buildEngine(store *storage.SQLiteStorage) *engine.Engine {
	var remote engine.Completer
	if apiKey := viper.GetString("llm.api_key"); apiKey != "" {
		client, err := llm.New(llm.Config{
			APIKey:  apiKey,
			Model:   viper.GetString("llm.model"),
			BaseURL: viper.GetString("llm.base_url"),
		})
		if err != nil {
			slog.Warn("remote reasoning disabled", "error", err)
		} else {
			remote = client
		}
	}

	return engine.New(store, intent.New(), review.NewGate(), remote)
}
