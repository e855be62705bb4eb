// Package cmd provides shared wiring helpers for the talentflow binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/talentflow/talentflow/pkg/persistence"
	"github.com/talentflow/talentflow/pkg/persistence/file"
	"github.com/talentflow/talentflow/pkg/persistence/postgresql"
)

// NewPersistence creates a persistence backend from a database URL. A
// postgres:// URL selects PostgreSQL, anything else is treated as a directory
// path for the file backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(err)
		}

		return store
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
