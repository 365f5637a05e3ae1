// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/store/firestore"
	"github.com/lysyi3m/radio-site/app/store/sqlite"
)

const (
	SQLite    = "sqlite"
	Firestore = "firestore"
)

type Options struct {
	Backend              string
	SQLitePath           string
	FirestoreProject     string
	FirestoreCredentials string
}

func Open(ctx context.Context, opts Options) (store.Store, error) {
	switch opts.Backend {
	case SQLite, "":
		if dir := filepath.Dir(opts.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		s, err := sqlite.Open(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("Document store opened", "backend", SQLite, "path", opts.SQLitePath)
		return s, nil

	case Firestore:
		if opts.FirestoreProject == "" {
			return nil, fmt.Errorf("firestore project is required")
		}
		s, err := firestore.Open(ctx, opts.FirestoreProject, opts.FirestoreCredentials)
		if err != nil {
			return nil, err
		}
		slog.Info("Document store opened", "backend", Firestore, "project", opts.FirestoreProject)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
