package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mpoirier/tagflow/internal/config"
	"github.com/mpoirier/tagflow/internal/engine"
	"github.com/mpoirier/tagflow/internal/ingest"
	"github.com/mpoirier/tagflow/internal/model"
	"github.com/mpoirier/tagflow/internal/storage"
)

func openStore() (*storage.FileStore, error) {
	return storage.NewFileStore(config.DefaultLayout())
}

func loadEngine(ctx context.Context, store *storage.FileStore) (*engine.Engine, error) {
	tags, err := store.LoadTagFrequencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag frequencies: %w", err)
	}
	vendorTags, err := store.LoadVendorTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor tags: %w", err)
	}
	return engine.New(tags, vendorTags), nil
}

// resolveRawFile accepts either a bare file name inside the raw directory or
// an explicit path, and returns the path to read plus the raw-dir file name
// used for partial-save bookkeeping.
func resolveRawFile(store *storage.FileStore, arg string) (path, name string, err error) {
	if strings.ContainsRune(arg, os.PathSeparator) {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return "", "", err
		}
		return abs, filepath.Base(abs), nil
	}
	return store.RawPath(arg), arg, nil
}

func loadRawRows(ctx context.Context, path, name string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	norm := ingest.NewNormalizer()
	if strings.EqualFold(filepath.Ext(name), ".ofx") || strings.EqualFold(filepath.Ext(name), ".qfx") {
		return norm.NormalizeOFX(ctx, f, name)
	}
	return norm.NormalizeCSV(ctx, f, name)
}
