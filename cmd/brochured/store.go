package main

import (
	"context"
	"fmt"

	"github.com/geoirb/go-brochure/internal/store"
)

func newStore(ctx context.Context, cfg configuration) (store.Store, func(), error) {
	nop := func() {}
	switch cfg.StoreBackend {
	case "sheets":
		s, err := store.NewSheets(ctx, cfg.GoogleSAJSONPath, cfg.SpreadsheetID, cfg.SheetName, cfg.PasswordColumn)
		return s, nop, err
	case "xlsx":
		s, err := store.NewWorkbook(cfg.XLSXPath, cfg.XLSXSheet, cfg.PasswordColumn)
		return s, nop, err
	case "redis":
		s := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, nop, err
		}
		return s, func() { s.Close() }, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.PostgresDSN, cfg.PostgresTable)
		if err != nil {
			return nil, nop, err
		}
		return s, s.Close, nil
	case "memory":
		return store.NewMemory(cfg.MemoryPasswords...), nop, nil
	}
	return nil, nop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
