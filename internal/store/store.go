// Package store owns the application document. It reads and replaces the
// whole document on the remote JSON store, mirrors every read and write
// into the local cache and falls back to that cache, or to a default
// document, whenever the remote side fails.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"morfi-plan/internal/cache"
	"morfi-plan/internal/config"
	"morfi-plan/internal/jsonbin"
	"morfi-plan/internal/planner"
)

var errNoBin = errors.New("no remote bin available")

// Options locate the remote document.
type Options struct {
	// BinID pins a known document. Optional.
	BinID string
	// CollectionID scopes discovery and creation. Optional.
	CollectionID string
	// BinName is the conventional name looked up in the collection.
	BinName string
	// DefaultRecipient seeds the default configuration.
	DefaultRecipient string
}

// OptionsFromConfig reads the remote document location from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BinID:            cfg.JSONBinBinID,
		CollectionID:     cfg.JSONBinCollectionID,
		BinName:          cfg.JSONBinBinName,
		DefaultRecipient: cfg.DefaultRecipient,
	}
}

// DocumentStore presents the application document as a single
// read/replace resource. Concurrent writers are last-writer-wins.
type DocumentStore struct {
	remote jsonbin.Client
	cache  cache.Cache
	opts   Options

	mu    sync.Mutex
	binID string
}

// New creates a DocumentStore.
func New(remote jsonbin.Client, c cache.Cache, opts Options) *DocumentStore {
	return &DocumentStore{
		remote: remote,
		cache:  c,
		opts:   opts,
		binID:  opts.BinID,
	}
}

// DefaultDocument is served when neither the remote store nor the cache
// has data.
func DefaultDocument(recipient string) planner.AppData {
	return planner.AppData{
		Menus:       []planner.Menu{},
		Assignments: []planner.Assignment{},
		Config: planner.Settings{
			Emails:      []string{recipient},
			SendDay:     planner.SendSunday,
			SendHour:    planner.DefaultSendHour,
			UTCMigrated: true,
		},
	}
}

// RemoteEnabled reports whether the store talks to the remote API at all.
func (s *DocumentStore) RemoteEnabled() bool {
	return s.remote.Configured() && (s.opts.BinID != "" || s.opts.CollectionID != "")
}

// Load returns the current document: remote if reachable (mirrored into
// the cache), else the cached snapshot, else the default document.
func (s *DocumentStore) Load(ctx context.Context) planner.AppData {
	if !s.RemoteEnabled() {
		return s.local(ctx)
	}

	var doc planner.AppData
	err := s.withBin(ctx, func(id string) error {
		raw, err := s.remote.GetBin(ctx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Warn("remote store unavailable, using local data", "error", err)
		return s.local(ctx)
	}

	s.mirror(ctx, doc)
	return doc
}

// Replace stores doc. The cache is written first and unconditionally; a
// remote failure is logged and does not undo it.
func (s *DocumentStore) Replace(ctx context.Context, doc planner.AppData) planner.AppData {
	s.mirror(ctx, doc)

	if !s.RemoteEnabled() {
		return doc
	}
	err := s.withBin(ctx, func(id string) error {
		return s.remote.UpdateBin(ctx, id, doc)
	})
	if err != nil {
		slog.Warn("remote store update failed, kept local copy", "error", err)
	}
	return doc
}

// Bootstrap resolves the remote document up front. It is a no-op when
// an identifier is already known.
func (s *DocumentStore) Bootstrap(ctx context.Context) (string, error) {
	if !s.RemoteEnabled() {
		return "", errNoBin
	}
	return s.resolveBinID(ctx)
}

// withBin runs fn against the known document. If the document is gone
// the identifier is forgotten, discovery runs once more and fn is
// retried once.
func (s *DocumentStore) withBin(ctx context.Context, fn func(id string) error) error {
	id, err := s.resolveBinID(ctx)
	if err != nil {
		return err
	}

	err = fn(id)
	if !errors.Is(err, jsonbin.ErrNotFound) {
		return err
	}

	slog.Warn("remote document not found, running discovery again", "bin_id", id)
	s.forgetBinID(ctx, id)

	id, err = s.resolveBinID(ctx)
	if err != nil {
		return err
	}
	return fn(id)
}

func (s *DocumentStore) resolveBinID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.binID != "" {
		return s.binID, nil
	}

	if cached, err := s.cache.Get(ctx, cache.KeyBinID); err == nil && len(cached) > 0 {
		s.binID = string(cached)
		return s.binID, nil
	}

	if s.opts.CollectionID == "" {
		return "", errNoBin
	}

	bins, err := s.remote.ListCollection(ctx, s.opts.CollectionID)
	if err != nil {
		return "", fmt.Errorf("failed to list collection: %w", err)
	}
	for _, b := range bins {
		if b.Name == s.opts.BinName {
			slog.Info("discovered remote document", "bin_id", b.ID, "name", b.Name)
			s.rememberBinID(ctx, b.ID)
			return b.ID, nil
		}
	}

	id, err := s.remote.CreateBin(ctx, s.opts.CollectionID, s.opts.BinName, DefaultDocument(s.opts.DefaultRecipient))
	if err != nil {
		return "", fmt.Errorf("failed to create remote document: %w", err)
	}
	slog.Info("created remote document", "bin_id", id, "name", s.opts.BinName)
	s.rememberBinID(ctx, id)
	return id, nil
}

// rememberBinID must be called with s.mu held.
func (s *DocumentStore) rememberBinID(ctx context.Context, id string) {
	s.binID = id
	if err := s.cache.Set(ctx, cache.KeyBinID, []byte(id)); err != nil {
		slog.Warn("failed to cache bin id", "error", err)
	}
}

func (s *DocumentStore) forgetBinID(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.binID == id {
		s.binID = ""
	}
	if err := s.cache.Delete(ctx, cache.KeyBinID); err != nil {
		slog.Warn("failed to clear cached bin id", "error", err)
	}
}

func (s *DocumentStore) local(ctx context.Context) planner.AppData {
	data, err := s.cache.Get(ctx, cache.KeyDocument)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("failed to read cached document", "error", err)
		}
		return DefaultDocument(s.opts.DefaultRecipient)
	}

	var doc planner.AppData
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("cached document is corrupt, using defaults", "error", err)
		return DefaultDocument(s.opts.DefaultRecipient)
	}
	return doc
}

func (s *DocumentStore) mirror(ctx context.Context, doc planner.AppData) {
	data, err := json.Marshal(doc)
	if err != nil {
		slog.Error("failed to encode document for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, cache.KeyDocument, data); err != nil {
		slog.Warn("failed to mirror document into cache", "error", err)
	}
}
