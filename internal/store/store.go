// Package store provides a thin bbolt wrapper that persists meteo's settings
// and favorites between runs.
//
// Only the persisted slice of the application state is written. Weather
// details and search results are always fetched fresh and never touch disk.
//
// Buckets:
//
//	state  key "root": JSON {"settings":{...},"favorites":{"cities":[...]}}
//	_meta  internal: schema version, created_at, updated_at
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/derickschaefer/meteo/internal/state"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

var (
	bucketState    = []byte("state")
	bucketInternal = []byte("_meta")

	keyRoot          = []byte("root")
	keySchemaVersion = []byte("schema_version")
	keyCreatedAt     = []byte("created_at")
	keyUpdatedAt     = []byte("updated_at")
)

// AllBuckets lists every user-facing bucket for stats and reset operations.
var AllBuckets = []string{"state"}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get(keySchemaVersion) == nil {
			if err := meta.Put(keySchemaVersion, []byte(strconv.Itoa(schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put(keyCreatedAt, []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Persisted State ──────────────────────────────────────────────────────────

// blob is the on-disk envelope. Each half is decoded on its own so a damaged
// favorites list does not cost the user their settings, and vice versa.
type blob struct {
	Settings  json.RawMessage `json:"settings"`
	Favorites json.RawMessage `json:"favorites"`
}

// Load reads the persisted settings and favorites. A missing key yields the
// defaults. A half that fails to decode falls back to its default and is
// logged; Load only returns an error when the database itself fails.
func (s *Store) Load() (state.Persisted, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketState).Get(keyRoot); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return state.DefaultPersisted(), fmt.Errorf("reading state: %w", err)
	}
	return decodePersisted(raw), nil
}

func decodePersisted(raw []byte) state.Persisted {
	p := state.DefaultPersisted()
	if len(raw) == 0 {
		return p
	}

	var b blob
	if err := json.Unmarshal(raw, &b); err != nil {
		slog.Warn("stored state unreadable, using defaults", "err", err)
		return p
	}
	if len(b.Settings) > 0 {
		settings := state.DefaultSettings()
		if err := json.Unmarshal(b.Settings, &settings); err != nil {
			slog.Warn("stored settings unreadable, using defaults", "err", err)
		} else {
			p.Settings = settings
		}
	}
	if len(b.Favorites) > 0 {
		var favs state.FavoritesState
		if err := json.Unmarshal(b.Favorites, &favs); err != nil {
			slog.Warn("stored favorites unreadable, using defaults", "err", err)
		} else {
			p.Favorites = favs
		}
	}
	return p.Sanitize()
}

// Save writes p as the persisted state and stamps updated_at.
func (s *Store) Save(p state.Persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketState).Put(keyRoot, data); err != nil {
			return err
		}
		return tx.Bucket(bucketInternal).Put(keyUpdatedAt, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Info describes the database as a whole.
type Info struct {
	Path          string
	SchemaVersion string
	CreatedAt     string
	UpdatedAt     string
	Buckets       []BucketStats
}

// Stats returns row counts and approximate sizes for the user-facing buckets
// together with the internal metadata.
func (s *Store) Stats() (Info, error) {
	info := Info{Path: s.Path()}
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketInternal)
		info.SchemaVersion = string(meta.Get(keySchemaVersion))
		info.CreatedAt = string(meta.Get(keyCreatedAt))
		info.UpdatedAt = string(meta.Get(keyUpdatedAt))

		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			st := BucketStats{Name: name}
			err := b.ForEach(func(k, v []byte) error {
				st.Count++
				st.Bytes += int64(len(k) + len(v))
				return nil
			})
			if err != nil {
				return err
			}
			info.Buckets = append(info.Buckets, st)
		}
		return nil
	})
	return info, err
}

// Reset deletes the persisted state. The next Load returns the defaults.
func (s *Store) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			bname := []byte(name)
			if err := tx.DeleteBucket(bname); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return fmt.Errorf("clearing bucket %s: %w", name, err)
			}
			if _, err := tx.CreateBucket(bname); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketInternal).Delete(keyUpdatedAt)
	})
}
