package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	models "github.com/CodeAndHammer/foodle/internal/models"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

type BadgerConfig struct {
	// Path is ignored when InMemory is set.
	Path     string
	InMemory bool
	// TTL bounds how long an untouched guest slot survives. Zero keeps slots
	// until they are overwritten.
	TTL time.Duration
}

// BadgerStore is the on-disk guest backend. Slots are written with a badger
// TTL so abandoned guests expire without a sweeper.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	util.LogWarn("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	util.LogWarn("badger: "+format, args...)
}

func (badgerLogger) Infof(string, ...interface{}) {}

func (badgerLogger) Debugf(string, ...interface{}) {}

func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger path is required unless in-memory")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(badgerLogger{}).WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, ttl: cfg.TTL}, nil
}

func (b *BadgerStore) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func guestKey(ownerID string) []byte {
	return []byte("guest/" + ownerID)
}

func (b *BadgerStore) Load(ctx context.Context, ownerID, puzzleKey string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(guestKey(ownerID))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load guest slot: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode guest slot: %w", err)
	}
	if s.PuzzleKey != puzzleKey {
		return nil, nil
	}
	return &s, nil
}

func (b *BadgerStore) Save(ctx context.Context, s *models.Session) error {
	if err := validateForSave(s); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode guest slot: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(guestKey(s.OwnerID), raw)
		if b.ttl > 0 {
			entry = entry.WithTTL(b.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("save guest slot: %w", err)
	}
	return nil
}

func (b *BadgerStore) AppendResult(context.Context, string, models.GameResult) error {
	return nil
}

func (b *BadgerStore) LoadStats(context.Context, string) (*models.PlayerStats, error) {
	return nil, nil
}

func (b *BadgerStore) SaveStats(context.Context, string, models.PlayerStats) error {
	return nil
}
