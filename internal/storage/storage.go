package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/mychess/internal/board"
	"github.com/hailam/mychess/internal/engine"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyFirstLaunch = "first_launch"
)

// DefaultDifficulty is the level used until the player picks one.
const DefaultDifficulty = 2

// Preferences is the engine configuration remembered between sessions.
type Preferences struct {
	Username    string            `json:"username"`
	Difficulty  int               `json:"difficulty"`
	PlayerColor board.Color       `json:"player_color"`
	HashMB      int               `json:"hash_mb"`
	DepthTable  engine.DepthTable `json:"depth_table"`
	LastPlayed  time.Time         `json:"last_played"`
}

// DefaultPreferences returns the preferences of a fresh install.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Username:    "Player",
		Difficulty:  DefaultDifficulty,
		PlayerColor: board.White,
		HashMB:      engine.DefaultHashMB,
		DepthTable:  engine.DefaultDepthTable.Clone(),
	}
}

// Validate rejects preferences the engine could not run with.
func (p *Preferences) Validate() error {
	if p.Difficulty < engine.RandomLevel {
		return fmt.Errorf("difficulty %d: must be at least %d", p.Difficulty, engine.RandomLevel)
	}
	if p.PlayerColor != board.White && p.PlayerColor != board.Black {
		return fmt.Errorf("player colour %d: must be white or black", p.PlayerColor)
	}
	if p.HashMB < 1 {
		return fmt.Errorf("hash size %d MB: must be positive", p.HashMB)
	}
	return p.DepthTable.Validate()
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the store in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (creating if needed) the store in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	logger := log.With().Str("component", "storage").Logger()
	opts.Logger = badgerLogger{logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug().Str("dir", opts.Dir).Bool("in_memory", opts.InMemory).Msg("database opened")
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences validates and stores prefs, stamping LastPlayed.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the stored preferences. Fields missing from the
// stored record keep their defaults; a record that no longer validates is
// replaced by the defaults.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		// Decode the table fresh so stored levels replace the default ones
		// rather than merging into them.
		prefs.DepthTable = nil
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})
	if err != nil {
		return nil, err
	}
	if prefs.DepthTable == nil {
		prefs.DepthTable = engine.DefaultDepthTable.Clone()
	}

	if err := prefs.Validate(); err != nil {
		log.Warn().Err(err).Msg("stored preferences are invalid, using defaults")
		return DefaultPreferences(), nil
	}
	return prefs, nil
}

// badgerLogger routes badger's internal logging through zerolog. Badger is
// chatty at info level, so that is demoted to debug.
type badgerLogger struct {
	zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.Trace().Msgf(format, args...)
}
