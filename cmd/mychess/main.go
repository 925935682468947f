package main

import (
	"flag"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/mychess/internal/engine"
	"github.com/hailam/mychess/internal/storage"
	"github.com/hailam/mychess/internal/uci"
)

var (
	difficulty = flag.Int("difficulty", storage.DefaultDifficulty, "difficulty level (1 plays random moves)")
	hashMB     = flag.Int("hash", engine.DefaultHashMB, "transposition table size in MB")
	seed       = flag.Uint64("seed", 0, "random seed (0 seeds from the clock)")
	dbDir      = flag.String("db", "", "preferences database directory (default: platform data dir; \"none\" disables)")
	logLevel   = flag.String("log-level", "info", "log level: trace, debug, info, warn, error")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	store, prefs := openPreferences()
	if store != nil {
		defer store.Close()
	}
	applyFlags(prefs)

	eng, err := engine.NewEngine(engine.Options{
		HashMB:     prefs.HashMB,
		DepthTable: prefs.DepthTable,
		Seed:       *seed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("could not create engine")
	}

	protocol := uci.New(eng, os.Stdout, uci.Config{
		Difficulty: prefs.Difficulty,
		Store:      store,
		Prefs:      prefs,
	})
	if err := protocol.Run(os.Stdin); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}

// openPreferences opens the preferences store and loads what it holds. A
// store that cannot be opened is not fatal; the engine runs on defaults.
func openPreferences() (*storage.Storage, *storage.Preferences) {
	if *dbDir == "none" {
		return nil, storage.DefaultPreferences()
	}

	var (
		store *storage.Storage
		err   error
	)
	if *dbDir != "" {
		store, err = storage.Open(*dbDir)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		log.Warn().Err(err).Msg("preferences unavailable, using defaults")
		return nil, storage.DefaultPreferences()
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("could not load preferences, using defaults")
		prefs = storage.DefaultPreferences()
	}

	first, err := store.IsFirstLaunch()
	if err == nil && first {
		log.Info().Msg("first launch, saving default preferences")
		if err := store.SavePreferences(prefs); err != nil {
			log.Warn().Err(err).Msg("could not save preferences")
		} else if err := store.MarkFirstLaunchComplete(); err != nil {
			log.Warn().Err(err).Msg("could not record first launch")
		}
	}
	return store, prefs
}

// applyFlags lets flags given on the command line override stored values.
func applyFlags(prefs *storage.Preferences) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "difficulty":
			prefs.Difficulty = *difficulty
		case "hash":
			prefs.HashMB = *hashMB
		}
	})
}
