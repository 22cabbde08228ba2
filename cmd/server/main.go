package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/swampgate/swampmud/pkg/archive"
	"github.com/swampgate/swampmud/pkg/events"
	"github.com/swampgate/swampmud/pkg/mudstore"
	"github.com/swampgate/swampmud/pkg/server"
	"github.com/swampgate/swampmud/pkg/world"
)

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func main() {
	confFile := flag.String("conf", envDefault("SWAMP_CONF", ""), "Path to server config file (env: SWAMP_CONF)")
	worldFile := flag.String("world", envDefault("SWAMP_WORLD", ""), "Path to world YAML file, overrides config (env: SWAMP_WORLD)")
	storeFile := flag.String("store", envDefault("SWAMP_STORE", ""), "Path to player database, overrides config (env: SWAMP_STORE)")
	textDir := flag.String("textdir", envDefault("SWAMP_TEXTDIR", ""), "Path to text files directory, overrides config (env: SWAMP_TEXTDIR)")
	journalFile := flag.String("journal", envDefault("SWAMP_JOURNAL", ""), "Path to command journal, overrides config (env: SWAMP_JOURNAL)")
	port := flag.Int("port", 0, "TCP port to listen on, overrides config (env: SWAMP_PORT)")
	restorePath := flag.String("restore", envDefault("SWAMP_RESTORE", ""), "Restore from archive before boot (env: SWAMP_RESTORE)")
	flag.Parse()

	log.Printf("Welcome to %s", server.VersionString())

	conf := server.DefaultConf()
	if *confFile != "" {
		var err error
		conf, err = server.LoadConf(*confFile)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		log.Printf("Loaded config from %s", *confFile)
	}

	// Flags and env override config file values.
	if *worldFile != "" {
		conf.WorldFile = *worldFile
	}
	if *storeFile != "" {
		conf.StoreFile = *storeFile
	}
	if *textDir != "" {
		conf.TextDir = *textDir
	}
	if *journalFile != "" {
		conf.JournalFile = *journalFile
	}
	if *port == 0 {
		if envPort := os.Getenv("SWAMP_PORT"); envPort != "" {
			if p, err := strconv.Atoi(envPort); err == nil {
				*port = p
			}
		}
	}
	if *port != 0 {
		conf.Port = *port
	}

	// Pre-boot restore from archive.
	if *restorePath != "" {
		log.Printf("Restoring from archive: %s", *restorePath)
		result, err := archive.Restore(archive.RestoreParams{
			ArchivePath: *restorePath,
			StoreDest:   conf.StoreFile,
			WorldDest:   conf.WorldFile,
			ConfDest:    *confFile,
			TextDest:    conf.TextDir,
		})
		if err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
		log.Printf("Restore complete: %d files restored", result.FilesRestored)
		for _, w := range result.Warnings {
			log.Printf("Restore warning: %s", w)
		}
	}

	lib := defaultLibrary()

	w, err := world.LoadFile(conf.WorldFile, lib)
	if err != nil {
		log.Fatalf("Error loading world: %v", err)
	}
	log.Printf("World %q loaded: %d rooms, start at %s", w.Name(), len(w.Rooms()), w.Start().Name())

	store, err := mudstore.Open(conf.StoreFile)
	if err != nil {
		log.Fatalf("Error opening player database: %v", err)
	}
	defer store.Close()
	if names, err := store.PlayerNames(); err == nil {
		log.Printf("Player database %s: %d characters", conf.StoreFile, len(names))
	}

	game := server.NewGame(lib, w, store, events.NewBus())
	game.ConfPath = *confFile
	game.WorldPath = conf.WorldFile
	game.TextDir = conf.TextDir
	game.ArchiveDir = conf.ArchiveDir

	if conf.TextDir != "" {
		game.Texts = server.LoadTextFiles(conf.TextDir)
		if watcher, err := game.Texts.Watch(); err != nil {
			log.Printf("WARNING: text file watcher: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	if conf.JournalFile != "" {
		journal, err := server.OpenJournal(conf.JournalFile)
		if err != nil {
			log.Fatalf("Error opening command journal: %v", err)
		}
		defer journal.Close()
		game.Journal = journal
		log.Printf("Command journal: %s", conf.JournalFile)
	}

	if conf.AutosaveInterval > 0 {
		game.StartAutosave(time.Duration(conf.AutosaveInterval) * time.Second)
		log.Printf("Autosave every %ds", conf.AutosaveInterval)
	}
	if conf.ArchiveInterval > 0 {
		game.StartAutoArchive(time.Duration(conf.ArchiveInterval)*time.Minute, conf.ArchiveRetain)
		log.Printf("Auto-archive every %dm, retain %d, dir %s",
			conf.ArchiveInterval, conf.ArchiveRetain, conf.ArchiveDir)
	}

	var websrv *server.WebServer
	if conf.WebEnabled {
		websrv = server.NewWebServer(game, server.WebConfig{
			Port:        conf.WebPort,
			Host:        conf.WebHost,
			CORSOrigins: conf.WebCORSOrigins,
			JWTSecret:   conf.JWTSecret,
			JWTExpiry:   conf.JWTExpiry,
		})
		go func() {
			if err := websrv.Start(); err != nil {
				log.Printf("Web server error: %v", err)
			}
		}()
	}

	srv := server.NewServer(game, server.Config{
		Port:        conf.Port,
		IdleTimeout: time.Duration(conf.IdleTimeout) * time.Second,
		MaxRetries:  conf.MaxRetries,
	})

	// Graceful shutdown: save everyone, then close the listeners.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Printf("Shutting down...")
		if err := game.SaveAll(); err != nil {
			log.Printf("Error saving on shutdown: %v", err)
		}
		if websrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			websrv.Stop(ctx)
			cancel()
		}
		srv.Stop()
	}()

	log.Printf("Starting %s on port %d...", conf.MudName, conf.Port)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Printf("Goodbye.")
}
