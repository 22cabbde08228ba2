package server

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/swampgate/swampmud/pkg/archive"
	"github.com/swampgate/swampmud/pkg/events"
	"github.com/swampgate/swampmud/pkg/mud"
	"github.com/swampgate/swampmud/pkg/mudstore"
	"github.com/swampgate/swampmud/pkg/world"
)

var (
	ErrBadCredentials = errors.New("server: invalid name or password")
	ErrNameTaken      = errors.New("server: that name is already taken")
	ErrBadName        = errors.New("server: invalid character name")
)

// Game owns all live game state. The mud core is single-threaded by
// design, so every entry point that touches characters or the world
// takes the game mutex. Connection I/O stays outside the lock.
type Game struct {
	mu      sync.Mutex
	Library *mud.Library
	World   *world.World
	Store   *mudstore.Store
	Bus     *events.Bus
	Conns   *ConnManager
	Texts   *TextFiles
	Journal *Journal
	Metrics *Metrics

	chars map[mud.ID]*mud.Character
	names map[string]mud.ID             // lowercased name -> live character
	recs  map[mud.ID]*mudstore.PlayerRecord // last stored record, carries the password hash

	rng       *rand.Rand
	startTime time.Time

	// Paths the archive system needs.
	ConfPath   string
	WorldPath  string
	TextDir    string
	ArchiveDir string

	stopAuto chan struct{}
}

// NewGame wires the core pieces together.
func NewGame(lib *mud.Library, w *world.World, store *mudstore.Store, bus *events.Bus) *Game {
	return &Game{
		Library:   lib,
		World:     w,
		Store:     store,
		Bus:       bus,
		Conns:     NewConnManager(bus),
		chars:     make(map[mud.ID]*mud.Character),
		names:     make(map[string]mud.ID),
		recs:      make(map[mud.ID]*mudstore.PlayerRecord),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		startTime: time.Now(),
	}
}

// StartTime returns when the game was created.
func (g *Game) StartTime() time.Time { return g.startTime }

func validName(name string) bool {
	if len(name) < 2 || len(name) > 32 {
		return false
	}
	if !unicode.IsLetter(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return false
		}
	}
	return true
}

// Connect authenticates an existing player and brings their character
// into the world. If the character is already online (a second client),
// the live character is returned and no new spawn happens.
func (g *Game) Connect(name, password string) (*mud.Character, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, err := g.Store.GetPlayer(name)
	if err != nil {
		if errors.Is(err, mudstore.ErrNoPlayer) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := rec.CheckPassword(password); err != nil {
		return nil, ErrBadCredentials
	}
	return g.connectLocked(rec)
}

// ConnectAuthed brings a character online without a password check.
// Used for sessions already authenticated by a validated token.
func (g *Game) ConnectAuthed(name string) (*mud.Character, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, err := g.Store.GetPlayer(name)
	if err != nil {
		if errors.Is(err, mudstore.ErrNoPlayer) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	return g.connectLocked(rec)
}

// connectLocked restores and spawns a character from its stored record,
// or hands back the live one when already online. Caller holds the lock.
func (g *Game) connectLocked(rec *mudstore.PlayerRecord) (*mud.Character, error) {
	if id, online := g.names[strings.ToLower(rec.Name)]; online {
		return g.chars[id], nil
	}
	ch, err := mudstore.Restore(rec, g.Library)
	if err != nil {
		return nil, err
	}
	loc := g.World.Start()
	if rec.Location != "" {
		if saved, ok := g.World.Room(rec.Location); ok {
			loc = saved
		}
	}
	g.bringOnline(ch, rec)
	ch.Message(fmt.Sprintf("Welcome back to %s, %s.", g.World.Name(), ch.Name()))
	if err := ch.SetLocation(loc); err != nil {
		log.Printf("game: enter world for %s: %v", ch.Name(), err)
	}
	loc.Message(fmt.Sprintf("%s appears.", ch.Name()), ch)
	if g.Metrics != nil {
		g.Metrics.LoginsTotal.Inc()
	}
	return ch, nil
}

// Create makes a brand-new character, persists it, and spawns it at the
// world's start location. An empty className picks a weighted-random
// class from the library.
func (g *Game) Create(name, password, className string) (*mud.Character, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	name = strings.TrimSpace(name)
	if !validName(name) {
		return nil, ErrBadName
	}
	if _, online := g.names[strings.ToLower(name)]; online {
		return nil, ErrNameTaken
	}
	if _, err := g.Store.GetPlayer(name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, mudstore.ErrNoPlayer) {
		return nil, err
	}

	var class *mud.Class
	if className == "" {
		class = g.Library.PickCharClass(g.rng)
	} else {
		var ok bool
		class, ok = g.Library.CharClass(className)
		if !ok {
			return nil, fmt.Errorf("server: unknown class %q", className)
		}
	}

	hash, err := mudstore.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("server: hash password: %w", err)
	}

	ch := mud.NewCharacter(class, name)
	rec := mudstore.Snapshot(ch, nil)
	rec.PassHash = hash
	rec.Location = g.World.Start().Name()
	if err := g.Store.PutPlayer(rec); err != nil {
		return nil, err
	}

	g.bringOnline(ch, rec)
	ch.Message(fmt.Sprintf("Welcome to %s! You are a %s.", g.World.Name(), class.Name()))
	start := g.World.Start()
	if err := ch.SetLocation(start); err != nil {
		log.Printf("game: enter world for %s: %v", ch.Name(), err)
	}
	start.Message(fmt.Sprintf("%s appears.", ch.Name()), ch)
	if g.Metrics != nil {
		g.Metrics.CreatesTotal.Inc()
		g.Metrics.LoginsTotal.Inc()
	}
	return ch, nil
}

// bringOnline registers a live character and wires its output to the
// event bus. Caller holds the game mutex.
func (g *Game) bringOnline(ch *mud.Character, rec *mudstore.PlayerRecord) {
	id := ch.ID()
	g.chars[id] = ch
	g.names[strings.ToLower(ch.Name())] = id
	g.recs[id] = rec
	ch.Notify = func(text string) {
		g.Bus.EmitToChar(id, events.Event{Type: events.EvText, Char: id, Text: text})
	}
	g.Bus.EmitToChar(id, events.Event{
		Type: events.EvConnect,
		Char: id,
		Data: map[string]any{"name": ch.Name(), "class": ch.Class().Name()},
	})
}

// Disconnect saves a character and removes it from the world. Called
// when the last descriptor for the character goes away.
func (g *Game) Disconnect(id mud.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.chars[id]
	if !ok {
		return nil
	}
	rec := mudstore.Snapshot(ch, g.recs[id])
	if err := g.Store.PutPlayer(rec); err != nil {
		log.Printf("game: save %s on disconnect: %v", ch.Name(), err)
	}
	delete(g.chars, id)
	delete(g.names, strings.ToLower(ch.Name()))
	delete(g.recs, id)

	// Leave the world quietly; Despawn is for death, not logout.
	if loc := ch.Location(); loc != nil {
		loc.Message(fmt.Sprintf("%s fades away.", ch.Name()), ch)
	}
	err := ch.SetLocation(nil)
	ch.Notify = nil
	g.Bus.Cleanup()
	return err
}

// Command runs one line of player input through the character's parser.
func (g *Game) Command(id mud.ID, line string) {
	if g.Journal != nil {
		g.Journal.Record(g.CharName(id), line)
	}
	if g.Metrics != nil {
		g.Metrics.CommandsTotal.Inc()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.chars[id]
	if !ok {
		return
	}
	ch.Command(line)
}

// Char returns the live character for an ID.
func (g *Game) Char(id mud.ID) *mud.Character {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chars[id]
}

// CharName returns a live character's name, or "" when offline.
func (g *Game) CharName(id mud.ID) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.chars[id]; ok {
		return ch.Name()
	}
	return ""
}

// Online returns the names of all live characters, for WHO.
func (g *Game) Online() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.chars))
	for _, ch := range g.chars {
		names = append(names, ch.Name())
	}
	return names
}

// PlayersOnline returns the live character count.
func (g *Game) PlayersOnline() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.chars)
}

// RoomCount returns the number of rooms in the world.
func (g *Game) RoomCount() int {
	return len(g.World.Rooms())
}

// SaveAll snapshots every live character into the store in one batch.
func (g *Game) SaveAll() error {
	g.mu.Lock()
	recs := make([]*mudstore.PlayerRecord, 0, len(g.chars))
	for id, ch := range g.chars {
		rec := mudstore.Snapshot(ch, g.recs[id])
		g.recs[id] = rec
		recs = append(recs, rec)
	}
	g.mu.Unlock()
	if len(recs) == 0 {
		return nil
	}
	return g.Store.PutPlayers(recs...)
}

// StartAutosave begins periodic SaveAll calls. Stop with StopBackground.
func (g *Game) StartAutosave(interval time.Duration) {
	if g.stopAuto == nil {
		g.stopAuto = make(chan struct{})
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := g.SaveAll(); err != nil {
					log.Printf("game: autosave: %v", err)
				}
			case <-g.stopAuto:
				return
			}
		}
	}()
}

// StartAutoArchive begins periodic full archives, pruning old ones down
// to retain. Stop with StopBackground.
func (g *Game) StartAutoArchive(interval time.Duration, retain int) {
	if g.stopAuto == nil {
		g.stopAuto = make(chan struct{})
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				path, err := g.Archive()
				if err != nil {
					log.Printf("game: auto-archive: %v", err)
					continue
				}
				log.Printf("game: archived to %s", path)
				if retain > 0 {
					pruneArchives(g.ArchiveDir, retain)
				}
			case <-g.stopAuto:
				return
			}
		}
	}()
}

// StopBackground halts the autosave and auto-archive goroutines.
func (g *Game) StopBackground() {
	if g.stopAuto != nil {
		close(g.stopAuto)
		g.stopAuto = nil
	}
}

// Archive saves all players and writes a full archive of the game data.
func (g *Game) Archive() (string, error) {
	if err := g.SaveAll(); err != nil {
		return "", err
	}
	count := 0
	if names, err := g.Store.PlayerNames(); err == nil {
		count = len(names)
	}
	return archive.Create(archive.Params{
		StoreSnapshotFunc: g.Store.Backup,
		WorldPath:         g.WorldPath,
		ConfPath:          g.ConfPath,
		TextDir:           g.TextDir,
		ArchiveDir:        g.ArchiveDir,
		WorldName:         g.World.Name(),
		PlayerCount:       count,
	})
}

// pruneArchives deletes the oldest archives past the retain count.
func pruneArchives(dir string, retain int) {
	infos, err := archive.List(dir)
	if err != nil || len(infos) <= retain {
		return
	}
	for _, info := range infos[retain:] {
		if err := os.Remove(info.Path); err != nil {
			log.Printf("game: prune archive %s: %v", info.Filename, err)
		}
	}
}
