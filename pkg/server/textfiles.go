package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// TextFiles caches the server's text screens. Files are reloaded
// automatically when they change on disk, so operators can edit the
// MOTD without a restart.
type TextFiles struct {
	mu  sync.RWMutex
	dir string

	connect string // Welcome screen at connect time
	motd    string // Shown after login
	newuser string // Shown after character creation
	quit    string // Shown at QUIT
}

// LoadTextFiles reads the known text files from a directory. Missing
// files are fine; the server falls back to built-in text.
func LoadTextFiles(dir string) *TextFiles {
	tf := &TextFiles{dir: dir}
	tf.reloadAll()
	return tf
}

func (tf *TextFiles) reloadAll() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.connect = loadFile(filepath.Join(tf.dir, "connect.txt"))
	tf.motd = loadFile(filepath.Join(tf.dir, "motd.txt"))
	tf.newuser = loadFile(filepath.Join(tf.dir, "newuser.txt"))
	tf.quit = loadFile(filepath.Join(tf.dir, "quit.txt"))
}

// loadFile returns file contents, or "" if the file can't be read.
func loadFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func (tf *TextFiles) Connect() string {
	tf.mu.RLock()
	defer tf.mu.RUnlock()
	return tf.connect
}

func (tf *TextFiles) MOTD() string {
	tf.mu.RLock()
	defer tf.mu.RUnlock()
	return tf.motd
}

func (tf *TextFiles) NewUser() string {
	tf.mu.RLock()
	defer tf.mu.RUnlock()
	return tf.newuser
}

func (tf *TextFiles) Quit() string {
	tf.mu.RLock()
	defer tf.mu.RUnlock()
	return tf.quit
}

// Watch starts a goroutine that reloads text files when they change.
// Returns the watcher so the caller can Close it on shutdown.
func (tf *TextFiles) Watch() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(tf.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if !strings.HasSuffix(ev.Name, ".txt") {
					continue
				}
				log.Printf("textfiles: %s changed, reloading", filepath.Base(ev.Name))
				tf.reloadAll()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("textfiles: watch error: %v", err)
			}
		}
	}()
	return watcher, nil
}
