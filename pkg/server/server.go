package server

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/swampgate/swampmud/pkg/mud"
)

// Config holds the TCP listener configuration.
type Config struct {
	Port        int
	IdleTimeout time.Duration // 0 = no idle disconnect
	MaxRetries  int
	WelcomeText string
}

// Server is the telnet-style TCP front end.
type Server struct {
	Game *Game
	cfg  Config

	ln   net.Listener
	wg   sync.WaitGroup
	done chan struct{}
}

// NewServer creates a TCP server bound to a game.
func NewServer(game *Game, cfg Config) *Server {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.WelcomeText == "" {
		cfg.WelcomeText = WelcomeText
	}
	return &Server{
		Game: game,
		cfg:  cfg,
		done: make(chan struct{}),
	}
}

// Start listens and serves until Stop is called. It blocks.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("server: listen on %d: %w", s.cfg.Port, err)
	}
	s.ln = ln
	log.Printf("server: listening on %s", ln.Addr())

	s.acceptLoop(ln)
	s.wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-s.done:
				return
			default:
			}
			log.Printf("server: accept: %v", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Stop closes the listener and waits for connections to finish.
func (s *Server) Stop() {
	close(s.done)
	if s.ln != nil {
		s.ln.Close()
	}
	s.Game.StopBackground()
	s.wg.Wait()
}

func (s *Server) handleConnection(conn net.Conn) {
	d := &Descriptor{
		ID:        s.Game.Conns.NextID(),
		Conn:      conn,
		State:     ConnLogin,
		Addr:      conn.RemoteAddr().String(),
		ConnTime:  time.Now(),
		LastCmd:   time.Now(),
		Retries:   s.cfg.MaxRetries,
		Transport: TransportTCP,
	}
	s.Game.Conns.Add(d)
	log.Printf("[%d] connection from %s", d.ID, d.Addr)

	defer func() {
		s.dropDescriptor(d)
		conn.Close()
		log.Printf("[%d] connection closed", d.ID)
	}()

	welcome := s.cfg.WelcomeText
	if s.Game.Texts != nil {
		if txt := s.Game.Texts.Connect(); txt != "" {
			welcome = txt
		}
	}
	d.Send(welcome)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 8192), 8192)
	for {
		if s.cfg.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				var nerr net.Error
				if errors.As(err, &nerr) && nerr.Timeout() {
					d.Send("Idle too long, goodbye.")
				}
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d.LastCmd = time.Now()
		d.CmdCount++

		switch d.State {
		case ConnLogin:
			if !s.handleLoginCommand(d, line) {
				return
			}
		case ConnPlaying:
			if strings.EqualFold(line, "QUIT") {
				s.sendQuitText(d)
				return
			}
			if strings.EqualFold(line, "WHO") {
				s.sendWho(d)
				continue
			}
			s.Game.Command(d.Char, line)
		}
	}
}

// handleLoginCommand processes one login-screen line. Returns false when
// the connection should close.
func (s *Server) handleLoginCommand(d *Descriptor, line string) bool {
	command, user, password := ParseConnect(line)

	switch {
	case command == "quit":
		s.sendQuitText(d)
		return false

	case command == "who":
		s.sendWho(d)
		return true

	case strings.HasPrefix(command, "co"):
		ch, err := s.Game.Connect(user, password)
		if err != nil {
			d.Retries--
			if errors.Is(err, ErrBadCredentials) {
				d.Send("Either that character does not exist, or has a different password.")
			} else {
				log.Printf("[%d] connect %q: %v", d.ID, user, err)
				d.Send("Trouble connecting. Try again later.")
			}
			if d.Retries <= 0 {
				d.Send("Too many failed attempts.")
				return false
			}
			return true
		}
		s.finishLogin(d, ch.ID(), ch.Name())
		return true

	case strings.HasPrefix(command, "cr"):
		// Optional trailing class name: create <name> <password> [class]
		className := ""
		if i := strings.IndexByte(password, ' '); i >= 0 {
			className = strings.TrimSpace(password[i+1:])
			password = password[:i]
		}
		if user == "" || password == "" {
			d.Send("Use: create <name> <password> [class]")
			return true
		}
		ch, err := s.Game.Create(user, password, className)
		if err != nil {
			switch {
			case errors.Is(err, ErrNameTaken):
				d.Send("That name is already taken.")
			case errors.Is(err, ErrBadName):
				d.Send("Names are 2-32 letters, digits, and spaces, starting with a letter.")
			default:
				log.Printf("[%d] create %q: %v", d.ID, user, err)
				d.Send("Trouble creating that character. Try again later.")
			}
			return true
		}
		if s.Game.Texts != nil {
			if txt := s.Game.Texts.NewUser(); txt != "" {
				d.Send(txt)
			}
		}
		s.finishLogin(d, ch.ID(), ch.Name())
		return true

	default:
		d.Send(`Use "connect <name> <password>" or "create <name> <password>".`)
		return true
	}
}

// finishLogin binds the descriptor, shows the MOTD, and looks around.
func (s *Server) finishLogin(d *Descriptor, char mud.ID, name string) {
	s.Game.Conns.Login(d, char, name)
	log.Printf("[%d] %s connected from %s", d.ID, name, d.Addr)
	if s.Game.Texts != nil {
		if txt := s.Game.Texts.MOTD(); txt != "" {
			d.Send(txt)
		}
	}
	s.Game.Command(char, "look")
}

func (s *Server) sendWho(d *Descriptor) {
	names := s.Game.Online()
	sort.Strings(names)
	var b strings.Builder
	fmt.Fprintf(&b, "%d character(s) online:\r\n", len(names))
	for _, n := range names {
		b.WriteString("  " + n + "\r\n")
	}
	d.Send(strings.TrimRight(b.String(), "\r\n"))
}

func (s *Server) sendQuitText(d *Descriptor) {
	quit := "Goodbye."
	if s.Game.Texts != nil {
		if txt := s.Game.Texts.Quit(); txt != "" {
			quit = txt
		}
	}
	d.Send(quit)
}

// dropDescriptor removes a descriptor and, when it was the last one for
// its character, saves and despawns the character.
func (s *Server) dropDescriptor(d *Descriptor) {
	char := d.Char
	s.Game.Conns.Remove(d)
	if char != 0 && !s.Game.Conns.IsConnected(char) {
		if err := s.Game.Disconnect(char); err != nil {
			log.Printf("[%d] disconnect: %v", d.ID, err)
		}
	}
}
