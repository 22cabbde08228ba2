package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swampgate/swampmud/pkg/events"
	"github.com/swampgate/swampmud/pkg/mud"
)

// WebConfig holds configuration for the HTTP/WebSocket server.
type WebConfig struct {
	Port        int
	Host        string
	CORSOrigins []string
	JWTSecret   string
	JWTExpiry   int
}

// WebServer provides WebSocket transport and a small REST surface
// alongside the TCP game server.
type WebServer struct {
	game     *Game
	httpSrv  *http.Server
	mux      *http.ServeMux
	auth     *AuthService
	upgrader websocket.Upgrader
	metrics  *Metrics
}

// NewWebServer creates a web server bound to the game.
func NewWebServer(game *Game, cfg WebConfig) *WebServer {
	ws := &WebServer{
		game: game,
		mux:  http.NewServeMux(),
		auth: NewAuthService(game.Store, cfg.JWTSecret, cfg.JWTExpiry),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(cfg.CORSOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range cfg.CORSOrigins {
					if strings.EqualFold(o, origin) {
						return true
					}
				}
				return false
			},
		},
	}
	ws.registerRoutes(cfg)
	return ws
}

// Auth returns the auth service.
func (ws *WebServer) Auth() *AuthService { return ws.auth }

func (ws *WebServer) registerRoutes(cfg WebConfig) {
	ws.httpSrv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: ws.mux,
	}

	ws.mux.HandleFunc("GET /ws", ws.handleWebSocket)
	ws.mux.HandleFunc("POST /api/v1/auth/login", ws.handleAuthLogin)
	ws.mux.HandleFunc("POST /api/v1/auth/refresh", ws.handleAuthRefresh)
	ws.mux.HandleFunc("GET /api/v1/who", ws.handleWho)
	ws.mux.HandleFunc("GET /health", ws.handleHealth)

	ws.metrics = NewMetrics(ws.game, time.Now())
	ws.game.Metrics = ws.metrics
	ws.mux.Handle("GET /metrics", ws.metrics.Handler())
}

// Start begins listening. It blocks until Stop.
func (ws *WebServer) Start() error {
	log.Printf("web: listening on %s", ws.httpSrv.Addr)
	err := ws.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the web server.
func (ws *WebServer) Stop(ctx context.Context) error {
	return ws.httpSrv.Shutdown(ctx)
}

// --- WebSocket transport ---

// WSMessage is the JSON frame format for WebSocket clients.
type WSMessage struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Command string         `json:"command,omitempty"`
}

// wsConn wraps the WebSocket connection with a write mutex.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (wc *wsConn) sendJSON(msg WSMessage) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	wc.conn.WriteJSON(msg)
}

// handleWebSocket upgrades the connection and creates a game Descriptor
// for the client. A valid token in the query string or Authorization
// header logs the character in immediately.
func (ws *WebServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var claims *Claims
	token := r.URL.Query().Get("token")
	if token == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = auth[7:]
		}
	}
	if token != "" {
		var err error
		claims, err = ws.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
	}

	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: upgrade: %v", err)
		return
	}

	d, wc := newWSDescriptor(ws.game, conn, r.RemoteAddr)
	ws.game.Conns.Add(d)

	if claims != nil {
		ch, err := ws.game.ConnectAuthed(claims.PlayerName)
		if err != nil {
			wc.sendJSON(WSMessage{Type: "error", Text: "Login failed."})
		} else {
			ws.loginWS(d, wc, ch)
		}
	} else {
		wc.sendJSON(WSMessage{Type: "welcome", Text: `Send {"type":"login","command":"connect name password"} to authenticate.`})
	}

	go ws.wsReadLoop(d, wc)
}

// newWSDescriptor creates a Descriptor whose send paths emit JSON frames.
func newWSDescriptor(game *Game, conn *websocket.Conn, addr string) (*Descriptor, *wsConn) {
	wc := &wsConn{conn: conn}
	d := &Descriptor{
		ID:        game.Conns.NextID(),
		State:     ConnLogin,
		Addr:      addr,
		ConnTime:  time.Now(),
		LastCmd:   time.Now(),
		Retries:   3,
		Transport: TransportWebSocket,
	}
	d.SendFunc = func(msg string) {
		wc.sendJSON(WSMessage{Type: "text", Text: msg})
	}
	d.ReceiveFunc = func(ev events.Event) {
		wc.sendJSON(WSMessage{
			Type: ev.Type.String(),
			Text: ev.Text,
			Data: ev.Data,
		})
	}
	return d, wc
}

func (ws *WebServer) loginWS(d *Descriptor, wc *wsConn, ch *mud.Character) {
	ws.game.Conns.Login(d, ch.ID(), ch.Name())
	wc.sendJSON(WSMessage{
		Type: "login",
		Data: map[string]any{
			"name":  ch.Name(),
			"class": ch.Class().Name(),
		},
	})
	ws.game.Command(ch.ID(), "look")
}

func (ws *WebServer) wsReadLoop(d *Descriptor, wc *wsConn) {
	defer func() {
		char := d.Char
		ws.game.Conns.Remove(d)
		if char != 0 && !ws.game.Conns.IsConnected(char) {
			if err := ws.game.Disconnect(char); err != nil {
				log.Printf("[ws:%d] disconnect: %v", d.ID, err)
			}
		}
		wc.conn.Close()
		log.Printf("[ws:%d] closed from %s", d.ID, d.Addr)
	}()

	for {
		_, msgBytes, err := wc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws:%d] read: %v", d.ID, err)
			}
			return
		}
		d.LastCmd = time.Now()

		var msg WSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			wc.sendJSON(WSMessage{Type: "error", Text: "Invalid JSON message"})
			continue
		}

		switch msg.Type {
		case "command":
			if d.State == ConnLogin {
				ws.handleWSLogin(d, wc, msg.Command)
			} else {
				d.CmdCount++
				ws.game.Command(d.Char, msg.Command)
			}
		case "login":
			ws.handleWSLogin(d, wc, msg.Command)
		default:
			wc.sendJSON(WSMessage{Type: "error", Text: fmt.Sprintf("Unknown message type: %s", msg.Type)})
		}
	}
}

func (ws *WebServer) handleWSLogin(d *Descriptor, wc *wsConn, input string) {
	command, user, password := ParseConnect(input)
	var (
		ch  *mud.Character
		err error
	)
	switch {
	case strings.HasPrefix(command, "co"):
		ch, err = ws.game.Connect(user, password)
	case strings.HasPrefix(command, "cr"):
		className := ""
		if i := strings.IndexByte(password, ' '); i >= 0 {
			className = strings.TrimSpace(password[i+1:])
			password = password[:i]
		}
		ch, err = ws.game.Create(user, password, className)
	default:
		wc.sendJSON(WSMessage{Type: "error", Text: "Use: connect <name> <password>"})
		return
	}
	if err != nil {
		wc.sendJSON(WSMessage{Type: "error", Text: "Invalid credentials"})
		return
	}
	ws.loginWS(d, wc, ch)
}

// --- REST handlers ---

func (ws *WebServer) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	token, err := ws.auth.Login(req.Name, req.Password)
	if err != nil {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (ws *WebServer) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
		return
	}
	newToken, err := ws.auth.RefreshToken(auth[7:])
	if err != nil {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": newToken})
}

func (ws *WebServer) handleWho(w http.ResponseWriter, r *http.Request) {
	names := ws.game.Online()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":   len(names),
		"players": names,
	})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"version":        Version,
		"world":          ws.game.World.Name(),
		"uptime_seconds": time.Since(ws.game.StartTime()).Seconds(),
	})
}
