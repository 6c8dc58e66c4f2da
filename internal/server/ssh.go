package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/gliderlabs/ssh"

	"wildstep/internal/game"
	"wildstep/internal/logger"
	"wildstep/internal/render"
)

// SSHServer wraps the SSH listener and game loop integration.
type SSHServer struct {
	gameLoop *game.GameLoop
	addr     string
	hostKey  string
	log      *slog.Logger

	mu     sync.Mutex
	server *ssh.Server
}

// NewSSHServer creates a new SSH server bound to the given address.
func NewSSHServer(addr, hostKey string, gl *game.GameLoop, log *slog.Logger) *SSHServer {
	if log == nil {
		log = slog.Default()
	}
	return &SSHServer{
		gameLoop: gl,
		addr:     addr,
		hostKey:  hostKey,
		log:      log.With("component", "ssh"),
	}
}

// Start listens for SSH connections until Shutdown is called.
func (s *SSHServer) Start() error {
	server := &ssh.Server{
		Addr:    s.addr,
		Handler: s.handleSession,
	}
	if err := server.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("set host key: %w", err)
	}

	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.log.Info("ssh server listening", "addr", s.addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("ssh listen: %w", err)
	}
	return nil
}

// Shutdown stops accepting sessions and waits for open ones until ctx ends.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		return
	}

	username := sess.User()
	if username == "" {
		username = "Anonymous"
	}

	sessionID := logger.NewSessionID()
	ctx := logger.WithSession(sess.Context(), sessionID)
	log := s.log.With(logger.AttrSession, sessionID, "user", username, "remote", sess.RemoteAddr().String())

	// username is the identity; a second login gets a suffixed id
	playerID, renderCh := s.gameLoop.AddPlayer(username)
	log = log.With("player", playerID)
	log.Info("player connected")
	defer func() {
		s.gameLoop.RemovePlayer(playerID)
		log.Info("player disconnected")
	}()

	termW := ptyReq.Window.Width
	termH := ptyReq.Window.Height
	var termMu sync.Mutex

	engine := render.NewEngine(termW, termH)

	io.WriteString(sess, render.EnableAltScreen())
	io.WriteString(sess, render.HideCursor())
	io.WriteString(sess, render.ClearScreen())
	defer func() {
		io.WriteString(sess, render.ShowCursor())
		io.WriteString(sess, render.DisableAltScreen())
	}()

	inputCh := s.gameLoop.InputChan()
	quitCh := make(chan struct{})

	go func() {
		defer close(quitCh)
		buf := make([]byte, 64)
		for {
			n, err := sess.Read(buf)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.Debug("session read ended", "error", err)
				}
				return
			}
			for _, action := range parseInput(buf[:n]) {
				if action == game.ActionQuit {
					return
				}
				select {
				case inputCh <- game.InputEvent{PlayerID: playerID, Action: action}:
				default:
					log.Warn("input dropped, game loop backlog full")
				}
			}
		}
	}()

	go func() {
		for win := range winCh {
			termMu.Lock()
			termW = win.Width
			termH = win.Height
			termMu.Unlock()
		}
	}()

	for {
		select {
		case <-quitCh:
			return
		case <-ctx.Done():
			return
		case state, ok := <-renderCh:
			if !ok {
				return
			}

			termMu.Lock()
			w, h := termW, termH
			termMu.Unlock()

			if output := engine.Render(FrameFor(playerID, state), w, h); len(output) > 0 {
				if _, err := io.WriteString(sess, output); err != nil {
					log.Debug("session write failed", "error", err)
					return
				}
			}
		}
	}
}

// FrameFor converts a game snapshot into what the renderer draws.
func FrameFor(playerID string, state game.GameState) render.Frame {
	players := make([]render.PlayerInfo, len(state.Players))
	for i, p := range state.Players {
		players[i] = render.PlayerInfo{
			ID:       p.ID,
			Name:     p.Name,
			X:        p.X,
			Y:        p.Y,
			Color:    p.Color,
			InBattle: p.InBattle,
		}
	}

	self := state.Self
	f := render.Frame{
		ViewerID: playerID,
		Map:      state.Map,
		Players:  players,
		Tick:     state.Tick,
		Online:   state.Online,
		HUD: render.HUDInfo{
			Name:      self.Name,
			Color:     self.Color,
			HP:        self.HP,
			MaxHP:     self.MaxHP,
			Level:     self.Level,
			EXP:       self.EXP % game.ExpPerLevel,
			EXPNeeded: game.ExpPerLevel,
			Zone:      state.Encounter.Zone,
			Steps:     state.Encounter.Steps,
			Repel:     state.Encounter.Repel,
			Lure:      state.Encounter.Lure,
			Enabled:   state.Encounter.Enabled,
		},
		Flash:    state.Flash,
		ZoneTint: state.ZoneTint,
		Light:    state.Light,
		DayPhase: state.DayPhase,
		Weather:  state.Weather,
	}

	if c := state.Combat; c != nil {
		enemies := make([]render.CombatEnemy, len(c.Enemies))
		for i, e := range c.Enemies {
			enemies[i] = render.CombatEnemy{Label: e.Label, HP: e.HP, MaxHP: e.MaxHP, Alive: e.Alive}
		}
		result := ""
		if c.Phase.Over() {
			result = c.Phase.String()
		}
		f.Combat = &render.CombatRenderData{
			PlayerTurn: c.Phase == game.CombatPlayerTurn,
			Result:     result,
			Round:      c.Round,
			Enemies:    enemies,
			Log:        c.Log,
			CanEscape:  c.CanEscape,
			IsBoss:     c.IsBoss,
		}
	}
	return f
}

// parseInput converts raw bytes into player actions.
// Handles WASD, arrow key escape sequences, combat keys 1-3, the R and L
// item toggles, Q, and Ctrl-C.
func parseInput(data []byte) []game.Action {
	var actions []game.Action
	i := 0
	for i < len(data) {
		// Check for escape sequences (arrow keys)
		if i+2 < len(data) && data[i] == 0x1b && data[i+1] == '[' {
			switch data[i+2] {
			case 'A':
				actions = append(actions, game.ActionUp)
			case 'B':
				actions = append(actions, game.ActionDown)
			case 'C':
				actions = append(actions, game.ActionRight)
			case 'D':
				actions = append(actions, game.ActionLeft)
			}
			i += 3
			continue
		}

		r, size := utf8.DecodeRune(data[i:])
		switch r {
		case 'w', 'W':
			actions = append(actions, game.ActionUp)
		case 's', 'S':
			actions = append(actions, game.ActionDown)
		case 'a', 'A':
			actions = append(actions, game.ActionLeft)
		case 'd', 'D':
			actions = append(actions, game.ActionRight)
		case '1':
			actions = append(actions, game.ActionAttack)
		case '2':
			actions = append(actions, game.ActionDefend)
		case '3':
			actions = append(actions, game.ActionFlee)
		case 'r', 'R':
			actions = append(actions, game.ActionToggleRepel)
		case 'l', 'L':
			actions = append(actions, game.ActionToggleLure)
		case 'q', 'Q':
			actions = append(actions, game.ActionQuit)
		case 3: // Ctrl-C
			actions = append(actions, game.ActionQuit)
		}
		i += size
	}
	return actions
}
