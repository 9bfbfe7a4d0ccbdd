// Package handlers runs the calculator command loop over any line-oriented
// connection and renders its state as text.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pointbuy/internal/frontend/telnet"
	"github.com/cory-johannsen/pointbuy/internal/frontend/websocket"
	"github.com/cory-johannsen/pointbuy/internal/game/command"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
	"github.com/cory-johannsen/pointbuy/internal/game/session"
)

// LineConn is the transport-neutral view of a connected client.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	WritePrompt(prompt string) error
	RemoteAddr() string
}

const welcomeBanner = telnet.Bold + telnet.BrightCyan + "Ability Score Point Buy" + telnet.Reset + crlf +
	"Type " + telnet.Green + "help" + telnet.Reset + " for commands, " +
	telnet.Green + "rules" + telnet.Reset + " for races and costs, " +
	telnet.Green + "quit" + telnet.Reset + " to leave." + crlf

// CalcHandler implements telnet.SessionHandler and websocket.SessionHandler.
// Each connection gets its own session; nothing is shared between them.
type CalcHandler struct {
	sessions *session.Manager
	tables   *ruleset.TableRegistry
	registry *command.Registry
	logger   *zap.Logger
}

// NewCalcHandler creates a CalcHandler.
//
// Precondition: sessions, tables and logger must be non-nil.
func NewCalcHandler(sessions *session.Manager, tables *ruleset.TableRegistry, logger *zap.Logger) *CalcHandler {
	return &CalcHandler{
		sessions: sessions,
		tables:   tables,
		registry: command.DefaultRegistry(),
		logger:   logger,
	}
}

// HandleSession serves a Telnet client.
func (h *CalcHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	return h.Serve(ctx, conn)
}

// HandleWebSocket serves a browser client.
func (h *CalcHandler) HandleWebSocket(ctx context.Context, conn *websocket.Conn) error {
	return h.Serve(ctx, conn)
}

// Serve opens a session for conn and processes commands until the client
// quits, disconnects or ctx is cancelled.
//
// Postcondition: The session is closed. Returns nil on quit, ctx.Err() on
// cancellation, or a wrapped I/O error.
func (h *CalcHandler) Serve(ctx context.Context, conn LineConn) error {
	sess, err := h.sessions.Open(conn.RemoteAddr())
	if err != nil {
		if errors.Is(err, session.ErrCapacity) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The calculator is full. Please try again later."))
		}
		return fmt.Errorf("opening session: %w", err)
	}
	log := h.logger.With(
		zap.String("session_id", sess.ID),
		zap.String("remote_addr", conn.RemoteAddr()),
	)
	log.Info("session opened",
		zap.String("edition", string(sess.Edition())),
		zap.Int("active", h.sessions.Count()),
	)

	commands := 0
	defer func() {
		_ = h.sessions.Close(sess.ID)
		log.Info("session closed",
			zap.Int("commands", commands),
			zap.Duration("duration", time.Since(sess.Opened)),
		)
	}()

	if err := conn.WriteLine(welcomeBanner + h.renderSheet(sess)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(h.prompt(sess)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}
		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}
		commands++

		out, quit := h.Dispatch(sess, parsed, log)
		if err := conn.WriteLine(out); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if quit {
			return nil
		}
	}
}

// Dispatch runs one parsed command against sess and returns the text to
// show. quit is true when the client asked to leave.
//
// Precondition: sess must not be nil; parsed.Command must be non-empty.
func (h *CalcHandler) Dispatch(sess *session.Session, parsed command.ParseResult, log *zap.Logger) (out string, quit bool) {
	cmd, ok := h.registry.Resolve(parsed.Command)
	if !ok {
		return telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", parsed.Command), false
	}

	var (
		msg string
		err error
	)
	switch cmd.Handler {
	case command.HandlerQuit:
		return telnet.Colorize(telnet.Cyan, "Goodbye!"), true
	case command.HandlerHelp:
		return RenderHelp(h.registry, parsed.RawArgs), false
	case command.HandlerShow:
		return h.renderSheet(sess), false
	case command.HandlerRules:
		return RenderRules(sess.Edition()), false
	case command.HandlerTables:
		return RenderTables(h.tables.For(sess.Edition())), false
	case command.HandlerEdition:
		msg, err = command.HandleEdition(sess, parsed.Args)
	case command.HandlerReset:
		msg, err = command.HandleReset(sess, parsed.Args)
	default:
		err = sess.With(func(s *session.Sheet) error {
			var serr error
			msg, serr = h.applySheet(s, cmd, parsed)
			return serr
		})
	}

	if err != nil {
		log.Debug("command rejected",
			zap.String("command", cmd.Name),
			zap.String("args", parsed.RawArgs),
			zap.Error(err),
		)
		return telnet.Colorize(telnet.Red, capitalize(err.Error())+"."), false
	}
	log.Debug("command applied", zap.String("command", cmd.Name), zap.String("args", parsed.RawArgs))

	out = telnet.Colorize(telnet.BrightGreen, msg)
	if cmd.Mutates {
		out += crlf + h.renderSheet(sess)
	}
	return out, false
}

// applySheet runs a command that only touches the active sheet.
func (h *CalcHandler) applySheet(s *session.Sheet, cmd *command.Command, p command.ParseResult) (string, error) {
	switch cmd.Handler {
	case command.HandlerInc:
		return command.HandleInc(s, p.Args)
	case command.HandlerDec:
		return command.HandleDec(s, p.Args)
	case command.HandlerPool:
		return command.HandlePool(s, p.RawArgs)
	case command.HandlerLimits:
		return command.HandleLimits(s, p.Args)
	case command.HandlerRace:
		return command.HandleRace(s, p.RawArgs)
	case command.HandlerTemplate:
		return command.HandleTemplate(s, p.RawArgs)
	case command.HandlerPick:
		return command.HandlePick(s, p.Args)
	case command.HandlerFeat:
		return command.HandleFeat(s, p.Args)
	case command.HandlerCustom:
		return command.HandleCustom(s, p.Args)
	case command.HandlerCosts:
		return command.HandleCosts(s, p.Args)
	case command.HandlerCost:
		return command.HandleCost(s, p.Args)
	case command.HandlerNegative:
		return command.HandleNegative(s, p.Args)
	case command.HandlerLoad:
		return command.HandleLoad(s, h.tables, p.Args)
	}
	return "", fmt.Errorf("command %s is not implemented", cmd.Name)
}

func (h *CalcHandler) renderSheet(sess *session.Session) string {
	var out string
	_ = sess.With(func(s *session.Sheet) error {
		out = RenderSheet(s)
		return nil
	})
	return out
}

// prompt shows the edition and the points left.
func (h *CalcHandler) prompt(sess *session.Session) string {
	var remaining, pool int
	_ = sess.With(func(s *session.Sheet) error {
		remaining = s.Result().RemainingPoints
		pool = s.Pool
		return nil
	})
	return telnet.Colorf(telnet.BrightCyan, "[%s %d/%d]> ", sess.Edition(), remaining, pool)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
