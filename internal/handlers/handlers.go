// Package handlers binds player commands to the session. Each command is a
// dispatcher handler that parses its arguments, runs one session operation
// and answers with a Response the shell can print.
package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/monbattle/engine/internal/dispatcher"
	"github.com/monbattle/engine/internal/engine"
	"github.com/monbattle/engine/internal/parser"
	"github.com/monbattle/engine/internal/session"
	"github.com/monbattle/engine/pkg/core"
)

// Dispatcher commands handled by the Service.
const (
	CmdNewGame   = ":NEW:GAME:"
	CmdState     = ":STATE:"
	CmdTravel    = ":TRAVEL:"
	CmdWild      = ":WILD:"
	CmdChallenge = ":CHALLENGE:"
	CmdMove      = ":MOVE:"
	CmdItem      = ":ITEM:"
	CmdSwitch    = ":SWITCH:"
	CmdFlee      = ":FLEE:"
	CmdLearn     = ":LEARN:"
	CmdUse       = ":USE:"
	CmdBuy       = ":BUY:"
	CmdDeposit   = ":DEPOSIT:"
	CmdWithdraw  = ":WITHDRAW:"
	CmdRelease   = ":RELEASE:"
	CmdSwap      = ":SWAP:"
	CmdHeal      = ":HEAL:"
	CmdSave      = ":SAVE:"
	CmdLoad      = ":LOAD:"
)

// DefaultSlot is the save slot used when none is named.
const DefaultSlot = "default"

// aliases maps the words a player types to commands.
var aliases = map[string]string{
	"new":       CmdNewGame,
	"start":     CmdNewGame,
	"state":     CmdState,
	"status":    CmdState,
	"party":     CmdState,
	"go":        CmdTravel,
	"travel":    CmdTravel,
	"wild":      CmdWild,
	"explore":   CmdWild,
	"challenge": CmdChallenge,
	"fight":     CmdChallenge,
	"move":      CmdMove,
	"attack":    CmdMove,
	"item":      CmdItem,
	"switch":    CmdSwitch,
	"flee":      CmdFlee,
	"run":       CmdFlee,
	"learn":     CmdLearn,
	"forget":    CmdLearn,
	"use":       CmdUse,
	"buy":       CmdBuy,
	"deposit":   CmdDeposit,
	"withdraw":  CmdWithdraw,
	"release":   CmdRelease,
	"swap":      CmdSwap,
	"heal":      CmdHeal,
	"save":      CmdSave,
	"load":      CmdLoad,
}

// CommandFor resolves a typed word to its dispatcher command.
func CommandFor(word string) (string, bool) {
	cmd, ok := aliases[strings.ToLower(word)]
	return cmd, ok
}

// Response is what a command answers with. Battle is set while a battle
// is running or when one just ended; State only for CmdState.
type Response struct {
	Messages []string        `json:"messages"`
	Battle   *core.Snapshot  `json:"battle,omitempty"`
	State    *core.GameState `json:"state,omitempty"`
	Outcome  string          `json:"outcome,omitempty"`
}

func say(msgs ...string) Response {
	return Response{Messages: msgs}
}

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Session *session.Session
	Parser  *parser.Parser
	Logger  *slog.Logger
}

// Service provides the command handlers.
type Service struct {
	deps Dependencies
}

// NewService creates a new handler service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// Register adds every command to d. All commands run synchronously: the
// player waits for each answer.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	handlers := map[string]func([]string) (Response, error){
		CmdNewGame:   s.newGame,
		CmdState:     s.state,
		CmdTravel:    s.travel,
		CmdWild:      s.wild,
		CmdChallenge: s.challenge,
		CmdMove:      s.move,
		CmdItem:      s.item,
		CmdSwitch:    s.switchTo,
		CmdFlee:      s.flee,
		CmdLearn:     s.learn,
		CmdUse:       s.use,
		CmdBuy:       s.buy,
		CmdDeposit:   s.deposit,
		CmdWithdraw:  s.withdraw,
		CmdRelease:   s.release,
		CmdSwap:      s.swap,
		CmdHeal:      s.heal,
		CmdSave:      s.save,
		CmdLoad:      s.load,
	}
	for cmd, h := range handlers {
		d.Register(cmd, s.wrap(cmd, h), dispatcher.Logged())
	}
}

// wrap turns refusals into a Response so only real failures reach the
// dispatcher as errors.
func (s *Service) wrap(cmd string, h func([]string) (Response, error)) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		resp, err := h(e.Args)
		if err == nil {
			return resp, nil
		}
		if msg, ok := refusal(err); ok {
			s.deps.Logger.Debug("Command refused", "command", cmd, "reason", msg)
			resp.Messages = append(resp.Messages, msg)
			return resp, nil
		}
		return nil, err
	}
}

// refusal maps errors the player caused to the message they should see.
func refusal(err error) (string, bool) {
	if msg, ok := engine.IsIllegal(err); ok {
		return msg, true
	}
	switch {
	case errors.Is(err, parser.ErrInvalidArgs):
		return sentence(parser.Message(err)), true
	case errors.Is(err, session.ErrNoGame):
		return "Start a new game first.", true
	case errors.Is(err, session.ErrNoBattle):
		return "You're not in a battle.", true
	case errors.Is(err, session.ErrInBattle):
		return "You can't do that during a battle!", true
	case errors.Is(err, session.ErrNoSaveStore):
		return "Saving is disabled.", true
	}
	return "", false
}

// sentence capitalizes a parse message and closes it with a period unless
// it already ends in punctuation.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	if last := r[len(r)-1]; last != '.' && last != '?' && last != '!' {
		r = append(r, '.')
	}
	return string(r)
}
