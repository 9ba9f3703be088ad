package handlers

import (
	"github.com/monbattle/engine/internal/engine"
	"github.com/monbattle/engine/internal/parser"
	"github.com/monbattle/engine/internal/session"
	"github.com/monbattle/engine/pkg/core"
)

func started(snap core.Snapshot) Response {
	return Response{Messages: snap.Log, Battle: &snap}
}

func (s *Service) wild([]string) (Response, error) {
	snap, err := s.deps.Session.StartWild()
	if err != nil {
		return Response{}, err
	}
	return started(snap), nil
}

func (s *Service) challenge(args []string) (Response, error) {
	name := parser.Name(args)
	if name == "" {
		return say("Challenge whom?"), nil
	}
	snap, err := s.deps.Session.Challenge(name)
	if err != nil {
		return Response{}, err
	}
	return started(snap), nil
}

// battle returns the running battle or session.ErrNoBattle.
func (s *Service) battle() (core.Snapshot, error) {
	snap, ok := s.deps.Session.Battle()
	if !ok {
		return core.Snapshot{}, session.ErrNoBattle
	}
	return snap, nil
}

// turn resolves one player action and reports the turn.
func (s *Service) turn(a core.Action) (Response, error) {
	res, err := s.deps.Session.Act(a)
	if err != nil {
		return Response{}, err
	}
	return turnResponse(res), nil
}

func turnResponse(res engine.TurnResult) Response {
	resp := Response{Messages: res.Messages, Battle: &res.Snapshot}
	if res.Outcome.Terminal() {
		resp.Outcome = string(res.Outcome.Kind)
	}
	return resp
}

func (s *Service) move(args []string) (Response, error) {
	snap, err := s.battle()
	if err != nil {
		return Response{}, err
	}
	a, err := s.deps.Parser.Move(args, snap)
	if err != nil {
		return Response{}, err
	}
	return s.turn(a)
}

func (s *Service) item(args []string) (Response, error) {
	snap, err := s.battle()
	if err != nil {
		return Response{}, err
	}
	a, err := s.deps.Parser.BattleItem(args, snap)
	if err != nil {
		return Response{}, err
	}
	return s.turn(a)
}

func (s *Service) switchTo(args []string) (Response, error) {
	snap, err := s.battle()
	if err != nil {
		return Response{}, err
	}
	a, err := parser.Switch(args, snap)
	if err != nil {
		return Response{}, err
	}
	return s.turn(a)
}

func (s *Service) flee([]string) (Response, error) {
	return s.turn(core.Flee())
}

func (s *Service) learn(args []string) (Response, error) {
	snap, err := s.battle()
	if err != nil {
		return Response{}, err
	}
	slot, err := parser.Forget(args, snap)
	if err != nil {
		return Response{}, err
	}
	res, err := s.deps.Session.LearnMove(slot)
	if err != nil {
		return Response{}, err
	}
	return turnResponse(res), nil
}
