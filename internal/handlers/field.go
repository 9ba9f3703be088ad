package handlers

import (
	"fmt"

	"github.com/monbattle/engine/internal/parser"
	"github.com/monbattle/engine/pkg/core"
)

func (s *Service) newGame(args []string) (Response, error) {
	starter, name, err := s.deps.Parser.NewGame(args)
	if err != nil {
		return Response{}, err
	}
	msgs, err := s.deps.Session.NewGame(name, starter)
	if err != nil {
		return Response{}, err
	}
	return say(msgs...), nil
}

func (s *Service) state([]string) (Response, error) {
	st, err := s.deps.Session.State()
	if err != nil {
		return Response{}, err
	}
	return Response{Messages: Summary(st), State: &st, Battle: st.Battle}, nil
}

// Summary describes the player, the party and the bag in a few lines.
func Summary(st core.GameState) []string {
	lines := []string{fmt.Sprintf("%s at %s, $%d, %d badge(s)", st.PlayerName, st.Location, st.Money, len(st.Badges))}
	for i, c := range st.Party {
		line := fmt.Sprintf("%d. %s Lv%d %d/%d HP", i+1, c.Name, c.Level, c.CurrentHP, c.MaxHP)
		if !c.Status.IsNone() {
			line += " " + c.Status.String()
		}
		lines = append(lines, line)
	}
	stored := 0
	for _, box := range st.Boxes {
		stored += len(box)
	}
	if stored > 0 {
		lines = append(lines, fmt.Sprintf("%d Pokemon in the PC", stored))
	}
	return lines
}

func (s *Service) travel(args []string) (Response, error) {
	loc := parser.Name(args)
	if err := s.deps.Session.Travel(loc); err != nil {
		return Response{}, err
	}
	return say(fmt.Sprintf("You arrived at %s.", loc)), nil
}

func (s *Service) use(args []string) (Response, error) {
	st, err := s.deps.Session.State()
	if err != nil {
		return Response{}, err
	}
	req, err := s.deps.Parser.Use(args, st)
	if err != nil {
		return Response{}, err
	}
	msgs, err := s.deps.Session.UseItem(req.ItemID, req.PartyIndex, req.MoveSlot)
	if err != nil {
		return Response{}, err
	}
	return say(msgs...), nil
}

func (s *Service) buy(args []string) (Response, error) {
	p, err := s.deps.Parser.Buy(args)
	if err != nil {
		return Response{}, err
	}
	return one(s.deps.Session.Buy(p.ItemID, p.Quantity))
}

func (s *Service) deposit(args []string) (Response, error) {
	st, err := s.deps.Session.State()
	if err != nil {
		return Response{}, err
	}
	party, box, err := parser.Deposit(args, st)
	if err != nil {
		return Response{}, err
	}
	return one(s.deps.Session.Deposit(party, box))
}

func (s *Service) withdraw(args []string) (Response, error) {
	st, err := s.deps.Session.State()
	if err != nil {
		return Response{}, err
	}
	slot, err := parser.Boxed(args, st)
	if err != nil {
		return Response{}, err
	}
	return one(s.deps.Session.Withdraw(slot.Box, slot.Index))
}

func (s *Service) release(args []string) (Response, error) {
	st, err := s.deps.Session.State()
	if err != nil {
		return Response{}, err
	}
	slot, err := parser.Boxed(args, st)
	if err != nil {
		return Response{}, err
	}
	return one(s.deps.Session.Release(slot.Box, slot.Index))
}

func (s *Service) swap(args []string) (Response, error) {
	st, err := s.deps.Session.State()
	if err != nil {
		return Response{}, err
	}
	i, j, err := parser.Swap(args, st)
	if err != nil {
		return Response{}, err
	}
	return one(s.deps.Session.Swap(i, j))
}

func (s *Service) heal([]string) (Response, error) {
	return one(s.deps.Session.Heal())
}

func slot(args []string) string {
	if name := parser.Name(args); name != "" {
		return name
	}
	return DefaultSlot
}

func (s *Service) save(args []string) (Response, error) {
	return one(s.deps.Session.Save(slot(args)))
}

func (s *Service) load(args []string) (Response, error) {
	msg, err := s.deps.Session.Load(slot(args))
	if err != nil {
		return Response{}, err
	}
	resp := say(msg)
	if snap, ok := s.deps.Session.Battle(); ok {
		resp.Battle = &snap
	}
	return resp, nil
}

func one(msg string, err error) (Response, error) {
	if err != nil {
		return Response{}, err
	}
	return say(msg), nil
}
