package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/monbattle/engine/internal/catalog"
	"github.com/monbattle/engine/internal/dispatcher"
	"github.com/monbattle/engine/internal/handlers"
	"github.com/monbattle/engine/internal/storage"
	"github.com/monbattle/engine/internal/storage/memory"
	"github.com/monbattle/engine/internal/util"
	"github.com/monbattle/engine/pkg/core"
)

const helpText = `Field:   new <starter> [name] | state | go <place> | wild | challenge <trainer>
         use <item> <slot> [move] | buy <item> [n] | heal | swap <a> <b>
         deposit <slot> [box] | withdraw <box> <n> | release <box> <n>
         save [slot] | load [slot]
Battle:  move <n|name> | item <name> [slot] | switch <slot> | run | learn <n|skip> | log
Other:   help | quit`

// runPlay reads commands line by line until EOF or quit. A save in the
// configured slot is loaded first when there is one.
func runPlay(svc *services, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "%s %s. Type 'help' for commands.\n", AppName, CurrentVersion)
	if slot := svc.opts.Battle.SaveSlot; slot != "" {
		if resp, err := svc.command(handlers.CmdLoad, []string{slot}); err == nil && len(resp.Messages) > 0 && resp.Messages[0] == "Game loaded!" {
			svc.print(out, resp)
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		args := util.SplitArgs(scanner.Text())
		if len(args) == 0 {
			continue
		}

		switch strings.ToLower(args[0]) {
		case "quit", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, helpText)
			continue
		case "log":
			svc.printLog(out)
			continue
		}

		cmd, ok := handlers.CommandFor(args[0])
		if !ok {
			fmt.Fprintf(out, "Unknown command %q. Type 'help' for commands.\n", args[0])
			continue
		}
		resp, err := svc.command(cmd, args[1:])
		if err != nil {
			Logger.Error("Command failed", "command", cmd, "error", err)
			fmt.Fprintln(out, "Something went wrong. See the log for details.")
			continue
		}
		svc.print(out, resp)
	}
}

// command dispatches one player command and unwraps the handler result.
func (s *services) command(cmd string, args []string) (handlers.Response, error) {
	res, err := s.dispatcher.Dispatch(dispatcher.Event{Command: cmd, Args: args, Timestamp: time.Now()})
	if err != nil {
		return handlers.Response{}, err
	}
	resp, ok := res.(handlers.Response)
	if !ok {
		return handlers.Response{}, fmt.Errorf("unexpected result %T from %s", res, cmd)
	}
	return resp, nil
}

func (s *services) print(out io.Writer, resp handlers.Response) {
	for i, msg := range resp.Messages {
		if i > 0 && s.opts.Battle.MessageDelay > 0 {
			time.Sleep(s.opts.Battle.MessageDelay)
		}
		fmt.Fprintln(out, msg)
	}
	if resp.Battle != nil && !resp.Battle.Ended {
		fmt.Fprintln(out, battleStatus(*resp.Battle))
	}
}

func (s *services) printLog(out io.Writer) {
	snap, ok := s.session.Battle()
	if !ok {
		fmt.Fprintln(out, "You're not in a battle.")
		return
	}
	for _, line := range snap.RecentLog(s.opts.Battle.LogWindow) {
		fmt.Fprintln(out, line)
	}
}

// battleStatus is the one-line view of both active combatants.
func battleStatus(snap core.Snapshot) string {
	line := fmt.Sprintf("[%s] vs [%s]", combatantStatus(snap.Player()), combatantStatus(snap.Opponent()))
	if snap.Pending != nil && len(snap.Pending.Moves) > 0 {
		line += fmt.Sprintf("\n%s wants to learn %s. learn <move to forget> or learn skip",
			snap.PlayerParty[snap.Pending.PartyIndex].Name, snap.Pending.Moves[0].Name)
	}
	return line
}

func combatantStatus(c core.Combatant) string {
	s := fmt.Sprintf("%s Lv%d %d/%d HP", c.Name, c.Level, c.CurrentHP, c.MaxHP)
	if !c.Status.IsNone() {
		s += " " + c.Status.String()
	}
	return s
}

// runExport prints recorded battles as JSON. An argument naming a replay
// file is read from disk; anything else is a battle ID in the backend.
func runExport(svc *services, ids []string, out io.Writer) error {
	if len(ids) == 0 {
		return errors.New("no battle IDs provided")
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for _, id := range ids {
		if _, err := os.Stat(id); err == nil {
			replay, err := memory.ReadReplay(id)
			if err != nil {
				return fmt.Errorf("read replay %s: %w", id, err)
			}
			if err := enc.Encode(replay); err != nil {
				return err
			}
			continue
		}

		reader, ok := svc.backend.(storage.BattleReader)
		if !ok {
			return fmt.Errorf("%s storage cannot read battles back", svc.opts.Storage.Type)
		}
		battle, turns, err := reader.LoadBattle(id)
		if err != nil {
			return fmt.Errorf("load battle %s: %w", id, err)
		}
		if err := enc.Encode(memory.Replay{Version: memory.ReplayVersion, Battle: *battle, Turns: turns}); err != nil {
			return err
		}
	}
	return nil
}

// printCatalog lists the places and trainers a player can visit, then any
// move effects whose target has to be inferred.
func printCatalog(cat *catalog.Catalog, out io.Writer) {
	fmt.Fprintf(out, "%d species, %d moves, %d items\n", len(cat.SpeciesIDs()), len(cat.MoveIDs()), len(cat.ItemIDs()))
	fmt.Fprintln(out, "Routes:")
	for _, r := range cat.Routes() {
		fmt.Fprintf(out, "  %s (%d encounters)\n", r.Name, len(r.Encounters))
	}
	fmt.Fprintln(out, "Trainers:")
	for _, t := range cat.Trainers() {
		fmt.Fprintf(out, "  %s %s (%d Pokemon)\n", t.Class, t.Name, len(t.Party))
	}
	if warnings := cat.AmbiguousTargets(); len(warnings) > 0 {
		fmt.Fprintln(out, "Needs review:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	}
}
