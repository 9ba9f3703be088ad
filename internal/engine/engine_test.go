package engine

import (
	"errors"
	"testing"

	"github.com/monbattle/engine/internal/catalog"
	"github.com/monbattle/engine/internal/progress"
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tackle = core.Move{ID: 33, Name: "Tackle", Type: core.TypeNormal, Category: core.CategoryPhysical, Power: 40, Accuracy: 100, MaxPP: 35}
	slam   = core.Move{ID: 900, Name: "Mega Slam", Type: core.TypeNormal, Category: core.CategoryPhysical, Power: 250, Accuracy: 100, MaxPP: 5}
	quick  = core.Move{ID: 98, Name: "Quick Attack", Type: core.TypeNormal, Category: core.CategoryPhysical, Power: 40, Accuracy: 100, MaxPP: 30, Priority: 1}
	splash = core.Move{ID: 901, Name: "Splash", Type: core.TypeNormal, Category: core.CategoryStatus, MaxPP: 40}
)

// mon builds an untyped level-5 combatant with 20 in every stat but speed.
// Against another mon, Tackle deals 4 and Mega Slam 21 under rng.Neutral.
func mon(speciesID int, name string, hp, speed int, moves ...core.Move) core.Combatant {
	c := core.Combatant{
		SpeciesID: speciesID,
		Name:      name,
		Level:     5,
		Exp:       progress.ExpForLevel(5, core.GrowthMedium),
		CurrentHP: hp,
		MaxHP:     hp,
		Stats:     core.BattleStats{Attack: 20, Defense: 20, SpAttack: 20, SpDefense: 20, Speed: speed},
	}
	for _, m := range moves {
		c.Moves = append(c.Moves, core.NewMoveSlot(m))
	}
	return c
}

func newEngine(t *testing.T, r rng.Source) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return New(cat, r, Options{})
}

func wild(t *testing.T, e *Engine, player, opponent []core.Combatant) core.Snapshot {
	t.Helper()
	s, err := e.StartBattle(Setup{Kind: core.BattleWild, CanEscape: true, PlayerParty: player, OpponentParty: opponent})
	require.NoError(t, err)
	return s
}

func trainerBattle(t *testing.T, e *Engine, tr core.Trainer, player, opponent []core.Combatant) core.Snapshot {
	t.Helper()
	s, err := e.StartBattle(Setup{Kind: tr.Kind, CanEscape: true, PlayerParty: player, OpponentParty: opponent, Trainer: &tr})
	require.NoError(t, err)
	return s
}

func opp(moveID int) *core.Action {
	a := core.UseMove(moveID)
	return &a
}

var joey = core.Trainer{Name: "Joey", Class: "Youngster", Kind: core.BattleTrainer, Reward: 1000, Badge: "Test Badge", AfterText: "Aw, I lost!"}

func TestStartBattle(t *testing.T) {
	e := newEngine(t, rng.Neutral())

	s := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})
	assert.Equal(t, []string{"A wild Rattata appeared!", "Go! Pikachu!"}, s.Log)
	assert.Equal(t, 1, s.Turn)
	assert.True(t, s.CanEscape)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, core.OutcomeContinue, s.Outcome.Kind)

	tr := joey
	tr.BeforeText = "My Rattata is the best!"
	s = trainerBattle(t, e, tr, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})
	assert.Equal(t, []string{"My Rattata is the best!", "Youngster Joey sent out Rattata!", "Go! Pikachu!"}, s.Log)
	assert.False(t, s.CanEscape, "trainer battles can never be fled")
	require.NotNil(t, s.Trainer)
	assert.Equal(t, core.BattleTrainer, s.Kind)
}

func TestStartBattle_ResetsBattleState(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	p := mon(25, "Pikachu", 30, 20, tackle)
	p.Stages.Attack = 3
	p.Volatile.Confusion = 2
	p.Status = core.Burned()

	s := wild(t, e, []core.Combatant{p}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})
	assert.Zero(t, s.Player().Stages)
	assert.Zero(t, s.Player().Volatile)
	assert.Equal(t, core.StatusBurn, s.Player().Status.Kind(), "status persists between battles")
}

func TestStartBattle_Invariants(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	healthy := mon(25, "Pikachu", 30, 20, tackle)
	fainted := healthy
	fainted.CurrentHP = 0
	unknown := mon(9999, "Missingno", 30, 20, tackle)

	tests := []struct {
		name  string
		setup Setup
	}{
		{"empty player party", Setup{OpponentParty: []core.Combatant{healthy}}},
		{"lead out of range", Setup{PlayerParty: []core.Combatant{healthy}, OpponentParty: []core.Combatant{healthy}, PlayerLead: 3}},
		{"fainted lead", Setup{PlayerParty: []core.Combatant{fainted}, OpponentParty: []core.Combatant{healthy}}},
		{"opponent all fainted", Setup{PlayerParty: []core.Combatant{healthy}, OpponentParty: []core.Combatant{fainted}}},
		{"unknown species", Setup{PlayerParty: []core.Combatant{unknown}, OpponentParty: []core.Combatant{healthy}}},
		{"gym without trainer", Setup{Kind: core.BattleGym, PlayerParty: []core.Combatant{healthy}, OpponentParty: []core.Combatant{healthy}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.StartBattle(tt.setup)
			assert.ErrorIs(t, err, ErrInvariant)
		})
	}
}

func TestResolveTurn_FasterMovesFirst(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pikachu used Tackle!", "Rattata used Tackle!"}, res.Messages)
	assert.Equal(t, 26, res.Snapshot.Player().CurrentHP)
	assert.Equal(t, 26, res.Snapshot.Opponent().CurrentHP)
	assert.Equal(t, 4, res.DamageDealt)
	assert.Equal(t, 34, res.Snapshot.Player().Moves[0].PP)
	assert.Equal(t, 34, res.Snapshot.Opponent().Moves[0].PP)
	assert.Equal(t, core.OutcomeContinue, res.Outcome.Kind)
	assert.Equal(t, 2, res.Snapshot.Turn)
	assert.Equal(t, append(in.Log, res.Messages...), res.Snapshot.Log)

	assert.Equal(t, 30, in.Player().CurrentHP, "input snapshot is never modified")
	assert.Equal(t, 35, in.Player().Moves[0].PP)
	assert.Equal(t, 1, in.Turn)
}

func TestResolveTurn_PriorityBeatsSpeed(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 50, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, quick)})

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(quick.ID))
	require.NoError(t, err)
	assert.Equal(t, "Rattata used Quick Attack!", res.Messages[0])
}

func TestResolveTurn_SpeedStagesCount(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 15, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 20, tackle)})
	in.PlayerParty[0].Stages.Speed = 2

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, "Pikachu used Tackle!", res.Messages[0])
}

func TestResolveTurn_SpeedTieIsFair(t *testing.T) {
	e := newEngine(t, rng.New(42))
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 300, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 300, 20, tackle)})

	const trials = 2000
	playerFirst := 0
	for range trials {
		res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
		require.NoError(t, err)
		if res.Messages[0] == "Pikachu used Tackle!" {
			playerFirst++
		}
	}
	assert.InDelta(t, trials/2, playerFirst, trials*0.05)
}

func TestResolveTurn_OpponentUsesAIWhenNoActionGiven(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, quick)})

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), nil)
	require.NoError(t, err)
	assert.Contains(t, res.Messages, "Rattata used Quick Attack!")
}

func TestResolveTurn_Struggle(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	p := mon(25, "Pikachu", 30, 20, tackle)
	p.Moves[0].PP = 0
	in := wild(t, e, []core.Combatant{p}, []core.Combatant{mon(19, "Rattata", 30, 10, splash)})

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(splash.ID))
	require.NoError(t, err)
	assert.Equal(t, "Pikachu has no PP left!", res.Messages[0])
	assert.Equal(t, "Pikachu used Struggle!", res.Messages[1])
	assert.Less(t, res.Snapshot.Player().CurrentHP, 30, "struggle recoil")
}

func TestResolveTurn_IllegalActions(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	spent := mon(25, "Pikachu", 30, 20, tackle, quick)
	spent.Moves[1].PP = 0
	benched := mon(19, "Rattata", 30, 10, tackle)
	down := mon(16, "Pidgey", 30, 10, tackle)
	down.CurrentHP = 0
	hurt := mon(19, "Rattata", 30, 10, tackle)
	hurt.CurrentHP = 10
	foe := []core.Combatant{mon(19, "Rattata", 30, 10, tackle)}

	base := wild(t, e, []core.Combatant{spent, benched, down}, foe)
	trainer := trainerBattle(t, e, joey, []core.Combatant{spent, hurt}, foe)

	tests := []struct {
		name   string
		in     core.Snapshot
		action core.Action
		msg    string
	}{
		{"unknown move", base, core.UseMove(999), "Pikachu doesn't know that move!"},
		{"move without PP", base, core.UseMove(quick.ID), "Pikachu has no PP left for Quick Attack!"},
		{"switch to active", base, core.Switch(0), "Pikachu is already in battle!"},
		{"switch to fainted", base, core.Switch(2), "Pidgey has no energy left to battle!"},
		{"switch out of range", base, core.Switch(6), "There's no Pokemon in that slot!"},
		{"flee a trainer", trainer, core.Flee(), "Can't escape from a trainer battle!"},
		{"ball in trainer battle", trainer, core.UseItem(1, 0), "Can't use that item here!"},
		{"potion at full HP", base, core.UseItem(5, 0), "It won't have any effect!"},
		{"revive on healthy", trainer, core.UseItem(16, 1), "It won't have any effect!"},
		{"potion on fainted", base, core.UseItem(5, 2), "It won't have any effect!"},
		{"status heal in battle", base, core.UseItem(10, 0), "Can't use that item here!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.ResolveTurn(tt.in, tt.action, opp(tackle.ID))
			var ia *IllegalActionError
			require.True(t, errors.As(err, &ia), "got %v", err)
			assert.Equal(t, tt.msg, ia.Message)
			assert.Equal(t, tt.in, res.Snapshot)
		})
	}
}

func TestResolveTurn_Invariants(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})

	ended := in.Clone()
	ended.Ended = true
	pending := in.Clone()
	pending.Pending = &core.PendingMoveLearn{Moves: []core.Move{quick}}
	badHP := in.Clone()
	badHP.PlayerParty[0].CurrentHP = 31
	badSlot := in.Clone()
	badSlot.OpponentActive = 4

	tests := []struct {
		name   string
		in     core.Snapshot
		action core.Action
		opp    *core.Action
	}{
		{"ended", ended, core.UseMove(tackle.ID), nil},
		{"pending move learn", pending, core.UseMove(tackle.ID), nil},
		{"hp above max", badHP, core.UseMove(tackle.ID), nil},
		{"active out of range", badSlot, core.UseMove(tackle.ID), nil},
		{"unknown item", in, core.UseItem(777, 0), nil},
		{"opponent switches", in, core.UseMove(tackle.ID), &core.Action{Kind: core.ActionSwitch, Target: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ResolveTurn(tt.in, tt.action, tt.opp)
			assert.ErrorIs(t, err, ErrInvariant)
		})
	}
}

func TestResolveTurn_NextOpponentRevealed(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	foes := []core.Combatant{
		mon(19, "Rattata", 4, 10, tackle),
		mon(16, "Pidgey", 30, 10, tackle),
		mon(13, "Weedle", 30, 10, tackle),
		mon(10, "Caterpie", 30, 10, tackle),
	}
	in := trainerBattle(t, e, joey, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, foes)

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeContinue, res.Outcome.Kind)
	assert.False(t, res.Snapshot.Ended)
	assert.Equal(t, 1, res.Snapshot.OpponentActive)
	assert.Equal(t, []string{
		"Pikachu used Tackle!",
		"Rattata fainted!",
		"Pikachu gained 54 EXP!",
		"Joey sent out Pidgey!",
	}, res.Messages)
	assert.Equal(t, 30, res.Snapshot.Player().CurrentHP, "fainted opponent never acts")
	assert.Zero(t, res.MoneyDelta)
}

func TestResolveTurn_TrainerWin(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	p := mon(25, "Pikachu", 30, 20, tackle)
	in := trainerBattle(t, e, joey, []core.Combatant{p}, []core.Combatant{mon(19, "Rattata", 4, 10, tackle)})
	in.PlayerParty[0].Stages.Attack = 1

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeBattleWon, res.Outcome.Kind)
	assert.True(t, res.Snapshot.Ended)
	assert.Equal(t, 1000, res.MoneyDelta)
	assert.Equal(t, []string{"Aw, I lost!", "Received the Test Badge!", "Youngster Joey paid out 1000!"}, res.Messages[len(res.Messages)-3:])
	assert.Zero(t, res.Snapshot.Player().Stages, "stages never outlive the battle")
	assert.Equal(t, 1, res.Snapshot.Turn, "a finished battle does not advance the turn")

	_, err = e.ResolveTurn(res.Snapshot, core.UseMove(tackle.ID), nil)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestResolveTurn_PlayerReplacement(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	in := wild(t, e,
		[]core.Combatant{mon(25, "Pikachu", 4, 10, tackle), mon(16, "Pidgey", 30, 10, tackle)},
		[]core.Combatant{mon(19, "Rattata", 30, 20, tackle)})

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, core.Outcome{Kind: core.OutcomeFainted, Side: core.SidePlayer}, res.Outcome)
	assert.Equal(t, 1, res.Snapshot.PlayerActive)
	assert.Equal(t, []string{"Rattata used Tackle!", "Pikachu fainted!", "Go! Pidgey!"}, res.Messages)
	assert.Equal(t, 30, res.Snapshot.Opponent().CurrentHP, "fainted player never acts")
}

func TestResolveTurn_Whiteout(t *testing.T) {
	tests := []struct {
		name    string
		trainer *core.Trainer
		money   int
		lost    string
	}{
		{"trainer reward", &joey, -250, "You lost 250 to the winner!"},
		{"default reward", &core.Trainer{Name: "Ghost", Class: "Channeler", Kind: core.BattleTrainer}, -500, "You lost 500 to the winner!"},
		{"wild", nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, rng.Neutral())
			p := mon(25, "Pikachu", 30, 10, tackle)
			p.CurrentHP = 4
			p.Status = core.Poisoned()
			foes := []core.Combatant{mon(19, "Rattata", 30, 20, tackle)}

			var in core.Snapshot
			if tt.trainer != nil {
				in = trainerBattle(t, e, *tt.trainer, []core.Combatant{p}, foes)
			} else {
				in = wild(t, e, []core.Combatant{p}, foes)
			}

			res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
			require.NoError(t, err)
			assert.Equal(t, core.OutcomeBattleLost, res.Outcome.Kind)
			assert.True(t, res.Snapshot.Ended)
			assert.Equal(t, tt.money, res.MoneyDelta)
			assert.Contains(t, res.Messages, "You whited out!")
			assert.Equal(t, "Your Pokemon were healed at the Pokemon Center!", res.Messages[len(res.Messages)-1])
			if tt.lost != "" {
				assert.Contains(t, res.Messages, tt.lost)
			}

			healed := res.Snapshot.Player()
			assert.Equal(t, healed.MaxHP, healed.CurrentHP)
			assert.True(t, healed.Status.IsNone())
			assert.Equal(t, tackle.MaxPP, healed.Moves[0].PP)
		})
	}
}

func TestResolveTurn_DoubleFaintIsAWin(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	recoil := slam
	recoil.Effects = []core.MoveEffect{{Kind: core.EffectRecoil, Percent: 25}}
	in := wild(t, e,
		[]core.Combatant{mon(25, "Pikachu", 5, 20, recoil)},
		[]core.Combatant{mon(19, "Rattata", 20, 10, tackle)})

	res, err := e.ResolveTurn(in, core.UseMove(recoil.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeBattleWon, res.Outcome.Kind)
	assert.NotContains(t, res.Messages, "Pikachu gained 54 EXP!", "no EXP for a fainted combatant")
}

func TestResolveTurn_EndOfTurnOrder(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	p := mon(25, "Pikachu", 80, 20, splash)
	p.Status = core.Poisoned()
	o := mon(19, "Rattata", 80, 10, splash)
	o.Status = core.Poisoned()
	in := wild(t, e, []core.Combatant{p}, []core.Combatant{o})
	in.PlayerParty[0].Volatile.LeechSeed = true
	in.PlayerParty[0].Volatile.Confusion = 1

	res, err := e.ResolveTurn(in, core.UseMove(splash.ID), opp(splash.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Pikachu is confused!",
		"Pikachu used Splash!",
		"Rattata used Splash!",
		"Pikachu's health was sapped by Leech Seed!",
		"Pikachu snapped out of confusion!",
		"Pikachu was hurt by poison!",
		"Rattata was hurt by poison!",
	}, res.Messages)
	assert.Equal(t, 80-5-10, res.Snapshot.Player().CurrentHP)
	assert.Equal(t, 80-10, res.Snapshot.Opponent().CurrentHP, "seeder was already at full HP")
}

func TestResolveTurn_LeechSeedFaintSkipsRestOfEndOfTurn(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	p := mon(25, "Pikachu", 80, 20, splash)
	p.CurrentHP = 1
	o := mon(19, "Rattata", 80, 10, splash)
	o.CurrentHP = 50
	o.Status = core.Poisoned()
	in := wild(t, e, []core.Combatant{p, mon(16, "Pidgey", 30, 10, splash)}, []core.Combatant{o})
	in.PlayerParty[0].Volatile.LeechSeed = true
	in.PlayerParty[0].Volatile.Confusion = 1

	res, err := e.ResolveTurn(in, core.UseMove(splash.ID), opp(splash.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Pikachu is confused!",
		"Pikachu used Splash!",
		"Rattata used Splash!",
		"Pikachu's health was sapped by Leech Seed!",
		"Pikachu fainted!",
		"Go! Pidgey!",
	}, res.Messages)
	assert.Equal(t, core.Outcome{Kind: core.OutcomeFainted, Side: core.SidePlayer}, res.Outcome)
	assert.Equal(t, 50+5, res.Snapshot.Opponent().CurrentHP, "only the leech gain, no poison tick")
	assert.Equal(t, core.StatusPoison, res.Snapshot.Opponent().Status.Kind())
}

func TestResolveTurn_ConfusionSelfHitFaintSkipsSecondAction(t *testing.T) {
	e := newEngine(t, &rng.Scripted{Floats: []float64{0.1}, DefaultFloat: 0.99})
	p := mon(25, "Pikachu", 30, 20, tackle)
	p.CurrentHP = 1
	in := wild(t, e,
		[]core.Combatant{p, mon(16, "Pidgey", 30, 10, tackle)},
		[]core.Combatant{mon(19, "Rattata", 30, 10, tackle)})
	in.PlayerParty[0].Volatile.Confusion = 2

	res, err := e.ResolveTurn(in, core.UseMove(tackle.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Pikachu is confused! It hurt itself in confusion!",
		"Pikachu fainted!",
		"Go! Pidgey!",
	}, res.Messages)
	assert.Equal(t, core.Outcome{Kind: core.OutcomeFainted, Side: core.SidePlayer}, res.Outcome)
	assert.Equal(t, 30, res.Snapshot.Opponent().CurrentHP)
	assert.Equal(t, 30, res.Snapshot.Player().CurrentHP, "Rattata never attacked")
}

func TestResolveTurn_PoisonFaintWins(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	o := mon(19, "Rattata", 80, 10, splash)
	o.CurrentHP = 10
	o.Status = core.Poisoned()
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, splash)}, []core.Combatant{o})

	res, err := e.ResolveTurn(in, core.UseMove(splash.ID), opp(splash.ID))
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeBattleWon, res.Outcome.Kind)
	assert.Contains(t, res.Messages, "Rattata fainted!")
}

func TestResolveTurn_FlinchStopsSlowerSide(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	bite := core.Move{ID: 44, Name: "Bite", Type: core.TypeNormal, Category: core.CategoryPhysical, Power: 40, Accuracy: 100, MaxPP: 25,
		Effects: []core.MoveEffect{{Kind: core.EffectVolatile, Volatile: core.VolatileFlinch}}}
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, bite)}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})

	res, err := e.ResolveTurn(in, core.UseMove(bite.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Contains(t, res.Messages, "Rattata flinched and couldn't move!")
	assert.NotContains(t, res.Messages, "Rattata used Tackle!")
	assert.False(t, res.Snapshot.Opponent().Volatile.Flinch)
}

func TestResolveTurn_Switch(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	in := wild(t, e,
		[]core.Combatant{mon(25, "Pikachu", 30, 20, tackle), mon(16, "Pidgey", 30, 10, tackle)},
		[]core.Combatant{mon(19, "Rattata", 30, 10, tackle)})
	in.PlayerParty[0].Stages.Defense = -2

	res, err := e.ResolveTurn(in, core.Switch(1), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"Come back! Pikachu!", "Go! Pidgey!", "Rattata used Tackle!"}, res.Messages)
	assert.Equal(t, 1, res.Snapshot.PlayerActive)
	assert.Equal(t, 26, res.Snapshot.Player().CurrentHP)
	assert.Zero(t, res.Snapshot.PlayerParty[0].Stages)
	assert.Equal(t, 30, res.Snapshot.PlayerParty[0].CurrentHP)
}

func TestResolveTurn_Flee(t *testing.T) {
	player := []core.Combatant{mon(25, "Pikachu", 30, 10, tackle)}

	// chance = 10*32/(40/4) + 30*1 = 62 out of 256.
	t.Run("escapes", func(t *testing.T) {
		e := newEngine(t, &rng.Scripted{Floats: []float64{0.1}, DefaultFloat: 0.99})
		in := wild(t, e, player, []core.Combatant{mon(19, "Rattata", 30, 40, tackle)})
		res, err := e.ResolveTurn(in, core.Flee(), opp(tackle.ID))
		require.NoError(t, err)
		assert.Equal(t, core.OutcomeFled, res.Outcome.Kind)
		assert.True(t, res.Snapshot.Ended)
		assert.Equal(t, []string{"Got away safely!"}, res.Messages)
	})

	t.Run("fails and opponent acts", func(t *testing.T) {
		e := newEngine(t, &rng.Scripted{Floats: []float64{0.5}, DefaultFloat: 0.99})
		in := wild(t, e, player, []core.Combatant{mon(19, "Rattata", 30, 40, tackle)})
		res, err := e.ResolveTurn(in, core.Flee(), opp(tackle.ID))
		require.NoError(t, err)
		assert.Equal(t, core.OutcomeContinue, res.Outcome.Kind)
		assert.Equal(t, []string{"Can't escape!", "Rattata used Tackle!"}, res.Messages)
	})

	t.Run("zero divisor always escapes", func(t *testing.T) {
		e := newEngine(t, &rng.Scripted{Floats: []float64{0.999}})
		in := wild(t, e, player, []core.Combatant{mon(19, "Rattata", 30, 1024, tackle)})
		res, err := e.ResolveTurn(in, core.Flee(), opp(tackle.ID))
		require.NoError(t, err)
		assert.Equal(t, core.OutcomeFled, res.Outcome.Kind)
	})
}

func TestResolveTurn_TrappedCanStillSwitchAndFlee(t *testing.T) {
	party := []core.Combatant{mon(25, "Pikachu", 30, 20, tackle), mon(16, "Pidgey", 30, 10, tackle)}
	foe := []core.Combatant{mon(19, "Rattata", 30, 10, splash)}

	t.Run("switch", func(t *testing.T) {
		e := newEngine(t, rng.Neutral())
		in := wild(t, e, party, foe)
		in.PlayerParty[0].Volatile.Trap = 3

		res, err := e.ResolveTurn(in, core.Switch(1), opp(splash.ID))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Snapshot.PlayerActive)
		assert.Equal(t, []string{"Come back! Pikachu!", "Go! Pidgey!", "Rattata used Splash!"}, res.Messages)
		assert.Zero(t, res.Snapshot.PlayerParty[0].Volatile.Trap)
	})

	t.Run("flee", func(t *testing.T) {
		e := newEngine(t, &rng.Scripted{Floats: []float64{0}, DefaultFloat: 0.99})
		in := wild(t, e, party, foe)
		in.PlayerParty[0].Volatile.Trap = 3

		res, err := e.ResolveTurn(in, core.Flee(), opp(splash.ID))
		require.NoError(t, err)
		assert.Equal(t, core.OutcomeFled, res.Outcome.Kind)
		assert.Equal(t, []string{"Got away safely!"}, res.Messages)
	})
}

func TestResolveTurn_Potion(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	p := mon(25, "Pikachu", 30, 20, tackle)
	p.CurrentHP = 25
	in := wild(t, e, []core.Combatant{p}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})

	res, err := e.ResolveTurn(in, core.UseItem(5, 0), opp(tackle.ID))
	require.NoError(t, err)
	assert.True(t, res.ItemUsed)
	assert.Equal(t, []string{"Pikachu recovered 5 HP!", "Rattata used Tackle!"}, res.Messages)
	assert.Equal(t, 26, res.Snapshot.Player().CurrentHP)
}

func TestResolveTurn_Revive(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	down := mon(16, "Pidgey", 30, 10, tackle)
	down.CurrentHP = 0
	in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle), down}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})

	res, err := e.ResolveTurn(in, core.UseItem(16, 1), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, "Pidgey was revived!", res.Messages[0])
	assert.Equal(t, 15, res.Snapshot.PlayerParty[1].CurrentHP)
}

func TestResolveTurn_Capture(t *testing.T) {
	t.Run("master ball", func(t *testing.T) {
		e := newEngine(t, rng.Neutral())
		in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})
		in.OpponentParty[0].Stages.Speed = 1

		res, err := e.ResolveTurn(in, core.UseItem(4, 0), opp(tackle.ID))
		require.NoError(t, err)
		assert.Equal(t, []string{"You used a Master Ball!", "Gotcha! Rattata was caught!"}, res.Messages)
		assert.Equal(t, core.OutcomeBattleWon, res.Outcome.Kind)
		require.NotNil(t, res.Caught)
		assert.Equal(t, "Rattata", res.Caught.Name)
		assert.Zero(t, res.Caught.Stages)
		assert.True(t, res.ItemUsed)
		assert.Zero(t, res.MoneyDelta)
	})

	t.Run("breaks free", func(t *testing.T) {
		e := newEngine(t, rng.Neutral())
		in := wild(t, e, []core.Combatant{mon(25, "Pikachu", 30, 20, tackle)}, []core.Combatant{mon(19, "Rattata", 30, 10, tackle)})

		res, err := e.ResolveTurn(in, core.UseItem(1, 0), opp(tackle.ID))
		require.NoError(t, err)
		assert.Equal(t, []string{"You used a Poke Ball!", "Oh no! The Pokemon broke free!", "Rattata used Tackle!"}, res.Messages)
		assert.Nil(t, res.Caught)
		assert.True(t, res.ItemUsed)
		assert.Equal(t, core.OutcomeContinue, res.Outcome.Kind)
	})
}

func TestResolveMoveLearn(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	growl := core.Move{ID: 45, Name: "Growl", Type: core.TypeNormal, Category: core.CategoryStatus, Accuracy: 100, MaxPP: 40}
	p := mon(25, "Pikachu", 30, 20, slam, tackle, quick, growl)
	p.Level = 8
	p.Exp = progress.ExpForLevel(9, core.GrowthMedium) - 1
	foes := []core.Combatant{mon(19, "Rattata", 5, 10, tackle), mon(16, "Pidgey", 30, 10, tackle)}

	in := trainerBattle(t, e, joey, []core.Combatant{p}, foes)
	res, err := e.ResolveTurn(in, core.UseMove(slam.ID), opp(tackle.ID))
	require.NoError(t, err)
	require.Equal(t, core.OutcomeMoveLearnPending, res.Outcome.Kind)
	require.NotNil(t, res.Snapshot.Pending)
	assert.Equal(t, 86, res.Snapshot.Pending.Moves[0].ID)
	assert.Equal(t, "Pikachu wants to learn Thunder Wave!", res.Messages[len(res.Messages)-1])
	assert.Equal(t, 0, res.Snapshot.OpponentActive, "next opponent waits for the choice")
	assert.Equal(t, 2, res.Snapshot.Turn)

	_, err = e.ResolveTurn(res.Snapshot, core.UseMove(tackle.ID), nil)
	assert.ErrorIs(t, err, ErrInvariant)

	t.Run("replace", func(t *testing.T) {
		out, err := e.ResolveMoveLearn(res.Snapshot, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"Pikachu forgot Growl and learned Thunder Wave!", "Joey sent out Pidgey!"}, out.Messages)
		assert.Nil(t, out.Snapshot.Pending)
		assert.Equal(t, 86, out.Snapshot.Player().Moves[3].Move.ID)
		assert.Equal(t, 1, out.Snapshot.OpponentActive)
		assert.Equal(t, core.OutcomeContinue, out.Outcome.Kind)
		assert.Equal(t, 2, out.Snapshot.Turn)
	})

	t.Run("decline", func(t *testing.T) {
		out, err := e.ResolveMoveLearn(res.Snapshot, -1)
		require.NoError(t, err)
		assert.Equal(t, "Pikachu did not learn Thunder Wave.", out.Messages[0])
		assert.Equal(t, 45, out.Snapshot.Player().Moves[3].Move.ID)
	})

	t.Run("bad slot", func(t *testing.T) {
		out, err := e.ResolveMoveLearn(res.Snapshot, 4)
		_, ok := IsIllegal(err)
		assert.True(t, ok)
		assert.Equal(t, res.Snapshot, out.Snapshot)
	})

	t.Run("nothing pending", func(t *testing.T) {
		_, err := e.ResolveMoveLearn(in, 0)
		assert.ErrorIs(t, err, ErrInvariant)
	})
}

func TestResolveTurn_EvolutionReady(t *testing.T) {
	e := newEngine(t, rng.Neutral())
	p := mon(19, "Rattata", 30, 20, slam)
	p.Level = 19
	p.Exp = progress.ExpForLevel(20, core.GrowthMedium) - 1
	in := wild(t, e, []core.Combatant{p}, []core.Combatant{mon(16, "Pidgey", 5, 10, tackle)})

	res, err := e.ResolveTurn(in, core.UseMove(slam.ID), opp(tackle.ID))
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeBattleWon, res.Outcome.Kind)
	assert.Equal(t, []int{0}, res.EvolutionReady)
	assert.Equal(t, 20, res.Snapshot.Player().Level)
	assert.Contains(t, res.Messages, "Rattata grew to Level 20!")
}

func TestApplyItem_Field(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	item := func(id int) core.Item {
		it, err := cat.Item(id)
		require.NoError(t, err)
		return it
	}

	poisoned := mon(25, "Pikachu", 30, 20, tackle, quick)
	poisoned.Status = core.BadlyPoisoned(2)
	poisoned.Moves[0].PP = 5

	tests := []struct {
		name    string
		c       core.Combatant
		item    int
		slot    int
		msgs    []string
		wantErr bool
	}{
		{"antidote cures toxic", poisoned, 10, -1, []string{"Pikachu was cured of its status problem!"}, false},
		{"burn heal on poison", poisoned, 13, -1, nil, true},
		{"full heal", poisoned, 15, -1, []string{"Pikachu was cured of its status problem!"}, false},
		{"ether", poisoned, 18, 0, []string{"Pikachu's Tackle PP was restored!"}, false},
		{"ether on full move", poisoned, 18, 1, nil, true},
		{"ether without slot", poisoned, 18, -1, nil, true},
		{"elixir", poisoned, 20, -1, []string{"Pikachu's PP was restored!"}, false},
		{"ball", poisoned, 1, -1, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, msgs, err := ApplyItem(tt.c, item(tt.item), tt.slot)
			if tt.wantErr {
				_, ok := IsIllegal(err)
				assert.True(t, ok, "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.msgs, msgs)
			assert.NotEqual(t, tt.c, c)
		})
	}
}
