package session

import (
	"testing"

	"github.com/monbattle/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withParty gives the fixture a second party member.
func withParty(t *testing.T) fixture {
	t.Helper()
	f := started(t)
	pidgey, err := f.s.deps.Catalog.NewCombatant(16, 3, f.r)
	require.NoError(t, err)
	f.s.state.Party = append(f.s.state.Party, pidgey)
	return f
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f fixture)
		idx     int
		box     int
		want    string
		wantErr string
	}{
		{name: "ok", idx: 1, box: 2, want: "Pidgey was deposited in Box 3!"},
		{name: "bad slot", idx: 5, box: 0, wantErr: "Choose a Pokemon."},
		{name: "bad box", idx: 1, box: core.BoxCount, wantErr: "There is no Box 13."},
		{
			name:    "last healthy",
			setup:   func(f fixture) { f.s.state.Party[1] = f.s.state.Party[1].WithHP(0) },
			idx:     0,
			wantErr: "You need at least one healthy Pokemon!",
		},
		{
			name:    "box full",
			setup:   func(f fixture) { f.s.state.Boxes[0] = make([]core.Combatant, core.BoxCapacity) },
			idx:     1,
			wantErr: "This box is full!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := withParty(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			msg, err := f.s.Deposit(tt.idx, tt.box)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, illegalMessage(t, err))
				assert.Len(t, f.s.state.Party, 2)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg)
			assert.Len(t, f.s.state.Party, 1)
			require.Len(t, f.s.state.Boxes[tt.box], 1)
		})
	}
}

func TestWithdrawAndRelease(t *testing.T) {
	f := withParty(t)
	_, err := f.s.Deposit(1, 0)
	require.NoError(t, err)

	msg, err := f.s.Withdraw(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Pidgey was withdrawn from Box 1!", msg)
	assert.Len(t, f.s.state.Party, 2)
	assert.Empty(t, f.s.state.Boxes[0])

	_, err = f.s.Withdraw(0, 0)
	assert.Equal(t, "Choose a Pokemon.", illegalMessage(t, err))

	_, err = f.s.Deposit(1, 0)
	require.NoError(t, err)
	msg, err = f.s.Release(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Pidgey was released. Bye, Pidgey!", msg)
	assert.Empty(t, f.s.state.Boxes[0])
}

func TestWithdraw_PartyFull(t *testing.T) {
	f := started(t)
	for len(f.s.state.Party) < core.MaxPartySize {
		f.s.state.Party = append(f.s.state.Party, f.s.state.Party[0].Clone())
	}
	f.s.state.Boxes[0] = []core.Combatant{f.s.state.Party[0].Clone()}

	_, err := f.s.Withdraw(0, 0)
	assert.Equal(t, "Your party is full!", illegalMessage(t, err))
}

func TestSwap(t *testing.T) {
	f := withParty(t)
	msg, err := f.s.Swap(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Swapped party positions!", msg)
	assert.Equal(t, "Pidgey", f.s.state.Party[0].Name)
	assert.Equal(t, "Charmander", f.s.state.Party[1].Name)

	_, err = f.s.Swap(0, 2)
	assert.Equal(t, "Choose a Pokemon.", illegalMessage(t, err))
}

func TestHeal(t *testing.T) {
	f := withParty(t)
	f.s.state.Party[0] = f.s.state.Party[0].WithHP(1)
	f.s.state.Party[0].Status = core.Poisoned()
	f.s.state.Party[1] = f.s.state.Party[1].WithHP(0)

	msg, err := f.s.Heal()
	require.NoError(t, err)
	assert.Equal(t, "Your Pokemon were healed at the Pokemon Center!", msg)
	for _, c := range f.s.state.Party {
		assert.Equal(t, c.MaxHP, c.CurrentHP)
		assert.True(t, c.Status.IsNone())
	}
}

func TestUseItem(t *testing.T) {
	f := started(t)
	c := f.s.state.Party[0]
	f.s.state.Party[0] = c.WithHP(c.MaxHP - 10)

	msgs, err := f.s.UseItem(5, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Charmander recovered 10 HP!"}, msgs)
	assert.Equal(t, c.MaxHP, f.s.state.Party[0].CurrentHP)
	assert.Equal(t, 2, f.s.quantity(5))

	_, err = f.s.UseItem(5, 0, -1)
	assert.Equal(t, "It won't have any effect!", illegalMessage(t, err))
	assert.Equal(t, 2, f.s.quantity(5))

	_, err = f.s.UseItem(1, 0, -1)
	assert.Equal(t, "Can't use that item here!", illegalMessage(t, err))

	_, err = f.s.UseItem(16, 0, -1)
	assert.Equal(t, "You don't have any Revives left!", illegalMessage(t, err))
}

func TestUseItem_LastUnitLeavesBag(t *testing.T) {
	f := started(t)
	f.s.state.Party[0].Status = core.Poisoned()
	f.s.state.Bag = []core.BagEntry{{ItemID: 10, Quantity: 1}}

	msgs, err := f.s.UseItem(10, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Charmander was cured of its status problem!"}, msgs)
	assert.Empty(t, f.s.state.Bag)
}

func TestBuy(t *testing.T) {
	tests := []struct {
		name      string
		item      int
		n         int
		want      string
		wantErr   string
		wantMoney int
	}{
		{name: "ok", item: 1, n: 2, want: "Bought 2 Poke Ball for $400.", wantMoney: StartingMoney - 400},
		{name: "too poor", item: 3, n: 3, wantErr: "Not enough money for Ultra Ball!", wantMoney: StartingMoney},
		{name: "not sold", item: 4, n: 1, wantErr: "Master Ball isn't for sale.", wantMoney: StartingMoney},
		{name: "zero", item: 1, n: 0, wantErr: "How many do you want?", wantMoney: StartingMoney},
		{name: "unknown", item: 999, n: 1, wantErr: "That item isn't for sale.", wantMoney: StartingMoney},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := started(t)
			msg, err := f.s.Buy(tt.item, tt.n)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, illegalMessage(t, err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, msg)
				assert.Equal(t, 7, f.s.quantity(1))
			}
			assert.Equal(t, tt.wantMoney, f.s.state.Money)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	f := withParty(t)
	f.s.state.Money = 1234
	f.s.state.Badges = []string{"Boulder Badge"}

	_, err := f.s.Load("slot1")
	assert.Equal(t, "No save file found.", illegalMessage(t, err))

	msg, err := f.s.Save("slot1")
	require.NoError(t, err)
	assert.Equal(t, "Game saved!", msg)

	_, err = f.s.NewGame("Gary", 7)
	require.NoError(t, err)

	msg, err = f.s.Load("slot1")
	require.NoError(t, err)
	assert.Equal(t, "Game loaded!", msg)

	st, err := f.s.State()
	require.NoError(t, err)
	assert.Equal(t, "Ash", st.PlayerName)
	assert.Equal(t, 1234, st.Money)
	assert.Equal(t, []string{"Boulder Badge"}, st.Badges)
	require.Len(t, st.Party, 2)
	assert.Equal(t, "Pidgey", st.Party[1].Name)
	assert.Nil(t, st.Battle)
}

func TestSaveLoad_ResumesBattle(t *testing.T) {
	f := started(t)
	require.NoError(t, f.s.Travel("Route 1"))
	snap, err := f.s.StartWild()
	require.NoError(t, err)

	_, err = f.s.Save("mid")
	require.NoError(t, err)
	_, err = f.s.Load("mid")
	require.NoError(t, err)

	resumed, ok := f.s.Battle()
	require.True(t, ok)
	assert.Equal(t, snap.ID, resumed.ID)
	require.Len(t, f.rec.started, 2)
	assert.Equal(t, "Pidgey", f.rec.started[1].Opponent)
	require.Len(t, f.rec.ended, 1)
}

func TestNoSaveStore(t *testing.T) {
	f := started(t)
	f.s.deps.Saves = nil
	_, err := f.s.Save("x")
	assert.ErrorIs(t, err, ErrNoSaveStore)
	_, err = f.s.Load("x")
	assert.ErrorIs(t, err, ErrNoSaveStore)
}
