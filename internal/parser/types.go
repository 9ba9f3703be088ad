package parser

// Purchase is a parsed mart order.
type Purchase struct {
	ItemID   int
	Quantity int
}

// FieldItem is a parsed out-of-battle item use. MoveSlot is -1 unless the
// item restores a single move.
type FieldItem struct {
	ItemID     int
	PartyIndex int
	MoveSlot   int
}

// BoxSlot addresses one combatant in the PC, zero-based.
type BoxSlot struct {
	Box   int
	Index int
}
