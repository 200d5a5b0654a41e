package character

// Purchase limits.
const (
	MaxPurchasedAttribute = 8
	MaxSkillRank          = 5
)

// AttributeCosts is the XP price of raising an attribute to each value.
var AttributeCosts = map[int]int{2: 4, 3: 10, 4: 20, 5: 35, 6: 55, 7: 80, 8: 110}

// SkillCosts is the XP price of raising a skill to each rank.
var SkillCosts = map[int]int{1: 2, 2: 6, 3: 12, 4: 20, 5: 30}

// TierXP is the XP budget of a character created at tier.
func TierXP(tier int) int {
	switch tier {
	case 1, 2, 3, 4:
		return tier * 100
	default:
		return 100
	}
}

// AttributeCost is the XP needed to raise an attribute from one value to
// another. Lowering is free.
func AttributeCost(from, to int) int {
	return stepCost(AttributeCosts, from, to)
}

// SkillCost is the XP needed to raise a skill from one rank to another.
func SkillCost(from, to int) int {
	return stepCost(SkillCosts, from, to)
}

func stepCost(table map[int]int, from, to int) int {
	total := 0
	for v := from + 1; v <= to; v++ {
		total += table[v]
	}
	return total
}

// Ledger item kinds.
const (
	LedgerSpecies   = "species"
	LedgerArchetype = "archetype"
	LedgerAttribute = "attribute"
	LedgerSkill     = "skill"
)

// LedgerItem is one XP expense.
type LedgerItem struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	From int    `json:"from,omitempty"`
	To   int    `json:"to,omitempty"`
	Cost int    `json:"cost"`
}

// Ledger tracks XP earned and spent.
type Ledger struct {
	Total int          `json:"total"`
	Items []LedgerItem `json:"items,omitempty"`
}

// Spent sums every item.
func (l Ledger) Spent() int {
	spent := 0
	for _, item := range l.Items {
		spent += item.Cost
	}
	return spent
}

// Remaining is Total minus Spent. It is negative when overspent.
func (l Ledger) Remaining() int {
	return l.Total - l.Spent()
}

func (l *Ledger) add(item LedgerItem) {
	if item.Cost == 0 && item.Kind != LedgerSpecies && item.Kind != LedgerArchetype {
		return
	}
	l.Items = append(l.Items, item)
}
