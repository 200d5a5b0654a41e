package wrath

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/wrathforge/internal/platform/i18n/catalog"
)

type difficulty struct {
	max  int
	name string
	key  string
}

// difficulties is ordered by max; the last entry covers every higher DN.
var difficulties = []difficulty{
	{max: 2, name: "Simple", key: "dice.difficulty.simple"},
	{max: 3, name: "Easy", key: "dice.difficulty.easy"},
	{max: 4, name: "Medium", key: "dice.difficulty.medium"},
	{max: 5, name: "Hard", key: "dice.difficulty.hard"},
	{max: 6, name: "Very Hard", key: "dice.difficulty.very_hard"},
	{name: "Extreme", key: "dice.difficulty.extreme"},
}

func lookupDifficulty(dn int) difficulty {
	for _, d := range difficulties[:len(difficulties)-1] {
		if dn <= d.max {
			return d
		}
	}
	return difficulties[len(difficulties)-1]
}

// DifficultyName labels a DN: Simple up to 2, then Easy, Medium, Hard and
// Very Hard for 3 to 6, Extreme from 7.
func DifficultyName(dn int) string {
	return lookupDifficulty(dn).name
}

// LocalizedDifficultyName labels a DN in the language of tag, falling back
// to DifficultyName when no translation is registered.
func LocalizedDifficultyName(tag language.Tag, dn int) string {
	catalog.Default()
	d := lookupDifficulty(dn)
	if s := message.NewPrinter(tag).Sprintf(d.key); s != d.key {
		return s
	}
	return d.name
}
