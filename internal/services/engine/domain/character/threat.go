package character

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/wrathforge/internal/platform/i18n/catalog"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/compute"
)

// Threat is a bestiary threat rating.
type Threat string

const (
	ThreatTroop    Threat = "Troop"
	ThreatElite    Threat = "Elite"
	ThreatChampion Threat = "Champion"
	ThreatNemesis  Threat = "Nemesis"
)

// ThreatModifiers scale a creature by its threat.
type ThreatModifiers struct {
	WoundsMultiplier int `json:"woundsMultiplier"`
	ShockMultiplier  int `json:"shockMultiplier"`
	BonusDice        int `json:"bonusDice"`
}

var threatModifiers = map[Threat]ThreatModifiers{
	ThreatTroop:    {WoundsMultiplier: 1, ShockMultiplier: 1, BonusDice: 0},
	ThreatElite:    {WoundsMultiplier: 2, ShockMultiplier: 2, BonusDice: 1},
	ThreatChampion: {WoundsMultiplier: 3, ShockMultiplier: 3, BonusDice: 2},
	ThreatNemesis:  {WoundsMultiplier: 5, ShockMultiplier: 5, BonusDice: 3},
}

// ParseThreat accepts a threat rating in any case. The empty string is not
// a threat.
func ParseThreat(s string) (Threat, error) {
	for t := range threatModifiers {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", &BuildError{Err: ErrUnknownThreat, Field: s}
}

// Modifiers returns the modifiers of t; unknown ratings scale by one.
func (t Threat) Modifiers() ThreatModifiers {
	if m, ok := threatModifiers[t]; ok {
		return m
	}
	return threatModifiers[ThreatTroop]
}

// BonusDice is the number of extra dice a creature of threat t rolls.
func (t Threat) BonusDice() int {
	return t.Modifiers().BonusDice
}

// ApplyThreat multiplies maximum wounds and shock by the threat's
// multipliers.
func ApplyThreat(stats compute.EntityStats, t Threat) compute.EntityStats {
	m := t.Modifiers()
	stats.MaxWounds *= m.WoundsMultiplier
	stats.MaxShock *= m.ShockMultiplier
	return stats
}

// LocalizedThreatName labels t in the language of tag.
func LocalizedThreatName(tag language.Tag, t Threat) string {
	catalog.Default()
	key := "dice.threat." + strings.ToLower(string(t))
	if s := message.NewPrinter(tag).Sprintf(key); s != key {
		return s
	}
	return string(t)
}
