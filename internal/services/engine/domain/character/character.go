package character

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/compute"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// Tier bounds.
const (
	MinTier = 1
	MaxTier = 5
)

var (
	ErrEmptyName            = errors.New("character name is required")
	ErrInvalidTier          = errors.New("tier is out of range")
	ErrUnknownSpecies       = errors.New("unknown species")
	ErrUnknownArchetype     = errors.New("unknown archetype")
	ErrSpeciesMismatch      = errors.New("archetype is not available to species")
	ErrKeywordChoiceMissing = errors.New("keyword choice is missing")
	ErrAttributeOutOfRange  = errors.New("attribute is out of range")
	ErrSkillOutOfRange      = errors.New("skill is out of range")
	ErrXPExceeded           = errors.New("xp budget exceeded")
	ErrUnknownThreat        = errors.New("unknown threat rating")
)

// BuildError adds the offending field and bounds to a build failure. Err is
// one of the package sentinels.
type BuildError struct {
	Err   error
	Field string
	Value int
	Min   int
	Max   int
}

func (e *BuildError) Error() string {
	switch {
	case e.Min != 0 || e.Max != 0:
		return fmt.Sprintf("%s: %s is %d, want %d..%d", e.Err, e.Field, e.Value, e.Min, e.Max)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Err, e.Field)
	default:
		return e.Err.Error()
	}
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Kind distinguishes player characters from bestiary creatures.
type Kind string

const (
	KindCharacter Kind = "character"
	KindBestiary  Kind = "bestiary"
)

// Character is an entity: its identity plus the property graph everything
// else is computed from.
type Character struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	Name        string         `json:"name"`
	Tier        int            `json:"tier"`
	Rank        int            `json:"rank"`
	SpeciesID   string         `json:"speciesId,omitempty"`
	ArchetypeID string         `json:"archetypeId,omitempty"`
	Threat      Threat         `json:"threat,omitempty"`
	Keywords    []string       `json:"keywords"`
	XP          Ledger         `json:"xp"`
	Graph       property.Graph `json:"graph"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// New returns an empty character: a root folder and the tier's XP budget.
func New(name string, tier int) (Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Character{}, ErrEmptyName
	}
	if tier < MinTier || tier > MaxTier {
		return Character{}, &BuildError{Err: ErrInvalidTier, Field: "tier", Value: tier, Min: MinTier, Max: MaxTier}
	}
	return Character{
		Kind:     KindCharacter,
		Name:     name,
		Tier:     tier,
		Rank:     1,
		Keywords: []string{},
		XP:       Ledger{Total: TierXP(tier)},
		Graph:    property.New(property.RootID, name),
	}, nil
}

// NewCreature returns an empty bestiary entry with a threat rating.
func NewCreature(name string, tier int, threat Threat) (Character, error) {
	if _, ok := threatModifiers[threat]; !ok {
		return Character{}, &BuildError{Err: ErrUnknownThreat, Field: string(threat)}
	}
	c, err := New(name, tier)
	if err != nil {
		return Character{}, err
	}
	c.Kind = KindBestiary
	c.Threat = threat
	c.XP = Ledger{}
	return c, nil
}

// Stats recomputes the character's stats from its graph, scaled by its
// threat rating when it has one.
func (c Character) Stats() (compute.EntityStats, compute.Result) {
	stats, result := compute.Stats(c.Graph, c.Tier)
	if c.Threat != "" {
		stats = ApplyThreat(stats, c.Threat)
	}
	return stats, result
}

// HasKeyword reports whether the character carries keyword, ignoring case.
func (c Character) HasKeyword(keyword string) bool {
	for _, k := range c.Keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

// Abilities returns the ability ids granted by enabled features.
func (c Character) Abilities() []string {
	return c.Graph.GrantedAbilities()
}
