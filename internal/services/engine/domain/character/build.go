package character

import (
	"fmt"
	"slices"
	"strings"

	"github.com/louisbranch/wrathforge/internal/services/engine/content"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// Catalog is the content a build reads templates from.
type Catalog interface {
	Species(id string) (content.Species, bool)
	Archetype(id string) (content.Archetype, bool)
}

// BuildRequest describes a new character. Attributes and Skills hold
// purchase targets keyed by name in any spelling; missing entries default to
// their minimum. KeywordChoices replaces bracketed keywords, keyed by the
// bracketed keyword with or without brackets.
type BuildRequest struct {
	Name           string
	Tier           int
	Rank           int
	SpeciesID      string
	ArchetypeID    string
	KeywordChoices map[string]string
	Attributes     map[string]int
	Skills         map[string]int
}

// Build assembles a character from its species and archetype templates and
// its attribute and skill purchases. An empty ArchetypeID builds from the
// species alone.
func Build(catalog Catalog, req BuildRequest) (Character, error) {
	c, err := New(req.Name, req.Tier)
	if err != nil {
		return Character{}, err
	}
	if req.Rank > 0 {
		c.Rank = req.Rank
	}

	species, ok := catalog.Species(req.SpeciesID)
	if !ok {
		return Character{}, &BuildError{Err: ErrUnknownSpecies, Field: req.SpeciesID}
	}
	var archetype content.Archetype
	if req.ArchetypeID != "" {
		archetype, ok = catalog.Archetype(req.ArchetypeID)
		if !ok {
			return Character{}, &BuildError{Err: ErrUnknownArchetype, Field: req.ArchetypeID}
		}
		if !archetype.AllowsSpecies(species.ID) {
			return Character{}, &BuildError{Err: ErrSpeciesMismatch, Field: archetype.ID}
		}
	}
	c.SpeciesID = species.ID
	c.ArchetypeID = archetype.ID

	keywords, err := resolveKeywords(species, archetype, req.KeywordChoices)
	if err != nil {
		return Character{}, err
	}
	c.Keywords = keywords

	attributes, err := attributeTargets(species, archetype, req.Attributes)
	if err != nil {
		return Character{}, err
	}
	skills, err := skillTargets(archetype, req.Skills)
	if err != nil {
		return Character{}, err
	}

	c.XP.add(LedgerItem{Kind: LedgerSpecies, Name: species.ID, Cost: species.XPCost})
	if archetype.ID != "" {
		c.XP.add(LedgerItem{Kind: LedgerArchetype, Name: archetype.ID, Cost: archetype.Cost})
	}
	for _, attr := range property.Attributes {
		from := 1 + archetype.AttributeBonuses[attr]
		c.XP.add(LedgerItem{Kind: LedgerAttribute, Name: attr, From: from, To: attributes[attr], Cost: AttributeCost(from, attributes[attr])})
	}
	for _, skill := range property.Skills {
		from := archetype.SkillBonuses[skill]
		c.XP.add(LedgerItem{Kind: LedgerSkill, Name: skill, From: from, To: skills[skill], Cost: SkillCost(from, skills[skill])})
	}
	if spent := c.XP.Spent(); spent > c.XP.Total {
		return Character{}, &BuildError{Err: ErrXPExceeded, Field: "xp", Value: spent, Min: 0, Max: c.XP.Total}
	}

	g := c.Graph
	if g, err = g.Graft(SpeciesNodes(species), ""); err != nil {
		return Character{}, fmt.Errorf("graft species %s: %w", species.ID, err)
	}
	if archetype.ID != "" {
		if g, err = g.Graft(ArchetypeNodes(archetype), ""); err != nil {
			return Character{}, fmt.Errorf("graft archetype %s: %w", archetype.ID, err)
		}
	}
	for i, attr := range property.Attributes {
		n := property.Node{
			ID:        property.AttributePrefix + attr,
			Type:      property.TypeAttribute,
			Name:      displayName(attr),
			Order:     10 + i,
			Tags:      []string{"attribute"},
			Enabled:   true,
			BaseValue: float64(attributes[attr]),
		}
		if g, err = g.Add(n, ""); err != nil {
			return Character{}, fmt.Errorf("add attribute %s: %w", attr, err)
		}
	}
	for i, skill := range property.Skills {
		n := property.Node{
			ID:              property.SkillPrefix + skill,
			Type:            property.TypeSkill,
			Name:            property.SkillDisplayNames[skill],
			Order:           100 + i,
			Tags:            []string{"skill"},
			Enabled:         true,
			BaseValue:       float64(skills[skill]),
			LinkedAttribute: property.SkillAttribute[skill],
		}
		if g, err = g.Add(n, ""); err != nil {
			return Character{}, fmt.Errorf("add skill %s: %w", skill, err)
		}
	}
	c.Graph = g
	return c, nil
}

// SpeciesNodes returns the species folder followed by its contents: base
// attribute and skill bonuses, the Speed constant and the species' own
// properties.
func SpeciesNodes(s content.Species) []property.Node {
	folderID := "species-" + s.ID
	nodes := []property.Node{{
		ID:          folderID,
		Type:        property.TypeFolder,
		Name:        s.Name,
		Tags:        []string{"species"},
		Enabled:     true,
		Description: s.Description,
		Source:      sourceRef(s.Source),
	}}

	order := 1
	for _, attr := range property.Attributes {
		v := s.BaseAttributes[attr]
		if v <= 0 {
			continue
		}
		nodes = append(nodes, property.Node{
			ID:          folderID + "-attr-" + attr,
			Type:        property.TypeBonus,
			Name:        s.Name + " " + attr,
			Parent:      folderID,
			Order:       order,
			Tags:        []string{"species", "attribute"},
			Enabled:     true,
			BonusTarget: attr,
			BonusAmount: float64(v),
			Description: fmt.Sprintf("Base %s from %s species", attr, s.Name),
		})
		order++
	}
	order = 100
	for _, skill := range property.Skills {
		v := s.BaseSkills[skill]
		if v <= 0 {
			continue
		}
		nodes = append(nodes, property.Node{
			ID:          folderID + "-skill-" + skill,
			Type:        property.TypeBonus,
			Name:        s.Name + " " + skill,
			Parent:      folderID,
			Order:       order,
			Tags:        []string{"species", "skill"},
			Enabled:     true,
			BonusTarget: skill,
			BonusAmount: float64(v),
			Description: fmt.Sprintf("Base %s from %s species", skill, s.Name),
		})
		order++
	}

	speed := property.Num(float64(s.Speed))
	nodes = append(nodes, property.Node{
		ID:          folderID + "-speed",
		Type:        property.TypeConstant,
		Name:        "Speed",
		Parent:      folderID,
		Order:       200,
		Tags:        []string{"species", "movement"},
		Enabled:     true,
		Value:       &speed,
		Description: fmt.Sprintf("Movement speed from %s species", s.Name),
	})

	for _, p := range s.Properties {
		p.Parent = folderID
		p.Children = nil
		nodes = append(nodes, p)
	}
	return nodes
}

// ArchetypeNodes returns the archetype folder, its ability feature and its
// influence bonus. Attribute and skill bonuses are not nodes; they raise the
// purchase minimums instead.
func ArchetypeNodes(a content.Archetype) []property.Node {
	folderID := "archetype-" + a.ID
	nodes := []property.Node{{
		ID:          folderID,
		Type:        property.TypeFolder,
		Name:        a.Name,
		Order:       1,
		Tags:        []string{"archetype"},
		Enabled:     true,
		Description: a.Description,
		Source:      sourceRef(a.Source),
	}}
	if a.Ability.Name != "" {
		feature := property.Node{
			ID:      folderID + "-ability",
			Type:    property.TypeFeature,
			Name:    a.Ability.Name,
			Parent:  folderID,
			Order:   1,
			Tags:    []string{"archetype", "ability"},
			Enabled: true,
			Text:    a.Ability.GameEffect,
		}
		if a.Ability.AbilityID != "" {
			feature.GrantedAbilities = []string{a.Ability.AbilityID}
		}
		nodes = append(nodes, feature)
	}
	if a.InfluenceBonus > 0 {
		nodes = append(nodes, property.Node{
			ID:          folderID + "-influence",
			Type:        property.TypeBonus,
			Name:        a.Name + " influence",
			Parent:      folderID,
			Order:       2,
			Tags:        []string{"archetype", "influence"},
			Enabled:     true,
			BonusTarget: "influence",
			BonusAmount: float64(a.InfluenceBonus),
		})
	}
	return nodes
}

func attributeTargets(s content.Species, a content.Archetype, requested map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(property.Attributes))
	for _, attr := range property.Attributes {
		out[attr] = 1 + a.AttributeBonuses[attr]
	}
	for name, target := range requested {
		attr, ok := property.CanonicalStat(name)
		if !ok || !property.IsAttribute(attr) {
			return nil, &BuildError{Err: ErrAttributeOutOfRange, Field: name}
		}
		lo := 1 + a.AttributeBonuses[attr]
		hi := min(MaxPurchasedAttribute, s.AttributeMaximum(attr))
		if target < lo || target > hi {
			return nil, &BuildError{Err: ErrAttributeOutOfRange, Field: attr, Value: target, Min: lo, Max: hi}
		}
		out[attr] = target
	}
	return out, nil
}

func skillTargets(a content.Archetype, requested map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(property.Skills))
	for _, skill := range property.Skills {
		out[skill] = a.SkillBonuses[skill]
	}
	for name, target := range requested {
		skill, ok := property.CanonicalStat(name)
		if !ok || !property.IsSkill(skill) {
			return nil, &BuildError{Err: ErrSkillOutOfRange, Field: name}
		}
		lo := a.SkillBonuses[skill]
		if target < lo || target > MaxSkillRank {
			return nil, &BuildError{Err: ErrSkillOutOfRange, Field: skill, Value: target, Min: lo, Max: MaxSkillRank}
		}
		out[skill] = target
	}
	return out, nil
}

// resolveKeywords merges species and archetype keywords, replacing bracketed
// ones with the player's choices. A bracketed keyword without a choice is
// kept as is unless the archetype requires it.
func resolveKeywords(s content.Species, a content.Archetype, choices map[string]string) ([]string, error) {
	normalized := make(map[string]string, len(choices))
	for k, v := range choices {
		if v = strings.TrimSpace(v); v != "" {
			normalized[bracketKey(k)] = strings.ToUpper(v)
		}
	}

	out := []string{}
	push := func(kw string) {
		if kw != "" && !slices.Contains(out, kw) {
			out = append(out, kw)
		}
	}
	replace := func(kw string) string {
		if !isBracketed(kw) {
			return kw
		}
		if choice, ok := normalized[bracketKey(kw)]; ok {
			return choice
		}
		return kw
	}

	for _, kw := range s.Keywords {
		push(replace(kw))
	}
	for _, kw := range a.Keywords {
		push(replace(kw))
	}
	for _, choice := range a.KeywordChoices {
		key := bracketKey(choice.BracketedKeywordID)
		value, ok := normalized[key]
		if !ok {
			if choice.Required {
				return nil, &BuildError{Err: ErrKeywordChoiceMissing, Field: choice.BracketedKeywordID}
			}
			continue
		}
		push(value)
	}
	return out, nil
}

func isBracketed(kw string) bool {
	return strings.HasPrefix(kw, "[") && strings.HasSuffix(kw, "]")
}

func bracketKey(kw string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(kw), "[]"))
}

func displayName(attr string) string {
	return strings.ToUpper(attr[:1]) + attr[1:]
}

func sourceRef(b content.Book) string {
	if b.Book == "" {
		return ""
	}
	return fmt.Sprintf("%s p.%d", b.Book, b.Page)
}
