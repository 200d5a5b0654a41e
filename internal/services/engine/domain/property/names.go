package property

import (
	"slices"
	"strings"
	"unicode"
)

// Attribute and skill id prefixes used by character assembly.
const (
	AttributePrefix = "attr-"
	SkillPrefix     = "skill-"
)

// Attributes lists the seven attributes in sheet order.
var Attributes = []string{
	"strength",
	"toughness",
	"agility",
	"initiative",
	"willpower",
	"intellect",
	"fellowship",
}

// Skills lists the eighteen skills in sheet order.
var Skills = []string{
	"athletics",
	"awareness",
	"ballisticSkill",
	"cunning",
	"deception",
	"insight",
	"intimidation",
	"investigation",
	"leadership",
	"medicae",
	"persuasion",
	"pilot",
	"psychicMastery",
	"scholar",
	"stealth",
	"survival",
	"tech",
	"weaponSkill",
}

// SkillAttribute maps each skill to its linked attribute.
var SkillAttribute = map[string]string{
	"athletics":      "strength",
	"awareness":      "intellect",
	"ballisticSkill": "agility",
	"cunning":        "fellowship",
	"deception":      "fellowship",
	"insight":        "fellowship",
	"intimidation":   "willpower",
	"investigation":  "intellect",
	"leadership":     "willpower",
	"medicae":        "intellect",
	"persuasion":     "fellowship",
	"pilot":          "agility",
	"psychicMastery": "willpower",
	"scholar":        "intellect",
	"stealth":        "agility",
	"survival":       "willpower",
	"tech":           "intellect",
	"weaponSkill":    "initiative",
}

// SkillDisplayNames maps each skill to its sheet label.
var SkillDisplayNames = map[string]string{
	"athletics":      "Athletics",
	"awareness":      "Awareness",
	"ballisticSkill": "Ballistic Skill",
	"cunning":        "Cunning",
	"deception":      "Deception",
	"insight":        "Insight",
	"intimidation":   "Intimidation",
	"investigation":  "Investigation",
	"leadership":     "Leadership",
	"medicae":        "Medicae",
	"persuasion":     "Persuasion",
	"pilot":          "Pilot",
	"psychicMastery": "Psychic Mastery",
	"scholar":        "Scholar",
	"stealth":        "Stealth",
	"survival":       "Survival",
	"tech":           "Tech",
	"weaponSkill":    "Weapon Skill",
}

var canonical = func() map[string]string {
	out := make(map[string]string, len(Attributes)+len(Skills))
	for _, name := range Attributes {
		out[NormalizeName(name)] = name
	}
	for _, name := range Skills {
		out[NormalizeName(name)] = name
	}
	return out
}()

// NormalizeName folds a name to the key used when matching effect targets:
// lower case with spaces, hyphens and underscores removed.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// IsAttribute reports whether name (in any spelling) is an attribute.
func IsAttribute(name string) bool {
	c, ok := CanonicalStat(name)
	return ok && slices.Contains(Attributes, c)
}

// IsSkill reports whether name (in any spelling) is a skill.
func IsSkill(name string) bool {
	c, ok := CanonicalStat(name)
	return ok && SkillAttribute[c] != ""
}

// CanonicalStat returns the camelCase attribute or skill name matching name.
func CanonicalStat(name string) (string, bool) {
	c, ok := canonical[NormalizeName(name)]
	return c, ok
}

// SemanticName is the name a node is known by in formulas and effect
// targets. Attribute and skill nodes created by assembly carry it in their
// id; other nodes use their display name in camelCase.
func SemanticName(n Node) string {
	switch {
	case strings.HasPrefix(n.ID, AttributePrefix) && n.Type == TypeAttribute:
		return strings.TrimPrefix(n.ID, AttributePrefix)
	case strings.HasPrefix(n.ID, SkillPrefix) && n.Type == TypeSkill:
		return strings.TrimPrefix(n.ID, SkillPrefix)
	}
	if c, ok := CanonicalStat(n.Name); ok {
		return c
	}
	return CamelCase(n.Name)
}

// CamelCase converts a display name to an identifier: "Max Wounds" becomes
// "maxWounds". Characters that cannot appear in an identifier are dropped.
func CamelCase(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	var b strings.Builder
	for i, field := range fields {
		if i == 0 {
			b.WriteString(strings.ToLower(field[:1]) + field[1:])
			continue
		}
		b.WriteString(strings.ToUpper(field[:1]) + field[1:])
	}
	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
