// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeInvalidPageToken Code = "INVALID_PAGE_TOKEN"

	// Character assembly errors
	CodeCharacterEmptyName                Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterInvalidTier              Code = "CHARACTER_INVALID_TIER"
	CodeCharacterUnknownSpecies           Code = "CHARACTER_UNKNOWN_SPECIES"
	CodeCharacterUnknownArchetype         Code = "CHARACTER_UNKNOWN_ARCHETYPE"
	CodeCharacterArchetypeSpeciesMismatch Code = "CHARACTER_ARCHETYPE_SPECIES_MISMATCH"
	CodeCharacterKeywordChoiceMissing     Code = "CHARACTER_KEYWORD_CHOICE_MISSING"
	CodeCharacterAttributeOutOfRange      Code = "CHARACTER_ATTRIBUTE_OUT_OF_RANGE"
	CodeCharacterSkillOutOfRange          Code = "CHARACTER_SKILL_OUT_OF_RANGE"
	CodeCharacterXPExceeded               Code = "CHARACTER_XP_EXCEEDED"

	// Property graph errors
	CodePropertyInvalid  Code = "PROPERTY_INVALID"
	CodePropertyNotFound Code = "PROPERTY_NOT_FOUND"

	// Dice/test errors
	CodeDiceInvalidPool       Code = "DICE_INVALID_POOL"
	CodeDiceInvalidDifficulty Code = "DICE_INVALID_DIFFICULTY"
	CodeDiceInvalidWrath      Code = "DICE_INVALID_WRATH"
	CodeDiceUnknownSkill      Code = "DICE_UNKNOWN_SKILL"
	CodeDiceInvalidThreat     Code = "DICE_INVALID_THREAT"
	CodeDicePoolTooLarge      Code = "DICE_POOL_TOO_LARGE"
	CodeDiceWrathTooLarge     Code = "DICE_WRATH_TOO_LARGE"

	// Random/seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"

	// Ability errors
	CodeAbilityUnknown Code = "ABILITY_UNKNOWN"

	// Catalog errors
	CodeCatalogInvalidKind   Code = "CATALOG_INVALID_KIND"
	CodeCatalogInvalidFilter Code = "CATALOG_INVALID_FILTER"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCharacterEmptyName,
		CodeCharacterInvalidTier,
		CodeCharacterUnknownSpecies,
		CodeCharacterUnknownArchetype,
		CodeCharacterKeywordChoiceMissing,
		CodeCharacterAttributeOutOfRange,
		CodeCharacterSkillOutOfRange,
		CodePropertyInvalid,
		CodeDiceInvalidPool,
		CodeDiceInvalidDifficulty,
		CodeDiceInvalidWrath,
		CodeDiceUnknownSkill,
		CodeDiceInvalidThreat,
		CodeDicePoolTooLarge,
		CodeDiceWrathTooLarge,
		CodeSeedOutOfRange,
		CodeAbilityUnknown,
		CodeCatalogInvalidKind,
		CodeCatalogInvalidFilter,
		CodeInvalidPageToken:
		return codes.InvalidArgument

	// FailedPrecondition - the build is well-formed but breaks a rule
	case CodeCharacterArchetypeSpeciesMismatch,
		CodeCharacterXPExceeded:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodePropertyNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyExists:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
