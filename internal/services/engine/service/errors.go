package service

import (
	"errors"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
	"github.com/louisbranch/wrathforge/internal/services/engine/content"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/wrath"
	"github.com/louisbranch/wrathforge/internal/services/engine/storage"
)

// domainError converts a failure from the domain or storage layers into a
// coded platform error. Errors it does not recognize are returned as is and
// surface as Internal.
func domainError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	var buildErr *character.BuildError
	if errors.As(err, &buildErr) {
		return buildError(buildErr)
	}

	switch {
	case errors.Is(err, character.ErrEmptyName):
		return apperrors.Wrap(apperrors.CodeCharacterEmptyName, err.Error(), err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, err.Error(), map[string]string{"Resource": "character"}, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.WrapWithMetadata(apperrors.CodeAlreadyExists, err.Error(), map[string]string{"Resource": "character"}, err)
	case errors.Is(err, storage.ErrInvalidPageToken):
		return apperrors.Wrap(apperrors.CodeInvalidPageToken, err.Error(), err)
	case errors.Is(err, property.ErrNotFound), errors.Is(err, property.ErrParentNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodePropertyNotFound, err.Error(), map[string]string{"PropertyID": detail(err)}, err)
	case errors.Is(err, property.ErrMissingID), errors.Is(err, property.ErrInvalidType),
		errors.Is(err, property.ErrDuplicateID), errors.Is(err, property.ErrRootRemoval),
		errors.Is(err, property.ErrMissingRoot):
		return apperrors.WrapWithMetadata(apperrors.CodePropertyInvalid, err.Error(), map[string]string{"Reason": err.Error()}, err)
	case errors.Is(err, wrath.ErrInvalidDicePool):
		return apperrors.Wrap(apperrors.CodeDiceInvalidPool, err.Error(), err)
	case errors.Is(err, wrath.ErrInvalidDifficulty):
		return apperrors.Wrap(apperrors.CodeDiceInvalidDifficulty, err.Error(), err)
	case errors.Is(err, wrath.ErrInvalidWrathDice):
		return apperrors.Wrap(apperrors.CodeDiceInvalidWrath, err.Error(), err)
	case errors.Is(err, content.ErrUnknownKind):
		return apperrors.WrapWithMetadata(apperrors.CodeCatalogInvalidKind, err.Error(), map[string]string{"Kind": detail(err)}, err)
	}
	return err
}

func buildError(e *character.BuildError) error {
	meta := map[string]string{}
	code := apperrors.CodeUnknown
	switch {
	case errors.Is(e, character.ErrInvalidTier):
		code = apperrors.CodeCharacterInvalidTier
		meta["Tier"] = strconv.Itoa(e.Value)
	case errors.Is(e, character.ErrUnknownSpecies):
		code = apperrors.CodeCharacterUnknownSpecies
		meta["SpeciesID"] = e.Field
	case errors.Is(e, character.ErrUnknownArchetype):
		code = apperrors.CodeCharacterUnknownArchetype
		meta["ArchetypeID"] = e.Field
	case errors.Is(e, character.ErrSpeciesMismatch):
		code = apperrors.CodeCharacterArchetypeSpeciesMismatch
		meta["ArchetypeID"] = e.Field
	case errors.Is(e, character.ErrKeywordChoiceMissing):
		code = apperrors.CodeCharacterKeywordChoiceMissing
		meta["Keyword"] = e.Field
	case errors.Is(e, character.ErrAttributeOutOfRange):
		code = apperrors.CodeCharacterAttributeOutOfRange
		meta["Attribute"] = e.Field
		meta["Min"], meta["Max"] = strconv.Itoa(e.Min), strconv.Itoa(e.Max)
	case errors.Is(e, character.ErrSkillOutOfRange):
		code = apperrors.CodeCharacterSkillOutOfRange
		meta["Skill"] = e.Field
		meta["Min"], meta["Max"] = strconv.Itoa(e.Min), strconv.Itoa(e.Max)
	case errors.Is(e, character.ErrXPExceeded):
		code = apperrors.CodeCharacterXPExceeded
		meta["Spent"], meta["Total"] = strconv.Itoa(e.Value), strconv.Itoa(e.Max)
	case errors.Is(e, character.ErrUnknownThreat):
		code = apperrors.CodeDiceInvalidThreat
		meta["Threat"] = e.Field
	}
	return apperrors.WrapWithMetadata(code, e.Error(), meta, e)
}

// detail returns the text after the sentinel prefix of a wrapped error
// ("property not found: x" gives "x").
func detail(err error) string {
	_, rest, ok := strings.Cut(err.Error(), ": ")
	if !ok {
		return err.Error()
	}
	if v, err := strconv.Unquote(rest); err == nil {
		return v
	}
	return rest
}
