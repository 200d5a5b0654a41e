// Package ability decides which situational abilities apply to a test and
// folds their effects into bonus dice, rerolls, automatic icons and
// narrative effects for the dice engine.
//
// An ability applies when every one of its conditions holds for the
// context; an empty condition list always applies. Numeric effects of all
// applicable abilities are summed and their text effects concatenated in
// the order the abilities were requested.
package ability
