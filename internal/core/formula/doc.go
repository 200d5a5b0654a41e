// Package formula evaluates the short arithmetic expressions used by rule
// content ("tier + toughness", "floor(willpower / 2)") against a namespace of
// named numeric values.
//
// Expressions are tokenized and checked against a closed grammar before they
// reach the Lua interpreter that performs the arithmetic. The interpreter runs
// without its standard libraries and only sees the four registered functions
// floor, ceil, min and max.
package formula
