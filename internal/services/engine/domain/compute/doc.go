// Package compute evaluates a property graph into per-property computation
// records and an EntityStats snapshot.
//
// # Passes
//
// Compute walks the enabled subtree of a graph in four passes:
//  1. Attributes: base value, then the first set effect, then every
//     multiply effect, then every add effect. Results are clamped to 1.
//  2. Constants: formula-valued constants are evaluated once attribute
//     values are in the namespace. Numeric constants are seeded up front.
//  3. Skills: ranks plus the linked attribute plus add effects, clamped
//     to 0. Multiply and set effects on a skill are reported, not applied.
//  4. Resources: the maximum formula against the complete namespace.
//
// Every result is stored in the variable namespace under the node's
// semantic name (see property.SemanticName), so "tier + toughness" resolves
// against computed values.
//
// # Errors
//
// A formula failure never aborts the computation. It is recorded as a
// PropertyError and the offending effect or property is skipped.
//
// # Entity stats
//
// Stats runs Compute and derives defence, resilience, speed and the other
// combat stats from the computed attributes and the entity tier. Add effects
// and bonuses that name a derived stat are applied after derivation.
package compute
