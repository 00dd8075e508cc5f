// Package graph expands a resolved recipe set into a graph of concrete
// Packages and their Steps, implementing the environment/tools/sandbox
// propagation rules and the use:/forward: directives of the recipe
// dependency model.
//
// Expansion is depth-first and deterministic: dependency lists are
// walked in declaration order, and two instantiations of the same
// recipe are the same Package iff every one of their steps computes the
// same Variant-Id — otherwise they are distinct packages that happen to
// share a recipe name.
package graph
