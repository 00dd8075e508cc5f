// Package retention implements the archive clean/find retention-
// expression grammar (§4.6): string literals, dotted field references,
// comparisons, the &&/||/! logical combinators, parentheses, and an
// optional trailing "LIMIT n [ORDER BY field [ASC|DESC]]" clause.
package retention
