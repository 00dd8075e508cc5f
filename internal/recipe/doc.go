// Package recipe loads and normalizes recipe and class YAML files into
// the in-memory model the package expander consumes.
//
// A recipe file describes one buildable entity: its checkout, build, and
// package scripts, its dependencies, and what it provides to consumers.
// A class is syntactically identical but exists only to be inherited from
// — classes compose by ordered field merge, with the usual "child wins,
// lists concatenate, maps merge" rules.
//
//	store, err := recipe.Load("/path/to/project")
//	if err != nil {
//		log.Fatal(err)
//	}
//	r := store.Recipes["my-app"]
package recipe
