package recipe

import "fmt"

// ResolveClasses merges every class in classes against its own inherited
// classes, depth-first, memoizing the result of each class and detecting
// self- and mutual-inheritance cycles per §4.1. The returned map contains
// one fully-merged Recipe per class name (with IsClass set and Root
// forced false).
func ResolveClasses(classes map[string]*Recipe) (map[string]*Recipe, error) {
	cache := make(map[string]*Recipe, len(classes))
	for name := range classes {
		if _, err := resolveClass(name, classes, cache, nil); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func resolveClass(name string, classes map[string]*Recipe, cache map[string]*Recipe, stack []string) (*Recipe, error) {
	if r, ok := cache[name]; ok {
		return r, nil
	}
	for i, s := range stack {
		if s != name {
			continue
		}
		if i == len(stack)-1 {
			return nil, fmt.Errorf("%w: %s", ErrClassSelfCycle, name)
		}
		return nil, fmt.Errorf("%w: %s", ErrClassMutualCycle, cyclePath(stack[i:], name))
	}

	raw, ok := classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}

	stack = append(stack, name)
	acc := &Recipe{IsClass: true, Name: name}
	for _, parent := range raw.Classes {
		parentResolved, err := resolveClass(parent, classes, cache, stack)
		if err != nil {
			return nil, err
		}
		acc = mergeRecipe(acc, parentResolved)
	}

	own := raw.Clone()
	own.Classes = nil
	acc = mergeRecipe(acc, own)
	acc.Name = name
	acc.IsClass = true
	acc.Root = false

	cache[name] = acc
	return acc, nil
}

func cyclePath(stack []string, closing string) string {
	path := ""
	for _, s := range stack {
		path += s + " -> "
	}
	return path + closing
}

// ResolveRecipe merges recipe's own fields on top of its inherited
// classes, in declaration order, per §4.1 ("child wins"). resolvedClasses
// must already contain every class recipe (transitively) inherits — use
// ResolveClasses to build it.
func ResolveRecipe(r *Recipe, resolvedClasses map[string]*Recipe) (*Recipe, error) {
	acc := &Recipe{Name: r.Name, Root: r.Root}
	for _, name := range r.Classes {
		cls, ok := resolvedClasses[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
		}
		acc = mergeRecipe(acc, cls)
	}
	own := r.Clone()
	own.Classes = nil
	acc = mergeRecipe(acc, own)
	acc.Name = r.Name
	acc.Root = r.Root
	acc.IsClass = false
	return acc, nil
}
