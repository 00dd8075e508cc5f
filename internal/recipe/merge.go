package recipe

// mergeRecipe combines base and overlay per §4.1's field-wise merge rules:
// scalars take the overlay's value when set, lists concatenate (base
// entries first), and maps recursively merge with the overlay's keys
// winning on conflict. overlay is the "later" entity in merge order — for
// class lists this is the next class name in declaration order; for a
// recipe inheriting classes it is the recipe's own fields, which always
// win last.
func mergeRecipe(base, overlay *Recipe) *Recipe {
	out := base.Clone()

	out.Classes = append(out.Classes, overlay.Classes...)
	out.Deps = append(out.Deps, overlay.Deps...)
	out.ProvideDeps = mergeStringSet(out.ProvideDeps, overlay.ProvideDeps)
	out.Scms = append(out.Scms, overlay.Scms...)

	out.Checkout = mergeStep(out.Checkout, overlay.Checkout)
	out.Build = mergeStep(out.Build, overlay.Build)
	out.Package = mergeStep(out.Package, overlay.Package)

	out.ProvideTools = mergeToolMap(out.ProvideTools, overlay.ProvideTools)
	out.ProvideVars = mergeStringMap(out.ProvideVars, overlay.ProvideVars)

	if overlay.ProvideSandbox != nil {
		sb := *overlay.ProvideSandbox
		out.ProvideSandbox = &sb
	}

	out.Environment = EnvironmentSets{
		Consumed: mergeStringSet(out.Environment.Consumed, overlay.Environment.Consumed),
		Provided: mergeStringMap(out.Environment.Provided, overlay.Environment.Provided),
		Private:  mergeStringMap(out.Environment.Private, overlay.Environment.Private),
		Meta:     mergeStringMap(out.Environment.Meta, overlay.Environment.Meta),
	}

	if overlay.Fingerprint != nil {
		fp := *overlay.Fingerprint
		out.Fingerprint = &fp
	}

	// Scalars: overlay wins whenever it actually sets the field. Root and
	// IsClass are never inherited from classes; Relocatable and
	// NoUndefinedTools follow "overlay overrides" since a false zero
	// value is indistinguishable from "not set" — recipes that need to
	// flip a flag back off must do so explicitly in the final entity.
	if overlay.Relocatable {
		out.Relocatable = true
	}
	if overlay.NoUndefinedTools {
		out.NoUndefinedTools = true
	}

	return out
}

func mergeStep(base, overlay *StepDef) *StepDef {
	if overlay == nil {
		return base
	}
	if base == nil {
		c := *overlay
		return &c
	}
	out := *base
	if overlay.Script != "" {
		out.Script = overlay.Script
	}
	out.Tools = mergeToolRefs(out.Tools, overlay.Tools)
	out.Vars = mergeStringSet(out.Vars, overlay.Vars)
	if overlay.Deterministic {
		out.Deterministic = true
	}
	if overlay.JobServer != "" {
		out.JobServer = overlay.JobServer
	}
	if overlay.Relocatable {
		out.Relocatable = true
	}
	if overlay.FingerprintIf != "" {
		out.FingerprintIf = overlay.FingerprintIf
	}
	if overlay.FingerprintScript != "" {
		out.FingerprintScript = overlay.FingerprintScript
	}
	if overlay.SandboxMode != "" {
		out.SandboxMode = overlay.SandboxMode
	}
	return &out
}

func mergeToolRefs(base, overlay []ToolRef) []ToolRef {
	seen := make(map[string]int, len(base))
	out := append([]ToolRef{}, base...)
	for i, t := range out {
		seen[t.Name] = i
	}
	for _, t := range overlay {
		if i, ok := seen[t.Name]; ok {
			out[i] = t
			continue
		}
		seen[t.Name] = len(out)
		out = append(out, t)
	}
	return out
}

func mergeStringSet(base, overlay []string) []string {
	seen := make(map[string]bool, len(base))
	out := append([]string{}, base...)
	for _, s := range out {
		seen[s] = true
	}
	for _, s := range overlay {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func mergeStringMap(base, overlay map[string]string) map[string]string {
	if base == nil && overlay == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func mergeToolMap(base, overlay map[string]ToolProvide) map[string]ToolProvide {
	if base == nil && overlay == nil {
		return nil
	}
	out := make(map[string]ToolProvide, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
