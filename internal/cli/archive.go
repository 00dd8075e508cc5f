package cli

import (
	"context"
	"fmt"

	"github.com/bobbuildtool/bob/internal/cache"
	"github.com/bobbuildtool/bob/internal/cache/retention"
	"github.com/bobbuildtool/bob/internal/paths"
)

// ArchiveCmd groups the read-only and reclaiming operations over the
// configured artifact cache backends (§5, §4.6).
type ArchiveCmd struct {
	Scan  ArchiveScanCmd  `cmd:"" help:"List every key present across configured backends."`
	Find  ArchiveFindCmd  `cmd:"" help:"Query archived artifacts by a retention expression."`
	Clean ArchiveCleanCmd `cmd:"" help:"Remove archived artifacts matched by a retention expression."`
}

// ArchiveScanCmd implements `bob archive scan`.
type ArchiveScanCmd struct{}

func (c *ArchiveScanCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()
	keys, err := e.Cache.Scan(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

// ArchiveFindCmd implements `bob archive find`: prints every archived
// artifact whose audit trail matches a retention expression.
type ArchiveFindCmd struct {
	Query string `arg:"" help:"Retention expression, e.g. package == \"foo\" LIMIT 10."`
}

func (c *ArchiveFindCmd) Run(ctx context.Context) error {
	records, keys, err := matchRetention(ctx, c.Query)
	if err != nil {
		return err
	}
	for i, r := range records {
		fmt.Printf("%s\t%s\n", keys[i], r["buildId"])
	}
	return nil
}

// ArchiveCleanCmd implements `bob archive clean`: removes every
// archived artifact matched by a retention expression, after
// propagating "kept" status transitively across each artifact's
// recorded inputs.
type ArchiveCleanCmd struct {
	Query  string `arg:"" help:"Retention expression selecting artifacts to KEEP; everything else is removed."`
	DryRun bool   `help:"Print what would be removed without removing it."`
}

func (c *ArchiveCleanCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()
	keys, err := e.Cache.Scan(ctx)
	if err != nil {
		return err
	}

	q, err := retention.Parse(c.Query)
	if err != nil {
		return fmt.Errorf("bob archive clean: %w", err)
	}

	var records []retention.Record
	for _, key := range keys {
		meta, err := e.Cache.FetchMeta(ctx, key)
		if err != nil {
			continue
		}
		records = append(records, auditRecord(key, meta))
	}

	kept, err := retention.Apply(q, records, "buildId", func(r retention.Record) []string {
		inputs, _ := r["inputs"].([]string)
		return inputs
	})
	if err != nil {
		return err
	}

	keepKeys := make(map[string]bool, len(kept))
	for _, r := range kept {
		if k, ok := r["_key"].(string); ok {
			keepKeys[k] = true
		}
	}

	var toRemove []string
	for _, key := range keys {
		if !keepKeys[key] {
			toRemove = append(toRemove, key)
		}
	}

	if c.DryRun {
		for _, k := range toRemove {
			fmt.Println(k)
		}
		return nil
	}
	return e.Cache.CleanKeys(ctx, toRemove)
}

func auditRecord(key string, meta cache.AuditTrail) retention.Record {
	metaTags := make(map[string]any, len(meta.MetaEnv))
	for k, v := range meta.MetaEnv {
		metaTags[k] = v
	}
	return retention.Record{
		"_key":       key,
		"buildId":    meta.BuildID,
		"variantId":  meta.VariantID,
		"bobVersion": meta.BobVersion,
		"stepKind":   meta.StepKind,
		"language":   meta.Language,
		"recipe":     meta.Recipe,
		"package":    meta.Package,
		"inputs":     meta.Inputs,
		"host": map[string]any{
			"os":       meta.Host.OS,
			"kernel":   meta.Host.Kernel,
			"hostname": meta.Host.Hostname,
		},
		"build": map[string]any{
			"date": float64(meta.BuildDate.Unix()),
		},
		"meta": metaTags,
	}
}

func matchRetention(ctx context.Context, expr string) ([]retention.Record, []string, error) {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return nil, nil, err
	}
	defer e.Close()
	keys, err := e.Cache.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	q, err := retention.Parse(expr)
	if err != nil {
		return nil, nil, fmt.Errorf("bob archive find: %w", err)
	}

	var matched []retention.Record
	var matchedKeys []string
	for _, key := range keys {
		meta, err := e.Cache.FetchMeta(ctx, key)
		if err != nil {
			continue
		}
		rec := auditRecord(key, meta)
		ok, err := retention.Eval(q, rec)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			matched = append(matched, rec)
			matchedKeys = append(matchedKeys, key)
		}
	}

	if q.Limit != nil {
		matched, err = retention.Apply(q, matched, "_key", func(retention.Record) []string { return nil })
		if err != nil {
			return nil, nil, err
		}
		matchedKeys = matchedKeys[:0]
		for _, r := range matched {
			k, _ := r["_key"].(string)
			matchedKeys = append(matchedKeys, k)
		}
	}
	return matched, matchedKeys, nil
}
