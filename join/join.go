// Package join implements the fallback join resolver (spec.md §4.5): for
// backends that cannot join natively, it detects the forward/backward
// relation from the composed schema and issues batched secondary
// queries, attaching results to the base rows.
package join

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/where"
)

// Querier is the minimal surface the resolver needs to issue secondary
// queries. Package adapter satisfies it with a small wrapper around
// Factory, so neither package imports the other's option types.
type Querier interface {
	FindMany(ctx context.Context, model string, preds []where.Predicate, limit int, selectFields []string) ([]core.Record, error)
}

// direction classifies how a related model connects to the base model
// (spec.md §4.5 step 1).
type direction uint8

const (
	dirForward direction = iota
	dirBackward
)

type relation struct {
	dir          direction
	forwardField string // logical field on the related model, set when dir == dirForward
	forwardUniq  bool
	backField    string // logical field on the base model, set when dir == dirBackward
}

// classify detects the relation between baseModel and relatedModel from
// the composed schema (spec.md §4.5 step 1).
func classify(reg *schema.Registry, baseModel, relatedModel string) (relation, error) {
	related, ok := reg.Model(relatedModel)
	if !ok {
		return relation{}, &core.SchemaLookupError{Name: relatedModel}
	}
	for fname, fd := range related.Fields {
		ref := fd.ReferenceTo()
		if ref == nil {
			continue
		}
		refLogical, err := reg.GetDefaultModelName(ref.Model)
		if err != nil {
			refLogical = ref.Model
		}
		if refLogical == baseModel {
			return relation{dir: dirForward, forwardField: fname, forwardUniq: fd.Unique()}, nil
		}
	}

	base, ok := reg.Model(baseModel)
	if !ok {
		return relation{}, &core.SchemaLookupError{Name: baseModel}
	}
	for fname, fd := range base.Fields {
		ref := fd.ReferenceTo()
		if ref == nil {
			continue
		}
		refLogical, err := reg.GetDefaultModelName(ref.Model)
		if err != nil {
			refLogical = ref.Model
		}
		if refLogical == relatedModel {
			return relation{dir: dirBackward, backField: fname}, nil
		}
	}

	return relation{}, fmt.Errorf("adaptercore/join: cannot determine relation between %q and %q", baseModel, relatedModel)
}

// resolved holds the outcome of resolving one join key, computed
// concurrently with its siblings and attached to rows afterward.
type resolved struct {
	joinKey string
	rel     relation
	// bucket maps a stringified key value to the matching related
	// records (forward relations bucket by the related row's foreign
	// key; backward relations bucket by the related row's id).
	bucket map[string][]core.Record
	// perParent holds one-to-many results fetched individually, used
	// only when a per-parent Limit was requested (spec.md §4.5 step 5).
	perParent map[string][]core.Record
}

// Resolve attaches every requested join in joins to each row in rows.
// rows must already be in the framework's logical shape (post-C2
// output transform). baseModel is the logical model the rows belong to.
func Resolve(ctx context.Context, q Querier, reg *schema.Registry, baseModel string, rows []core.Record, joins map[string]core.JoinSpec) error {
	if len(rows) == 0 || len(joins) == 0 {
		return nil
	}

	keys := make([]string, 0, len(joins))
	for k := range joins {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic fan-out order

	results := make([]resolved, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, joinKey := range keys {
		i, joinKey := i, joinKey
		spec := joins[joinKey]
		g.Go(func() error {
			r, err := resolveOne(gctx, q, reg, baseModel, joinKey, spec, rows)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		attach(rows, r)
	}
	return nil
}

func resolveOne(ctx context.Context, q Querier, reg *schema.Registry, baseModel, joinKey string, spec core.JoinSpec, rows []core.Record) (resolved, error) {
	relatedModel, err := reg.GetDefaultModelName(joinKey)
	if err != nil {
		relatedModel = joinKey
		if _, ok := reg.Model(relatedModel); !ok {
			return resolved{}, err
		}
	}

	rel, err := classify(reg, baseModel, relatedModel)
	if err != nil {
		return resolved{}, err
	}

	out := resolved{joinKey: joinKey, rel: rel, bucket: map[string][]core.Record{}}

	switch rel.dir {
	case dirForward:
		if !rel.forwardUniq && spec.Limit > 0 && len(rows) > 0 {
			// spec.md §4.5 step 5: a per-parent limit on a one-to-many
			// fallback forces one query per parent.
			out.perParent = map[string][]core.Record{}
			for _, row := range rows {
				id := fmt.Sprint(row["id"])
				if row["id"] == nil {
					continue
				}
				res, err := q.FindMany(ctx, relatedModel, []where.Predicate{
					{Field: rel.forwardField, Value: row["id"]},
				}, spec.Limit, spec.Select)
				if err != nil {
					return resolved{}, err
				}
				out.perParent[id] = res
			}
			return out, nil
		}

		ids := collectDistinct(rows, "id")
		if len(ids) == 0 {
			return out, nil
		}
		related, err := q.FindMany(ctx, relatedModel, []where.Predicate{
			{Field: rel.forwardField, Value: ids, Operator: where.In},
		}, 0, spec.Select)
		if err != nil {
			return resolved{}, err
		}
		for _, r := range related {
			key := fmt.Sprint(r[rel.forwardField])
			out.bucket[key] = append(out.bucket[key], r)
		}
		return out, nil

	case dirBackward:
		ids := collectDistinct(rows, rel.backField)
		if len(ids) == 0 {
			return out, nil
		}
		related, err := q.FindMany(ctx, relatedModel, []where.Predicate{
			{Field: "id", Value: ids, Operator: where.In},
		}, 0, spec.Select)
		if err != nil {
			return resolved{}, err
		}
		for _, r := range related {
			key := fmt.Sprint(r["id"])
			out.bucket[key] = append(out.bucket[key], r)
		}
		return out, nil
	}
	return out, nil
}

func collectDistinct(rows []core.Record, field string) []any {
	seen := map[string]bool{}
	var out []any
	for _, row := range rows {
		v, ok := row[field]
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprint(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// attach writes one resolved join's results onto every row (spec.md
// §4.5 step 4: missing relations produce null or []).
func attach(rows []core.Record, r resolved) {
	for _, row := range rows {
		idVal, hasID := row["id"]
		key := ""
		if hasID {
			key = fmt.Sprint(idVal)
		}

		switch r.rel.dir {
		case dirForward:
			if r.perParent != nil {
				row[r.joinKey] = orEmpty(r.perParent[key])
				continue
			}
			group := r.bucket[key]
			if r.rel.forwardUniq {
				if len(group) > 0 {
					row[r.joinKey] = group[0]
				} else {
					row[r.joinKey] = nil
				}
			} else {
				row[r.joinKey] = orEmpty(group)
			}
		case dirBackward:
			fkVal, ok := row[r.rel.backField]
			if !ok || fkVal == nil {
				row[r.joinKey] = nil
				continue
			}
			group := r.bucket[fmt.Sprint(fkVal)]
			if len(group) > 0 {
				row[r.joinKey] = group[0]
			} else {
				row[r.joinKey] = nil
			}
		}
	}
}

func orEmpty(rs []core.Record) []core.Record {
	if rs == nil {
		return []core.Record{}
	}
	return rs
}
