// Package memadapter is a reference adapter.Driver backed by an
// in-process map, used by the test suites of package adapter, join,
// and authstore, and as a minimal runnable example of the
// driver contract (spec.md §6.1).
package memadapter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/better-auth/adaptercore/adapter"
	"github.com/better-auth/adaptercore/transform"
	"github.com/better-auth/adaptercore/where"
)

// Driver is an in-memory adapter.Driver. It stores rows as
// map[string]any keyed by physical model name, with auto-incrementing
// numeric ids when Capabilities().SupportsNumericIds is set, and
// opaque string ids otherwise (the common case, since Driver declares
// DisableIDGeneration: false and lets the factory supply ids).
type Driver struct {
	mu      sync.Mutex
	tables  map[string]map[string]adapter.Row
	numeric bool
	nextID  map[string]int64
}

// New returns a Driver. numericIDs selects auto-increment ids (spec.md
// §4.4 useNumberId) instead of accepting externally generated ones.
func New(numericIDs bool) *Driver {
	return &Driver{
		tables:  make(map[string]map[string]adapter.Row),
		numeric: numericIDs,
		nextID:  make(map[string]int64),
	}
}

// Capabilities reports a driver that supports every C2 coercion
// natively (no translation needed against Go's native map/slice/bool
// types) so adapter-conformance tests exercise the pass-through paths.
// Driver has no capability-poor profile; package transform's own tests
// cover the coercion paths.
func (d *Driver) Capabilities() adapter.Capabilities {
	return adapter.Capabilities{
		Capabilities: coercionRichCapabilities(d.numeric),
		AdapterID:    "memory",
		AdapterName:  "In-Memory Adapter",
		Transaction:  true,
		Joins:        adapter.JoinFallback,
		DebugLogs:    true,
	}
}

func (d *Driver) table(model string) map[string]adapter.Row {
	t, ok := d.tables[model]
	if !ok {
		t = make(map[string]adapter.Row)
		d.tables[model] = t
	}
	return t
}

func (d *Driver) Create(ctx context.Context, req adapter.CreateRequest) (adapter.Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	row := cloneRow(req.Data)
	if d.numeric {
		d.nextID[req.Model]++
		row["id"] = d.nextID[req.Model]
	}
	id, ok := row["id"]
	if !ok {
		return nil, fmt.Errorf("memadapter: create %s missing id", req.Model)
	}
	key := fmt.Sprint(id)
	t := d.table(req.Model)
	if _, exists := t[key]; exists {
		return nil, fmt.Errorf("memadapter: duplicate id %q in %s", key, req.Model)
	}
	t[key] = row
	return cloneRow(row), nil
}

func (d *Driver) Update(ctx context.Context, req adapter.UpdateRequest) (adapter.Row, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(req.Model)
	for key, row := range t {
		if matches(row, req.Where) {
			for k, v := range req.Update {
				row[k] = v
			}
			t[key] = row
			return cloneRow(row), true, nil
		}
	}
	return nil, false, nil
}

func (d *Driver) UpdateMany(ctx context.Context, req adapter.UpdateRequest) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(req.Model)
	n := 0
	for key, row := range t {
		if matches(row, req.Where) {
			for k, v := range req.Update {
				row[k] = v
			}
			t[key] = row
			n++
		}
	}
	return n, nil
}

func (d *Driver) FindOne(ctx context.Context, req adapter.FindOneRequest) (adapter.Row, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(req.Model)
	for _, row := range sortedRows(t) {
		if matches(row, req.Where) {
			return cloneRow(row), true, nil
		}
	}
	return nil, false, nil
}

func (d *Driver) FindMany(ctx context.Context, req adapter.FindManyRequest) ([]adapter.Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(req.Model)
	var out []adapter.Row
	for _, row := range sortedRows(t) {
		if matches(row, req.Where) {
			out = append(out, cloneRow(row))
		}
	}
	applySort(out, req.SortBy)
	if req.Offset > 0 {
		if req.Offset >= len(out) {
			return []adapter.Row{}, nil
		}
		out = out[req.Offset:]
	}
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

func (d *Driver) Delete(ctx context.Context, req adapter.DeleteRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(req.Model)
	for key, row := range t {
		if matches(row, req.Where) {
			delete(t, key)
			return nil
		}
	}
	return nil
}

func (d *Driver) DeleteMany(ctx context.Context, req adapter.DeleteRequest) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(req.Model)
	n := 0
	for key, row := range t {
		if matches(row, req.Where) {
			delete(t, key)
			n++
		}
	}
	return n, nil
}

func (d *Driver) Count(ctx context.Context, req adapter.CountRequest) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(req.Model)
	n := 0
	for _, row := range t {
		if matches(row, req.Where) {
			n++
		}
	}
	return n, nil
}

// Transaction runs fn directly against d, so the reference driver can
// exercise adapter.Factory's transactional call path in tests. No lock
// is held across fn, and writes made before fn returns an error are not
// rolled back.
func (d *Driver) Transaction(ctx context.Context, fn func(adapter.Driver) error) error {
	return fn(d)
}

func cloneRow(r adapter.Row) adapter.Row {
	out := make(adapter.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func sortedRows(t map[string]adapter.Row) []adapter.Row {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]adapter.Row, 0, len(keys))
	for _, k := range keys {
		out = append(out, t[k])
	}
	return out
}

func applySort(rows []adapter.Row, sortBy []adapter.SortField) {
	if len(sortBy) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range sortBy {
			a, b := rows[i][s.Field], rows[j][s.Field]
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	as, aok := toComparableString(a)
	bs, bok := toComparableString(b)
	if aok && bok {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func toComparableString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	default:
		return fmt.Sprint(v), v != nil
	}
}

// matches partitions clauses into an AND-group and an OR-group by
// Connector, then combines them as AND(and-group) AND OR(or-group): all
// AND-connected predicates must hold, and at least one OR-connected
// predicate must hold whenever the OR-group is non-empty.
func matches(row adapter.Row, clauses []where.Compiled) bool {
	if len(clauses) == 0 {
		return true
	}

	andResult := true
	orResult := false
	hasOr := false

	for _, c := range clauses {
		v := evalClause(row, c)
		if c.Connector == where.Or {
			hasOr = true
			orResult = orResult || v
		} else {
			andResult = andResult && v
		}
	}

	if hasOr {
		return andResult && orResult
	}
	return andResult
}

func evalClause(row adapter.Row, c where.Compiled) bool {
	actual := row[c.Field]
	if c.CaseInsensitive {
		actual = where.Fold(actual)
	}
	switch c.Operator {
	case where.EQ:
		return valuesEqual(actual, c.Value)
	case where.NE:
		return !valuesEqual(actual, c.Value)
	case where.LT:
		return compareValues(actual, c.Value) < 0
	case where.LTE:
		return compareValues(actual, c.Value) <= 0
	case where.GT:
		return compareValues(actual, c.Value) > 0
	case where.GTE:
		return compareValues(actual, c.Value) >= 0
	case where.In:
		for _, v := range asSlice(c.Value) {
			if valuesEqual(actual, v) {
				return true
			}
		}
		return false
	case where.NotIn:
		for _, v := range asSlice(c.Value) {
			if valuesEqual(actual, v) {
				return false
			}
		}
		return true
	case where.Contains:
		s, ok1 := actual.(string)
		sub, ok2 := c.Value.(string)
		return ok1 && ok2 && strings.Contains(s, sub)
	case where.StartsWith:
		s, ok1 := actual.(string)
		prefix, ok2 := c.Value.(string)
		return ok1 && ok2 && strings.HasPrefix(s, prefix)
	case where.EndsWith:
		s, ok1 := actual.(string)
		suffix, ok2 := c.Value.(string)
		return ok1 && ok2 && strings.HasSuffix(s, suffix)
	default:
		return false
	}
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	as, aok := toComparableString(a)
	bs, bok := toComparableString(b)
	return aok && bok && as == bs
}

func asSlice(v any) []any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

// coercionRichCapabilities reports a driver that natively supports
// every C2-coerced type, so the reference adapter exercises the
// pass-through paths of package transform by default.
func coercionRichCapabilities(numeric bool) transform.Capabilities {
	return transform.Capabilities{
		SupportsBooleans:   true,
		SupportsDates:      true,
		SupportsJSON:       true,
		SupportsJSONB:      true,
		SupportsArrays:     true,
		SupportsNumericIDs: numeric,
		SupportsNumbers:    true,
		UseNumberID:        numeric,
	}
}
