package adapter

import (
	"context"
	"fmt"
	"log/slog"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/hooks"
	"github.com/better-auth/adaptercore/join"
	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/transform"
	"github.com/better-auth/adaptercore/where"
)

// Factory is the coordinator described in spec.md §4.4: it owns a
// composed schema registry, a driver, an id-generation policy, and a
// hook registry, and drives the transform/where/join pipeline around
// every call a driver-agnostic caller makes.
type Factory struct {
	reg      *schema.Registry
	driver   Driver
	caps     Capabilities
	idPolicy IDPolicy
	hooks    *hooks.Registry
	tracer   *tracer
}

// NewFactory builds a Factory over a driver. It fails with
// CapabilityMismatchError if idPolicy is incompatible with the driver's
// declared capabilities (spec.md §7).
func NewFactory(reg *schema.Registry, driver Driver, idPolicy IDPolicy, hookReg *hooks.Registry, opts ...Option) (*Factory, error) {
	caps := driver.Capabilities()
	if err := idPolicy.validate(caps.AdapterID, caps); err != nil {
		return nil, err
	}
	if hookReg == nil {
		hookReg = hooks.NewRegistry()
	}

	cfg := factoryConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &Factory{
		reg:      reg,
		driver:   driver,
		caps:     caps,
		idPolicy: idPolicy,
		hooks:    hookReg,
	}
	f.tracer = newTracer(caps.AdapterID, cfg.logger, cfg.testMode)
	f.tracer.enabled = caps.DebugLogs
	return f, nil
}

// FlushTrace returns every buffered four-phase trace entry for this
// Factory's instance, for a failed test to print (spec.md §7).
func (f *Factory) FlushTrace() []TraceEntry { return f.tracer.flush() }

func (f *Factory) resolve(model string) (string, schema.Model, error) {
	logical, err := f.reg.GetDefaultModelName(model)
	if err != nil {
		return "", schema.Model{}, err
	}
	m, _ := f.reg.Model(logical)
	return logical, m, nil
}

func (f *Factory) physicalName(logical string) string {
	name, err := f.reg.GetModelName(logical)
	if err != nil {
		return logical
	}
	return name
}

func (f *Factory) compileWhere(logical string, preds []where.Predicate) ([]where.Compiled, error) {
	return where.Compile(f.reg, logical, preds, f.idPolicy.UseNumberID())
}

// generateID returns the id to inject for a create call, honoring a
// driver that manages its own ids (spec.md §4.4).
func (f *Factory) generateID(logical string) (any, error) {
	if f.caps.DisableIDGeneration || f.idPolicy.Kind == IDPolicyNumber || f.idPolicy.Kind == IDPolicyDriverGenerated {
		return nil, nil
	}
	id, err := f.idPolicy.generate(logical)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// Create inserts one row (spec.md §4.4, §4.2).
func (f *Factory) Create(ctx context.Context, model string, data core.Record, opts ...CreateOption) (core.Record, error) {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	logical, m, err := f.resolve(model)
	if err != nil {
		return nil, err
	}

	txID := f.tracer.nextTransactionID()
	f.tracer.emit(txID, "create", logical, PhaseUnsafeInput, data)

	payload, err := f.hooks.RunBefore(ctx, logical, hooks.Create, data)
	if err != nil {
		return nil, err
	}

	presetID, err := f.generateID(logical)
	if err != nil {
		return nil, err
	}

	result, err := transform.Input(m, f.caps.Capabilities, transform.InputOptions{
		Action:       transform.ActionCreate,
		Data:         payload,
		ForceAllowID: o.forceAllowID,
		PresetID:     presetID,
	})
	if err != nil {
		return nil, err
	}
	f.tracer.emit(txID, "create", logical, PhaseParsedInput, result.Data)

	row, err := f.driver.Create(ctx, CreateRequest{Model: f.physicalName(logical), Data: result.Data})
	if err != nil {
		return nil, core.NewDriverError("create", logical, txID, err)
	}
	f.tracer.emit(txID, "create", logical, PhaseDBResult, row)

	out, err := transform.Output(m, f.caps.Capabilities, row, nil)
	if err != nil {
		return nil, err
	}
	f.tracer.emit(txID, "create", logical, PhaseParsedResult, out)

	f.hooks.RunAfter(ctx, logical, hooks.Create, out)
	return out, nil
}

// Update applies update to the first row matching preds, returning
// (nil, false, nil) if no row matched (spec.md §4.4).
func (f *Factory) Update(ctx context.Context, model string, preds []where.Predicate, update core.Record) (core.Record, bool, error) {
	logical, m, err := f.resolve(model)
	if err != nil {
		return nil, false, err
	}

	txID := f.tracer.nextTransactionID()
	f.tracer.emit(txID, "update", logical, PhaseUnsafeInput, update)

	payload, err := f.hooks.RunBefore(ctx, logical, hooks.Update, update)
	if err != nil {
		return nil, false, err
	}

	compiled, err := f.compileWhere(logical, preds)
	if err != nil {
		return nil, false, err
	}

	result, err := transform.Input(m, f.caps.Capabilities, transform.InputOptions{Action: transform.ActionUpdate, Data: payload})
	if err != nil {
		return nil, false, err
	}
	f.tracer.emit(txID, "update", logical, PhaseParsedInput, result.Data)

	row, found, err := f.driver.Update(ctx, UpdateRequest{Model: f.physicalName(logical), Where: compiled, Update: result.Data})
	if err != nil {
		return nil, false, core.NewDriverError("update", logical, txID, err)
	}
	if !found {
		return nil, false, nil
	}
	f.tracer.emit(txID, "update", logical, PhaseDBResult, row)

	out, err := transform.Output(m, f.caps.Capabilities, row, nil)
	if err != nil {
		return nil, false, err
	}
	f.tracer.emit(txID, "update", logical, PhaseParsedResult, out)

	f.hooks.RunAfter(ctx, logical, hooks.Update, out)
	return out, true, nil
}

// UpdateMany applies update to every row matching preds, returning the
// number of rows affected.
func (f *Factory) UpdateMany(ctx context.Context, model string, preds []where.Predicate, update core.Record) (int, error) {
	logical, m, err := f.resolve(model)
	if err != nil {
		return 0, err
	}

	payload, err := f.hooks.RunBefore(ctx, logical, hooks.Update, update)
	if err != nil {
		return 0, err
	}

	compiled, err := f.compileWhere(logical, preds)
	if err != nil {
		return 0, err
	}

	result, err := transform.Input(m, f.caps.Capabilities, transform.InputOptions{Action: transform.ActionUpdate, Data: payload})
	if err != nil {
		return 0, err
	}

	txID := f.tracer.nextTransactionID()
	n, err := f.driver.UpdateMany(ctx, UpdateRequest{Model: f.physicalName(logical), Where: compiled, Update: result.Data})
	if err != nil {
		return 0, core.NewDriverError("updateMany", logical, txID, err)
	}
	return n, nil
}

// FindOne returns the first row matching preds, or (nil, false, nil)
// when no row matches.
func (f *Factory) FindOne(ctx context.Context, model string, preds []where.Predicate, opts ...QueryOption) (core.Record, bool, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	logical, m, err := f.resolve(model)
	if err != nil {
		return nil, false, err
	}

	compiled, err := f.compileWhere(logical, preds)
	if err != nil {
		return nil, false, err
	}

	txID := f.tracer.nextTransactionID()
	f.tracer.emit(txID, "findOne", logical, PhaseUnsafeInput, preds)

	row, found, err := f.driver.FindOne(ctx, FindOneRequest{Model: f.physicalName(logical), Where: compiled})
	if err != nil {
		return nil, false, core.NewDriverError("findOne", logical, txID, err)
	}
	if !found {
		return nil, false, nil
	}
	f.tracer.emit(txID, "findOne", logical, PhaseDBResult, row)

	out, err := transform.Output(m, f.caps.Capabilities, row, o.selectFields)
	if err != nil {
		return nil, false, err
	}
	f.tracer.emit(txID, "findOne", logical, PhaseParsedResult, out)

	if len(o.join) > 0 {
		rows := []core.Record{out}
		if err := join.Resolve(ctx, &factoryQuerier{f}, f.reg, logical, rows, o.join); err != nil {
			return nil, false, err
		}
	}
	return out, true, nil
}

// defaultFindManyLimit caps unbounded findMany calls (spec.md §4.4).
const defaultFindManyLimit = 100

// FindMany returns every row matching preds, up to the effective limit.
func (f *Factory) FindMany(ctx context.Context, model string, preds []where.Predicate, opts ...QueryOption) ([]core.Record, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	limit := o.limit
	if limit <= 0 {
		limit = defaultFindManyLimit
	}

	logical, m, err := f.resolve(model)
	if err != nil {
		return nil, err
	}

	compiled, err := f.compileWhere(logical, preds)
	if err != nil {
		return nil, err
	}

	sortBy := make([]SortField, 0, len(o.sortBy))
	for _, s := range o.sortBy {
		physical, err := f.reg.GetFieldName(logical, s.Field)
		if err != nil {
			return nil, err
		}
		sortBy = append(sortBy, SortField{Field: physical, Desc: s.Desc})
	}

	txID := f.tracer.nextTransactionID()
	f.tracer.emit(txID, "findMany", logical, PhaseUnsafeInput, preds)

	rows, err := f.driver.FindMany(ctx, FindManyRequest{
		Model:  f.physicalName(logical),
		Where:  compiled,
		Limit:  limit,
		Offset: o.offset,
		SortBy: sortBy,
	})
	if err != nil {
		return nil, core.NewDriverError("findMany", logical, txID, err)
	}
	f.tracer.emit(txID, "findMany", logical, PhaseDBResult, rows)

	out := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := transform.Output(m, f.caps.Capabilities, row, o.selectFields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	f.tracer.emit(txID, "findMany", logical, PhaseParsedResult, out)

	if len(o.join) > 0 {
		if err := join.Resolve(ctx, &factoryQuerier{f}, f.reg, logical, out, o.join); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete removes the first row matching preds. It is a no-op if no row
// matches.
func (f *Factory) Delete(ctx context.Context, model string, preds []where.Predicate) error {
	logical, _, err := f.resolve(model)
	if err != nil {
		return err
	}
	compiled, err := f.compileWhere(logical, preds)
	if err != nil {
		return err
	}
	txID := f.tracer.nextTransactionID()
	if err := f.driver.Delete(ctx, DeleteRequest{Model: f.physicalName(logical), Where: compiled}); err != nil {
		return core.NewDriverError("delete", logical, txID, err)
	}
	f.hooks.RunAfter(ctx, logical, hooks.Delete, nil)
	return nil
}

// DeleteMany removes every row matching preds, returning the count.
func (f *Factory) DeleteMany(ctx context.Context, model string, preds []where.Predicate) (int, error) {
	logical, _, err := f.resolve(model)
	if err != nil {
		return 0, err
	}
	compiled, err := f.compileWhere(logical, preds)
	if err != nil {
		return 0, err
	}
	txID := f.tracer.nextTransactionID()
	n, err := f.driver.DeleteMany(ctx, DeleteRequest{Model: f.physicalName(logical), Where: compiled})
	if err != nil {
		return 0, core.NewDriverError("deleteMany", logical, txID, err)
	}
	if n > 0 {
		f.hooks.RunAfter(ctx, logical, hooks.Delete, nil)
	}
	return n, nil
}

// Count returns the number of rows matching preds.
func (f *Factory) Count(ctx context.Context, model string, preds []where.Predicate) (int, error) {
	logical, _, err := f.resolve(model)
	if err != nil {
		return 0, err
	}
	compiled, err := f.compileWhere(logical, preds)
	if err != nil {
		return 0, err
	}
	txID := f.tracer.nextTransactionID()
	n, err := f.driver.Count(ctx, CountRequest{Model: f.physicalName(logical), Where: compiled})
	if err != nil {
		return 0, core.NewDriverError("count", logical, txID, err)
	}
	return n, nil
}

// Transaction runs fn against a Factory bound to a transactional
// driver session. When the underlying driver does not implement
// Transactional, fn runs against f directly and sequentially, and the
// absence of isolation is logged (spec.md §4.4).
func (f *Factory) Transaction(ctx context.Context, fn func(*Factory) error) error {
	t, ok := f.driver.(Transactional)
	if !ok {
		f.tracer.logger.Warn("adapter: driver does not support transactions, running sequentially",
			"adapter", f.caps.AdapterID, "error", core.ErrTransactionUnsupported)
		return fn(f)
	}
	return t.Transaction(ctx, func(d Driver) error {
		sub := *f
		sub.driver = d
		return fn(&sub)
	})
}

// CreateSchema asks the driver to emit its own DDL, when it supports
// doing so directly (spec.md §4.4).
func (f *Factory) CreateSchema(ctx context.Context) error {
	sc, ok := f.driver.(SchemaCreator)
	if !ok {
		return fmt.Errorf("adapter: driver %q does not implement CreateSchema", f.caps.AdapterID)
	}
	return sc.CreateSchema(ctx)
}

// factoryQuerier adapts Factory's option-based FindMany to the narrow,
// option-free shape package join depends on, so join never imports
// this package's option types.
type factoryQuerier struct{ f *Factory }

func (q *factoryQuerier) FindMany(ctx context.Context, model string, preds []where.Predicate, limit int, selectFields []string) ([]core.Record, error) {
	opts := make([]QueryOption, 0, 2)
	if limit > 0 {
		opts = append(opts, WithLimit(limit))
	}
	if len(selectFields) > 0 {
		opts = append(opts, WithSelect(selectFields...))
	}
	return q.f.FindMany(ctx, model, preds, opts...)
}
