package adapter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	core "github.com/better-auth/adaptercore"
	"gopkg.in/yaml.v3"
)

// Option configures a Factory at construction.
type Option func(*factoryConfig)

type factoryConfig struct {
	logger   *slog.Logger
	testMode bool
}

// WithLogger supplies the *slog.Logger the factory streams its debug
// trace through (spec.md §7). Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *factoryConfig) { c.logger = l }
}

// WithTestMode switches the four-phase debug trace from streaming (via
// the logger) to buffer-only, for a caller to flush with FlushTrace on
// test failure (spec.md §7).
func WithTestMode() Option {
	return func(c *factoryConfig) { c.testMode = true }
}

// CreateOption configures a single Create call.
type CreateOption func(*createOptions)

type createOptions struct {
	forceAllowID bool
}

// WithForceAllowID permits the caller to supply its own id on create,
// bypassing the default drop-and-regenerate behavior (spec.md §4.2).
func WithForceAllowID() CreateOption {
	return func(o *createOptions) { o.forceAllowID = true }
}

// QueryOption configures FindOne/FindMany (spec.md §4.4/§4.5).
type QueryOption func(*queryOptions)

type queryOptions struct {
	selectFields []string
	join         map[string]core.JoinSpec
	limit        int
	offset       int
	sortBy       []core.SortField
}

// WithSelect restricts the returned logical fields to those listed; id
// is returned only when it is one of them.
func WithSelect(fields ...string) QueryOption {
	return func(o *queryOptions) { o.selectFields = fields }
}

// WithJoin requests a related model be attached under joinKey to every
// result row (spec.md §4.5). Calling it more than once accumulates
// joins rather than replacing the previous one.
func WithJoin(joinKey string, spec core.JoinSpec) QueryOption {
	return func(o *queryOptions) {
		if o.join == nil {
			o.join = make(map[string]core.JoinSpec)
		}
		o.join[joinKey] = spec
	}
}

// WithLimit caps a FindMany call (default 100, spec.md §4.4). Ignored
// by FindOne.
func WithLimit(n int) QueryOption {
	return func(o *queryOptions) { o.limit = n }
}

// WithOffset paginates a FindMany call. Ignored by FindOne.
func WithOffset(n int) QueryOption {
	return func(o *queryOptions) { o.offset = n }
}

// WithSort appends a sort key to a FindMany call, in the order given.
// Ignored by FindOne.
func WithSort(field string, desc bool) QueryOption {
	return func(o *queryOptions) {
		o.sortBy = append(o.sortBy, core.SortField{Field: field, Desc: desc})
	}
}

// yamlConfig is the on-disk shape LoadOptionsYAML parses, for
// environments that keep id-policy/test-mode defaults in a file
// instead of code.
type yamlConfig struct {
	IDPolicy struct {
		Kind string `yaml:"kind"`
		Len  int    `yaml:"len"`
	} `yaml:"idPolicy"`
	TestMode bool `yaml:"testMode"`
}

// LoadOptionsYAML decodes an IDPolicy and a slice of factory Options
// from r. idPolicy.kind accepts "default", "number", "driverGenerated",
// or "uuid"; IDPolicyFunc has no YAML representation since it takes a
// Go closure, so callers needing it construct IDPolicy directly instead.
// An empty document decodes to the zero yamlConfig rather than an error.
func LoadOptionsYAML(r io.Reader) (IDPolicy, []Option, error) {
	var cfg yamlConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return IDPolicy{}, nil, fmt.Errorf("adapter: decoding options yaml: %w", err)
	}

	policy := IDPolicy{Len: cfg.IDPolicy.Len}
	switch cfg.IDPolicy.Kind {
	case "", "default":
		policy.Kind = IDPolicyDefault
	case "number":
		policy.Kind = IDPolicyNumber
	case "driverGenerated":
		policy.Kind = IDPolicyDriverGenerated
	case "uuid":
		policy.Kind = IDPolicyUUID
	default:
		return IDPolicy{}, nil, fmt.Errorf("adapter: unknown idPolicy.kind %q", cfg.IDPolicy.Kind)
	}

	var opts []Option
	if cfg.TestMode {
		opts = append(opts, WithTestMode())
	}
	return policy, opts, nil
}
