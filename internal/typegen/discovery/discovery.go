// Package discovery finds every resource reachable from a set of root resources.
//
// Discovery is a depth-first walk over an arena: a resource gets a slot the first
// time it is reached and is never walked again, which is what terminates the walk on
// self-referential and mutually recursive graphs. Path traces are recorded on every
// arrival for diagnostics only.
package discovery

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/typegen/internal/typegen/helpers"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// PathTrace is how a resource was reached, root first
type PathTrace []string

// String renders the trace for messages
func (p PathTrace) String() string {
	return strings.Join(p, " -> ")
}

func (p PathTrace) extend(segment string) PathTrace {
	next := make(PathTrace, len(p)+1)
	copy(next, p)
	next[len(p)] = segment
	return next
}

// Result is the arena of one discovery pass
type Result struct {
	Roots []string

	// Paths holds every path that reached a resource, in arrival order
	Paths map[string][]PathTrace

	resources []*schema.Resource
	index     map[string]int
}

// Resources returns the discovered resources in first-visit order
func (r *Result) Resources() []*schema.Resource {
	out := make([]*schema.Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// Names returns the discovered resource names in first-visit order
func (r *Result) Names() []string {
	names := make([]string, len(r.resources))
	for i, res := range r.resources {
		names[i] = res.Name
	}
	return names
}

// Contains reports whether name was discovered
func (r *Result) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of discovered resources
func (r *Result) Len() int {
	return len(r.resources)
}

// Unexposed returns the standalone resources that are reachable but not roots
func (r *Result) Unexposed() []string {
	roots := make(map[string]bool, len(r.Roots))
	for _, name := range r.Roots {
		roots[name] = true
	}

	var out []string
	for _, res := range r.resources {
		if !res.Embedded && !roots[res.Name] {
			out = append(out, res.Name)
		}
	}
	return out
}

// Option configures a discovery pass
type Option func(*discoverer)

// WithLogger sets the logger of the pass
func WithLogger(logger *zap.Logger) Option {
	return func(d *discoverer) {
		d.logger = logger
	}
}

type discoverer struct {
	oracle schema.Oracle
	logger *zap.Logger
	result *Result
}

// Discover walks the graph from roots and returns the closure of reachable
// resources. An unknown resource name is an error.
func Discover(oracle schema.Oracle, roots []string, opts ...Option) (*Result, error) {
	d := &discoverer{
		oracle: oracle,
		logger: zap.NewNop(),
		result: &Result{
			Roots: append([]string(nil), roots...),
			Paths: make(map[string][]PathTrace),
			index: make(map[string]int),
		},
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, root := range roots {
		if err := d.visitResource(root, PathTrace{root}, ""); err != nil {
			return nil, err
		}
	}

	d.logger.Debug("discovery complete",
		zap.Int("roots", len(roots)),
		zap.Int("resources", d.result.Len()))
	return d.result, nil
}

func (d *discoverer) visitResource(name string, path PathTrace, from string) error {
	res, ok := d.oracle.Resource(name)
	if !ok {
		return &schema.UnknownResourceError{Name: name, From: from}
	}

	d.result.Paths[name] = append(d.result.Paths[name], path)
	if _, seen := d.result.index[name]; seen {
		return nil
	}
	d.result.index[name] = len(d.result.resources)
	d.result.resources = append(d.result.resources, res)

	d.logger.Debug("discovered resource",
		zap.String("resource", name),
		zap.String("path", path.String()))

	for _, f := range res.Fields {
		if err := d.visitField(res, f, path.extend(f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (d *discoverer) visitField(res *schema.Resource, f *schema.Field, path PathTrace) error {
	from := res.Name + "." + f.Name

	switch f.Origin {
	case schema.OriginRelationship:
		return d.visitResource(f.Relationship.Destination, path, from)

	case schema.OriginAggregate:
		if f.Type != nil {
			if err := d.visitType(f.Type, f.Constraints, path, from); err != nil {
				return err
			}
		}
		if !f.Aggregate.Kind.TraversesField() {
			return nil
		}
		return d.visitAggregate(res, f, path)

	case schema.OriginCalculation:
		for _, arg := range f.Arguments {
			if err := d.visitType(arg.Type, arg.Constraints, path.extend("(" + arg.Name + ")"), from); err != nil {
				return err
			}
		}
	}
	return d.visitType(f.Type, f.Constraints, path, from)
}

// visitAggregate walks the relationship chain of an aggregate and the type of the
// field it reads on the far side
func (d *discoverer) visitAggregate(res *schema.Resource, f *schema.Field, path PathTrace) error {
	agg := f.Aggregate
	current := res
	for _, hop := range agg.Path {
		rel, ok := current.Field(hop)
		if !ok || rel.Relationship == nil {
			return fmt.Errorf("aggregate %s.%s: %s has no relationship %s", res.Name, f.Name, current.Name, hop)
		}
		path = path.extend(hop)
		if err := d.visitResource(rel.Relationship.Destination, path, current.Name+"."+hop); err != nil {
			return err
		}
		current, _ = d.oracle.Resource(rel.Relationship.Destination)
	}
	if agg.Field == "" {
		return nil
	}

	target, err := helpers.ResolveAggregateType(d.oracle, res, agg.Path, agg.Field)
	if err != nil {
		return fmt.Errorf("aggregate %s.%s: %w", res.Name, f.Name, err)
	}
	return d.visitType(target.Type, target.Constraints, path.extend(agg.Field), current.Name+"."+agg.Field)
}

func (d *discoverer) visitType(t schema.Type, c schema.Constraints, path PathTrace, from string) error {
	switch v := t.(type) {
	case nil:
		return nil

	case *schema.ResourceRef:
		return d.visitResource(v.Resource, path, from)

	case *schema.Array:
		return d.visitType(v.Of, c.ItemConstraints(), path.extend("[]"), from)

	case *schema.NewType:
		return d.visitType(v.Of, c.Merge(v.Constraints), path, from)

	case *schema.Union:
		for _, m := range v.Members {
			if err := d.visitType(m.Type, m.Constraints, path.extend(m.Name), from); err != nil {
				return err
			}
		}
		return nil

	case *schema.Struct:
		if name := schema.InstanceOf(v, c); name != "" {
			if _, ok := d.oracle.Resource(name); ok {
				return d.visitResource(name, path, from)
			}
		}
		return d.visitFields(schema.RecordFields(v, c), path, from)

	case *schema.Record:
		return d.visitFields(schema.RecordFields(v, c), path, from)
	}
	return nil
}

func (d *discoverer) visitFields(fields []schema.RecordField, path PathTrace, from string) error {
	for _, rf := range fields {
		if err := d.visitType(rf.Type, rf.Constraints, path.extend(rf.Name), from); err != nil {
			return err
		}
	}
	return nil
}
