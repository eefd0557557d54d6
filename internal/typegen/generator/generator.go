// Package generator runs one generation pass: discover the closure of the root
// resources, build every schema, verify the result and render TypeScript.
package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/typegen/internal/typegen/discovery"
	"github.com/conduit-lang/typegen/internal/typegen/mapper"
	"github.com/conduit-lang/typegen/internal/typegen/naming"
	"github.com/conduit-lang/typegen/internal/typegen/resource"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
	"github.com/conduit-lang/typegen/internal/typegen/tsast"
	"github.com/conduit-lang/typegen/internal/typegen/verify"
)

// Config configures a Generator
type Config struct {
	Roots              []string
	Overrides          map[string]string
	UntypedPlaceholder string
	Namer              *naming.FieldNamer
}

// Warning is a non-fatal finding of a pass
type Warning struct {
	Resource string
	Message  string
	Paths    []discovery.PathTrace
}

func (w Warning) String() string {
	if len(w.Paths) == 0 {
		return w.Message
	}
	return fmt.Sprintf("%s (via %s)", w.Message, w.Paths[0])
}

// Result is the output of one pass
type Result struct {
	PassID    string
	Discovery *discovery.Result
	Embedded  *discovery.Embedded
	Resources []*resource.Schemas
	Warnings  []Warning
	Duration  time.Duration
}

// Schemas returns every generated schema in emission order: resources in discovery
// order, and per resource the full, attributes-only and input schemas
func (r *Result) Schemas() []*resource.Schema {
	var out []*resource.Schema
	for _, s := range r.Resources {
		out = append(out, s.All()...)
	}
	return out
}

// Generator runs generation passes over one oracle. Passes share no state and may
// run concurrently.
type Generator struct {
	oracle schema.Oracle
	cfg    Config
	logger *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a Generator
func New(oracle schema.Oracle, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		oracle: oracle,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Discover runs only the discovery step of a pass
func (g *Generator) Discover() (*discovery.Result, error) {
	return g.discover(g.logger)
}

func (g *Generator) discover(logger *zap.Logger) (*discovery.Result, error) {
	if len(g.cfg.Roots) == 0 {
		return nil, fmt.Errorf("no root resources configured")
	}
	result, err := discovery.Discover(g.oracle, g.cfg.Roots, discovery.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	return result, nil
}

// Run executes one pass
func (g *Generator) Run() (*Result, error) {
	start := time.Now()
	passID := uuid.NewString()
	logger := g.logger.With(zap.String("pass", passID))
	logger.Debug("generation started", zap.Strings("roots", g.cfg.Roots))

	found, err := g.discover(logger)
	if err != nil {
		return nil, err
	}

	embedded, err := discovery.ScanEmbedded(g.oracle, found.Names())
	if err != nil {
		return nil, fmt.Errorf("embedded scan failed: %w", err)
	}

	res := &Result{
		PassID:    passID,
		Discovery: found,
		Embedded:  embedded,
	}
	for _, name := range found.Unexposed() {
		w := Warning{
			Resource: name,
			Message:  fmt.Sprintf("resource %s is reachable but not exposed", name),
			Paths:    found.Paths[name],
		}
		res.Warnings = append(res.Warnings, w)
		logger.Warn(w.Message, zap.String("path", w.Paths[0].String()))
	}

	needsInput := make(map[string]bool)
	for _, name := range discovery.InputResources(g.oracle, found) {
		needsInput[name] = true
	}

	m := mapper.New(mapper.Config{
		Oracle:             g.oracle,
		Namer:              g.cfg.Namer,
		Overrides:          g.cfg.Overrides,
		UntypedPlaceholder: g.cfg.UntypedPlaceholder,
	})
	builder := resource.NewBuilder(g.oracle, m, g.cfg.Namer)

	for _, r := range found.Resources() {
		schemas, err := builder.Build(r, needsInput[r.Name])
		if err != nil {
			return nil, fmt.Errorf("failed to build schemas: %w", err)
		}
		res.Resources = append(res.Resources, schemas)
	}

	if err := verify.Verify(res.Resources); err != nil {
		return nil, fmt.Errorf("schema verification failed: %w", err)
	}

	res.Duration = time.Since(start)
	logger.Info("generation complete",
		zap.Int("resources", found.Len()),
		zap.Int("schemas", len(res.Schemas())),
		zap.Int("embedded", len(embedded.Resources)),
		zap.Int("typed_structs", len(embedded.TypedStructs)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// Declarations returns the alias preamble followed by every schema declaration
func (r *Result) Declarations() []*tsast.Declaration {
	var decls []*tsast.Declaration
	for _, a := range mapper.Aliases {
		decls = append(decls, &tsast.Declaration{Name: a.Name, Type: tsast.String, Description: a.Description})
	}
	for _, s := range r.Schemas() {
		decls = append(decls, s.Declaration())
	}
	return decls
}
