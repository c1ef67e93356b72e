package authz

import (
	"context"
	"sort"
	"strings"

	bakalr "github.com/bsakweson/bakalr-cms-sub001"
	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"github.com/bsakweson/bakalr-cms-sub001/logging"
	"google.golang.org/grpc/codes"
)

var (
	// ErrUnknownAction is returned when a permission references an action that
	// is not defined in the catalog. Silently dropping such permissions would
	// mask caller/catalog mismatches, so this is always raised.
	ErrUnknownAction = errors.NewC("authz: action not defined in catalog", codes.FailedPrecondition)

	// ErrCyclicImplication is returned when the implication edge set contains
	// a cycle. The graph is configuration data; a cycle is a config error.
	ErrCyclicImplication = errors.NewC("authz: implication graph contains a cycle", codes.FailedPrecondition)
)

// Edge is a directed implication between two actions: granting From on a
// resource also grants To on the same resource. Edges are resource-agnostic
// templates applied uniformly to every resource in the catalog.
type Edge struct {
	From Action
	To   Action
}

// Catalog holds the immutable permission definitions: the known resources and
// actions, the implication edge templates, and the named role-level registry.
// A Catalog is validated at construction and never mutated afterwards; if the
// configuration must change, build a new Catalog and swap it as a unit.
type Catalog struct {
	resources map[Resource]struct{}
	actions   map[Action]struct{}
	implies   map[Action][]Action
	levels    map[string]Level
}

// CatalogOption configures a Catalog under construction.
type CatalogOption func(*Catalog)

// WithResources registers resources with the catalog.
func WithResources(resources ...Resource) CatalogOption {
	return func(c *Catalog) {
		for _, r := range resources {
			c.resources[r] = struct{}{}
		}
	}
}

// WithActions registers actions with the catalog.
func WithActions(actions ...Action) CatalogOption {
	return func(c *Catalog) {
		for _, a := range actions {
			c.actions[a] = struct{}{}
		}
	}
}

// WithEdge registers an implication edge template: granting `from` also
// grants `to` on the same resource.
func WithEdge(from, to Action) CatalogOption {
	return func(c *Catalog) {
		c.implies[from] = append(c.implies[from], to)
	}
}

// WithLevel registers a named role level.
func WithLevel(name string, level Level) CatalogOption {
	return func(c *Catalog) {
		c.levels[name] = level
	}
}

// NewCatalog builds and validates a catalog. Validation is eager: cyclic
// edges, edges referencing unregistered actions, and out-of-range levels all
// fail construction rather than surfacing during request evaluation.
func NewCatalog(opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		resources: map[Resource]struct{}{},
		actions:   map[Action]struct{}{},
		implies:   map[Action][]Action{},
		levels:    map[string]Level{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate walks the implication graph and ensures edges reference registered
// actions and that there are no cycles, then checks the level registry.
func (c *Catalog) validate() error {
	for from, tos := range c.implies {
		if _, ok := c.actions[from]; !ok {
			return errors.Codef(codes.FailedPrecondition, "authz: implication edge from unregistered action %q", from)
		}
		for _, to := range tos {
			if _, ok := c.actions[to]; !ok {
				return errors.Codef(codes.FailedPrecondition, "authz: implication edge from %q to unregistered action %q", from, to)
			}
		}
	}

	visiting := make(map[Action]bool)
	done := make(map[Action]bool)
	for a := range c.actions {
		if err := c.checkAcyclic(a, visiting, done); err != nil {
			return err
		}
	}

	for name, level := range c.levels {
		if level < 0 || level > LevelSuperAdmin {
			return errors.Codef(codes.FailedPrecondition, "authz: level %d for %q outside 0..%d", level, name, LevelSuperAdmin)
		}
	}
	return nil
}

// checkAcyclic performs a depth-first walk over the edge templates, failing
// if an action is re-entered while still on the current path.
func (c *Catalog) checkAcyclic(a Action, visiting, done map[Action]bool) error {
	if done[a] {
		return nil
	}
	if visiting[a] {
		return errors.WrapPrefix(errors.Mark(ErrCyclicImplication, 0), string(a), 0)
	}
	visiting[a] = true
	for _, to := range c.implies[a] {
		if err := c.checkAcyclic(to, visiting, done); err != nil {
			return err
		}
	}
	delete(visiting, a)
	done[a] = true
	return nil
}

// KnownAction reports whether the action is defined in the catalog.
func (c *Catalog) KnownAction(a Action) bool {
	_, ok := c.actions[a]
	return ok
}

// KnownResource reports whether the resource is defined in the catalog.
func (c *Catalog) KnownResource(r Resource) bool {
	_, ok := c.resources[r]
	return ok
}

// Implied returns the direct (non-transitive) implications of an action.
func (c *Catalog) Implied(a Action) []Action {
	return c.implies[a]
}

// Actions returns all registered actions, sorted.
func (c *Catalog) Actions() []Action {
	out := make([]Action, 0, len(c.actions))
	for a := range c.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resources returns all registered resources, sorted.
func (c *Catalog) Resources() []Resource {
	out := make([]Resource, 0, len(c.resources))
	for r := range c.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LevelByName returns the level registered for a role name.
func (c *Catalog) LevelByName(name string) (Level, bool) {
	l, ok := c.levels[name]
	return l, ok
}

// Levels returns the named level registry as a copy.
func (c *Catalog) Levels() map[string]Level {
	out := make(map[string]Level, len(c.levels))
	for name, l := range c.levels {
		out[name] = l
	}
	return out
}

func init() {
	bakalr.RegisterKeys(
		bakalr.KeyInfo{
			Key:         "catalog.resources",
			Description: "Resources the permission catalog is defined over",
			Type:        "[]string",
		},
		bakalr.KeyInfo{
			Key:         "catalog.actions",
			Description: "Actions the permission catalog is defined over",
			Type:        "[]string",
		},
		bakalr.KeyInfo{
			Key:         "catalog.edges",
			Description: "Implication edges in \"from->to\" form, e.g. \"delete->update\"",
			Type:        "[]string",
		},
		bakalr.KeyInfo{
			Key:         "catalog.levels",
			Description: "Named role levels, e.g. {editor: \"60\"}",
			Type:        "map[string]string",
		},
	)
}

// CatalogFromConfig builds a catalog from the global configuration. When no
// catalog keys are set, the default CMS catalog is returned; setting any of
// them replaces the default catalog wholesale, so a config that names edges
// must also name the actions they connect. Unknown config keys are logged
// with "did you mean" suggestions before the catalog is built.
func CatalogFromConfig(ctx context.Context) (*Catalog, error) {
	bakalr.EnsureConfigDefaults()
	for _, w := range bakalr.ValidateConfigKeys() {
		logging.Warn(ctx, w.String())
	}

	if !bakalr.ConfigExists("catalog.resources") && !bakalr.ConfigExists("catalog.actions") &&
		!bakalr.ConfigExists("catalog.edges") && !bakalr.ConfigExists("catalog.levels") {
		return DefaultCatalog(), nil
	}

	var opts []CatalogOption
	for _, r := range bakalr.ConfigStrings("catalog.resources") {
		opts = append(opts, WithResources(Resource(r)))
	}
	for _, a := range bakalr.ConfigStrings("catalog.actions") {
		opts = append(opts, WithActions(Action(a)))
	}
	for _, e := range bakalr.ConfigStrings("catalog.edges") {
		from, to, ok := strings.Cut(e, "->")
		if !ok {
			return nil, errors.Codef(codes.FailedPrecondition, "authz: malformed edge %q, want \"from->to\"", e)
		}
		opts = append(opts, WithEdge(Action(strings.TrimSpace(from)), Action(strings.TrimSpace(to))))
	}
	for name, raw := range bakalr.ConfigStringMap("catalog.levels") {
		level, err := ParseLevel(raw)
		if err != nil {
			return nil, errors.WrapPrefix(err, "catalog.levels."+name, 0)
		}
		opts = append(opts, WithLevel(name, level))
	}
	return NewCatalog(opts...)
}
