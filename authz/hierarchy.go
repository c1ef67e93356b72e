package authz

import (
	"sync"

	"github.com/bsakweson/bakalr-cms-sub001/errors"
)

// Expander computes the transitive closure of permissions through the
// catalog's implication edges. Closures are memoized per (resource, action)
// pair; since the catalog is immutable for the life of the process, cached
// entries never need invalidation.
//
// Expander is safe for concurrent use.
type Expander struct {
	catalog *Catalog

	mu   sync.RWMutex
	memo map[Permission][]Action
}

// NewExpander returns an expander over the given catalog.
func NewExpander(catalog *Catalog) *Expander {
	return &Expander{
		catalog: catalog,
		memo:    map[Permission][]Action{},
	}
}

// Expand returns the full set of permissions granted by p: p itself plus
// every permission reachable through implication edges. Scoping is preserved:
// expanding a content-type or field scoped permission yields permissions with
// the same scoping, never broader ones.
//
// Expanding a permission whose action is not in the catalog is an error, not
// an empty result; dropping it silently would hide caller/catalog skew.
func (e *Expander) Expand(p Permission) (PermissionSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !e.catalog.KnownAction(p.Action) {
		return nil, errors.WrapPrefix(errors.Mark(ErrUnknownAction, 0), p.String(), 0)
	}

	actions := e.reachable(p.Global())

	out := make(PermissionSet, len(actions))
	for _, a := range actions {
		out.Add(Permission{
			Resource:    p.Resource,
			Action:      a,
			ContentType: p.ContentType,
			Field:       p.Field,
		})
	}
	return out, nil
}

// ExpandAll expands every permission in the input and unions the results.
// The union is monotonic: adding a grant can only grow the effective set.
func (e *Expander) ExpandAll(perms []Permission) (PermissionSet, error) {
	out := NewPermissionSet()
	for _, p := range perms {
		expanded, err := e.Expand(p)
		if err != nil {
			return nil, err
		}
		out.AddAll(expanded)
	}
	return out, nil
}

// reachable walks the implication edges from the global form of p and returns
// every reachable action, memoized. The catalog is validated acyclic at
// construction; the visited set still bounds the walk so a future catalog bug
// cannot hang a request.
func (e *Expander) reachable(global Permission) []Action {
	e.mu.RLock()
	cached, ok := e.memo[global]
	e.mu.RUnlock()
	if ok {
		return cached
	}

	visited := map[Action]bool{}
	stack := []Action{global.Action}
	var actions []Action
	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[a] {
			continue
		}
		visited[a] = true
		actions = append(actions, a)
		stack = append(stack, e.catalog.Implied(a)...)
	}

	e.mu.Lock()
	e.memo[global] = actions
	e.mu.Unlock()
	return actions
}
