package vsphere

import (
	"context"

	"vmattr/internal/audit"
)

// Definitions is the directory of custom attribute names to their
// server-side keys, built by the reconciler and consumed by the row
// processor. In report mode attributes that would be created have no
// key; their current value reads as empty.
type Definitions struct {
	keys map[string]int32
}

// Key returns the server-side key for a defined attribute.
func (d *Definitions) Key(name string) (int32, bool) {
	key, ok := d.keys[name]
	return key, ok
}

// Reconciler ensures every attribute column of the input exists as a
// custom attribute definition on the server.
type Reconciler struct {
	api    API
	log    *audit.Logger
	report bool
}

// NewReconciler returns a reconciler. With report set, no definition is
// created; intended creations are logged instead.
func NewReconciler(api API, log *audit.Logger, report bool) *Reconciler {
	return &Reconciler{api: api, log: log, report: report}
}

// Ensure walks names in input-header order and creates every definition
// missing on the server (scoped to virtual machines). A single failed
// creation is logged and skipped; only the initial listing is fatal.
func (r *Reconciler) Ensure(ctx context.Context, names []string) (*Definitions, error) {
	existing, err := r.api.Definitions(ctx)
	if err != nil {
		return nil, err
	}

	defs := &Definitions{keys: map[string]int32{}}
	for _, def := range existing {
		defs.keys[def.Name] = def.Key
	}

	for _, name := range names {
		if _, ok := defs.keys[name]; ok {
			r.log.Log("Custom attribute '%s' already exists, no action needed.", name)
			continue
		}

		if r.report {
			r.log.Log("Report: Custom attribute '%s' would be created.", name)
			continue
		}

		created, err := r.api.AddDefinition(ctx, name)
		if err != nil {
			r.log.Error("Failed to create custom attribute '%s': %v", name, err)
			continue
		}
		defs.keys[created.Name] = created.Key
		r.log.Log("Created custom attribute '%s'.", name)
	}

	return defs, nil
}
