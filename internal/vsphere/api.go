package vsphere

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// ErrVMNotFound marks a by-name lookup that resolved nothing. It is an
// expected outcome, not a failure.
var ErrVMNotFound = errors.New("virtual machine not found")

// VM is an opaque handle to a resolved virtual machine.
type VM interface {
	Name() string
	Reference() types.ManagedObjectReference
}

// API is the slice of the management API a run consumes. The reconciler
// and row processor depend on this interface, not on govmomi, so tests
// can count calls with a fake.
type API interface {
	// Definitions lists every custom attribute registered on the server.
	Definitions(ctx context.Context) ([]types.CustomFieldDef, error)
	// AddDefinition registers a custom attribute scoped to virtual machines.
	AddDefinition(ctx context.Context, name string) (*types.CustomFieldDef, error)
	// FindVM resolves a VM by name, returning ErrVMNotFound when absent.
	FindVM(ctx context.Context, name string) (VM, error)
	// AnnotationValues returns the VM's current attribute values keyed by
	// definition key.
	AnnotationValues(ctx context.Context, vm VM) (map[int32]string, error)
	// SetAnnotation sets one attribute value on one VM.
	SetAnnotation(ctx context.Context, vm VM, key int32, value string) error
}

type vimAPI struct {
	finder *find.Finder
	fields *object.CustomFieldsManager
	pc     *property.Collector
}

// NewAPI builds the govmomi-backed API for a session.
func NewAPI(s *Session) API {
	return &vimAPI{
		finder: s.Finder,
		fields: object.NewCustomFieldsManager(s.Client),
		pc:     property.DefaultCollector(s.Client),
	}
}

func (a *vimAPI) Definitions(ctx context.Context) ([]types.CustomFieldDef, error) {
	defs, err := a.fields.Field(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list custom attribute definitions")
	}
	return defs, nil
}

func (a *vimAPI) AddDefinition(ctx context.Context, name string) (*types.CustomFieldDef, error) {
	def, err := a.fields.Add(ctx, name, "VirtualMachine", nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create custom attribute '%s'", name)
	}
	return def, nil
}

func (a *vimAPI) FindVM(ctx context.Context, name string) (VM, error) {
	vm, err := a.finder.VirtualMachine(ctx, name)
	if err != nil {
		if _, ok := err.(*find.NotFoundError); ok {
			return nil, ErrVMNotFound
		}
		return nil, errors.Wrapf(err, "failed to look up VM '%s'", name)
	}
	return vm, nil
}

func (a *vimAPI) AnnotationValues(ctx context.Context, vm VM) (map[int32]string, error) {
	var entity mo.VirtualMachine
	err := a.pc.RetrieveOne(ctx, vm.Reference(), []string{"customValue"}, &entity)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read custom attribute values of VM '%s'", vm.Name())
	}

	values := map[int32]string{}
	for _, v := range entity.CustomValue {
		if s, ok := v.(*types.CustomFieldStringValue); ok {
			values[s.Key] = s.Value
		}
	}
	return values, nil
}

func (a *vimAPI) SetAnnotation(ctx context.Context, vm VM, key int32, value string) error {
	if err := a.fields.Set(ctx, vm.Reference(), key, value); err != nil {
		return errors.Wrapf(err, "failed to set custom attribute on VM '%s'", vm.Name())
	}
	return nil
}
