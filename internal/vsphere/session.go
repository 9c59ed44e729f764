// Package vsphere holds the vCenter side of a run: the authenticated
// session, the slice of the management API the tool consumes, the
// attribute reconciler and the row processor.
package vsphere

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/soap"

	"vmattr/internal/credentials"
)

// Session is one authenticated vCenter connection. It is created once
// per run and passed explicitly to everything that talks to the server.
type Session struct {
	Client *vim25.Client
	Finder *find.Finder

	api *govmomi.Client
}

// Connect parses the server address, authenticates with cred and binds
// a finder to the configured datacenter (or the default one when
// datacenter is empty).
func Connect(ctx context.Context, server string, cred credentials.Credential, insecure bool, datacenter string) (*Session, error) {
	u, err := soap.ParseURL(server)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse vCenter URL %s", server)
	}
	u.User = url.UserPassword(cred.Username, cred.Password)

	client, err := govmomi.NewClient(ctx, u, insecure)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to vCenter %s", server)
	}

	sess, err := NewSession(ctx, client, datacenter)
	if err != nil {
		_ = client.Logout(ctx)
		return nil, err
	}
	return sess, nil
}

// NewSession binds a finder to an already-authenticated client. Connect
// uses it, and so do tests running against the vCenter simulator.
func NewSession(ctx context.Context, client *govmomi.Client, datacenter string) (*Session, error) {
	finder := find.NewFinder(client.Client, true)

	if datacenter != "" {
		found, err := finder.Datacenter(ctx, datacenter)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to find datacenter %s", datacenter)
		}
		finder.SetDatacenter(found)
	} else {
		found, err := finder.DefaultDatacenter(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find default datacenter")
		}
		finder.SetDatacenter(found)
	}

	return &Session{Client: client.Client, Finder: finder, api: client}, nil
}

// Disconnect logs the session out.
func (s *Session) Disconnect(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return errors.Wrap(err, "failed to disconnect from vCenter")
	}
	return nil
}
