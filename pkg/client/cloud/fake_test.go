package cloud

import (
	"context"
	"math/rand"

	"github.com/digitalocean/godo"
	"github.com/pkg/errors"
)

type fakeKeysService struct {
	expectedErr string
	listfunc    func(context.Context, *godo.ListOptions) ([]godo.Key, *godo.Response, error)
}

func (s *fakeKeysService) List(ctx context.Context, opts *godo.ListOptions) ([]godo.Key, *godo.Response, error) {
	if s.expectedErr != "" {
		return nil, nil, errors.New(s.expectedErr)
	}
	if s.listfunc != nil {
		return s.listfunc(ctx, opts)
	}
	return []godo.Key{}, godoResponse(), nil
}

type fakeDropletsServices struct {
	createfunc  func(context.Context, *godo.DropletCreateRequest) (*godo.Droplet, *godo.Response, error)
	listfunc    func(context.Context, string, *godo.ListOptions) ([]godo.Droplet, *godo.Response, error)
	deleted     []int
	expectedErr string
}

func (s *fakeDropletsServices) ListByTag(ctx context.Context, tag string, opts *godo.ListOptions) ([]godo.Droplet, *godo.Response, error) {
	if s.expectedErr != "" {
		return nil, nil, errors.New(s.expectedErr)
	}
	if s.listfunc != nil {
		return s.listfunc(ctx, tag, opts)
	}
	return []godo.Droplet{}, godoResponse(), nil
}

func (s *fakeDropletsServices) Create(ctx context.Context, req *godo.DropletCreateRequest) (*godo.Droplet, *godo.Response, error) {
	if s.expectedErr != "" {
		return nil, nil, errors.New(s.expectedErr)
	}
	if s.createfunc != nil {
		return s.createfunc(ctx, req)
	}
	droplet := godoDroplet(name(req.Name), tags(req.Tags...))
	return &droplet, godoResponse(), nil
}

func (s *fakeDropletsServices) Delete(_ context.Context, id int) (*godo.Response, error) {
	if s.expectedErr != "" {
		return nil, errors.New(s.expectedErr)
	}
	s.deleted = append(s.deleted, id)
	return godoResponse(), nil
}

func godoResponse(ops ...func(*godo.Response)) *godo.Response {
	resp := &godo.Response{
		Links: &godo.Links{},
	}

	for _, op := range ops {
		op(resp)
	}

	return resp
}

func hasNextPage(resp *godo.Response) {
	resp.Links.Pages = &godo.Pages{
		Next: "https://api.digitalocean.com/v2/droplets?page=2",
		Last: "https://api.digitalocean.com/v2/droplets?page=2",
	}
}

func godoDroplet(ops ...func(*godo.Droplet)) godo.Droplet {
	droplet := &godo.Droplet{
		ID: rand.Int(),
	}

	for _, op := range ops {
		op(droplet)
	}

	return *droplet
}

func name(name string) func(*godo.Droplet) {
	return func(droplet *godo.Droplet) {
		droplet.Name = name
	}
}

func tags(tags ...string) func(*godo.Droplet) {
	return func(droplet *godo.Droplet) {
		droplet.Tags = tags
	}
}

func status(status string) func(*godo.Droplet) {
	return func(droplet *godo.Droplet) {
		droplet.Status = status
	}
}

func publicIP(ip string) func(*godo.Droplet) {
	return func(droplet *godo.Droplet) {
		droplet.Networks = &godo.Networks{
			V4: []godo.NetworkV4{
				{IPAddress: "10.10.0.5", Type: "private"},
				{IPAddress: ip, Type: "public"},
			},
		}
	}
}

func privateIP(ip string) func(*godo.Droplet) {
	return func(droplet *godo.Droplet) {
		droplet.Networks = &godo.Networks{
			V4: []godo.NetworkV4{
				{IPAddress: ip, Type: "private"},
			},
		}
	}
}

func godoKey(id int, name string, ops ...func(*godo.Key)) godo.Key {
	key := &godo.Key{
		ID:   id,
		Name: name,
	}

	for _, op := range ops {
		op(key)
	}

	return *key
}
