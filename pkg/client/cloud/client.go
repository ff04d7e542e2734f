package cloud

import (
	"context"

	"github.com/digitalocean/godo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	StatusNew     = "new"
	StatusActive  = "active"
	StatusOff     = "off"
	StatusArchive = "archive"

	pageSize = 200
)

type dropletsService interface {
	Create(context.Context, *godo.DropletCreateRequest) (*godo.Droplet, *godo.Response, error)
	ListByTag(context.Context, string, *godo.ListOptions) ([]godo.Droplet, *godo.Response, error)
	Delete(context.Context, int) (*godo.Response, error)
}

type keysService interface {
	List(context.Context, *godo.ListOptions) ([]godo.Key, *godo.Response, error)
}

type DropletSpec struct {
	Region string
	Image  string
	Size   string
}

type Client struct {
	droplets dropletsService
	keys     keysService
	spec     DropletSpec
	log      *logrus.Entry
}

func New(accessToken string, spec DropletSpec, log *logrus.Logger) (*Client, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	token := &oauth2.Token{AccessToken: accessToken}
	tokenSource := oauth2.StaticTokenSource(token)
	oauthClient := oauth2.NewClient(context.Background(), tokenSource)
	client := godo.NewClient(oauthClient)

	return &Client{
		droplets: client.Droplets,
		keys:     client.Keys,
		spec:     spec,
		log:      logrus.NewEntry(log).WithField("provider", "digitalocean"),
	}, nil
}

// ListSSHKeys returns every key registered with the account.
func (c *Client) ListSSHKeys(ctx context.Context) ([]godo.Key, error) {
	var all []godo.Key
	opt := &godo.ListOptions{PerPage: pageSize}
	for {
		keys, resp, err := c.keys.List(ctx, opt)
		if err != nil {
			return nil, errors.Wrap(err, "list ssh keys")
		}
		all = append(all, keys...)
		next, ok := nextPage(resp)
		if !ok {
			break
		}
		opt.Page = next
	}
	c.log.Debugf("found %d ssh keys", len(all))
	return all, nil
}

// CreateDroplet creates a droplet tagged with its own name so later calls can
// find it by tag.
func (c *Client) CreateDroplet(ctx context.Context, name string, keys []godo.Key) (*godo.Droplet, error) {
	req := &godo.DropletCreateRequest{
		Name:   name,
		Region: c.spec.Region,
		Size:   c.spec.Size,
		Image:  godo.DropletCreateImage{Slug: c.spec.Image},
		Tags:   []string{name},
	}
	for _, key := range keys {
		req.SSHKeys = append(req.SSHKeys, godo.DropletCreateSSHKey{ID: key.ID, Fingerprint: key.Fingerprint})
	}
	droplet, _, err := c.droplets.Create(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "create droplet %s", name)
	}
	c.log.WithField("droplet", name).Debugf("created droplet with id %d", droplet.ID)
	return droplet, nil
}

func (c *Client) DropletsByTag(ctx context.Context, tag string) ([]godo.Droplet, error) {
	var all []godo.Droplet
	opt := &godo.ListOptions{PerPage: pageSize}
	for {
		droplets, resp, err := c.droplets.ListByTag(ctx, tag, opt)
		if err != nil {
			return nil, errors.Wrapf(err, "list droplets by tag %s", tag)
		}
		all = append(all, droplets...)
		next, ok := nextPage(resp)
		if !ok {
			break
		}
		opt.Page = next
	}
	return all, nil
}

// Droplet returns the first droplet carrying tag.
func (c *Client) Droplet(ctx context.Context, tag string) (*godo.Droplet, error) {
	droplets, err := c.DropletsByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if len(droplets) == 0 {
		return nil, errors.Wrapf(ErrDropletNotFound, "tag %s", tag)
	}
	return &droplets[0], nil
}

func (c *Client) Status(ctx context.Context, tag string) (string, error) {
	droplet, err := c.Droplet(ctx, tag)
	if err != nil {
		return "", err
	}
	return droplet.Status, nil
}

func (c *Client) PublicAddress(ctx context.Context, tag string) (string, error) {
	droplet, err := c.Droplet(ctx, tag)
	if err != nil {
		return "", err
	}
	// Networks stay unset until the droplet has been assigned an address.
	if droplet.Networks == nil {
		return "", errors.Wrapf(ErrNoPublicAddress, "tag %s", tag)
	}
	ip, err := droplet.PublicIPv4()
	if err != nil {
		return "", errors.Wrapf(err, "public address of %s", tag)
	}
	if ip == "" {
		return "", errors.Wrapf(ErrNoPublicAddress, "tag %s", tag)
	}
	return ip, nil
}

// DestroyByTag deletes every droplet carrying tag and reports how many were
// deleted.
func (c *Client) DestroyByTag(ctx context.Context, tag string) (int, error) {
	droplets, err := c.DropletsByTag(ctx, tag)
	if err != nil {
		return 0, err
	}
	destroyed := 0
	for _, droplet := range droplets {
		_, err := c.droplets.Delete(ctx, droplet.ID)
		if err != nil {
			return destroyed, errors.Wrapf(err, "delete droplet %d", droplet.ID)
		}
		c.log.WithField("droplet", droplet.Name).Debugf("deleted droplet with id %d", droplet.ID)
		destroyed++
	}
	return destroyed, nil
}

func nextPage(resp *godo.Response) (int, bool) {
	if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
		return 0, false
	}
	page, err := resp.Links.CurrentPage()
	if err != nil {
		return 0, false
	}
	return page + 1, true
}
