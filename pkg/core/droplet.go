package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/godzilla-s/kubeadm-installer/pkg/client/cloud"
	"github.com/godzilla-s/kubeadm-installer/pkg/utils"
)

// Ping is a sanity check that touches nothing remote.
func Ping(msg *utils.Print, output string) {
	msg.Plain("pong!")
	msg.Plain("hello %s!", output)
}

// CreateDroplets creates node-1..node-N with every ssh key of the account.
func (i *Installer) CreateDroplets(ctx context.Context) error {
	keys, err := i.cloud.ListSSHKeys(ctx)
	if err != nil {
		return err
	}
	for _, name := range i.conf.NodeNames() {
		_, err := i.cloud.CreateDroplet(ctx, name, keys)
		if err != nil {
			i.log.Errorf("fail to create droplet <%s>, error: %v", name, err)
			return err
		}
		i.msg.Plain("%s has been created.", name)
	}
	return nil
}

// WaitForDroplets polls each droplet in turn until it reports active. A
// droplet the API does not list yet counts as not ready.
func (i *Installer) WaitForDroplets(ctx context.Context) error {
	for _, name := range i.conf.NodeNames() {
		var fatal error
		err := utils.Clock(ctx, i.conf.Wait.Timeout, i.conf.Wait.Interval, func() error {
			status, err := i.cloud.Status(ctx, name)
			switch {
			case errors.Is(err, cloud.ErrDropletNotFound):
			case err != nil:
				fatal = err
				return nil
			case status == cloud.StatusActive:
				i.msg.Plain("%s is ready.", name)
				return nil
			case status == cloud.StatusOff, status == cloud.StatusArchive:
				i.msg.Warn("%s is %s.", name, status)
				fatal = fmt.Errorf("droplet %s is %s: %w", name, status, ErrDropletStopped)
				return nil
			}
			i.msg.Plain("%s is not ready.", name)
			return errNotReady
		})
		if fatal != nil {
			return fatal
		}
		if err != nil {
			return fmt.Errorf("wait for droplet %s: %w", name, err)
		}
	}
	return nil
}

var errNotReady = errors.New("not ready")

// DestroyDroplets deletes every droplet tagged with a node name.
func (i *Installer) DestroyDroplets(ctx context.Context) error {
	for _, name := range i.conf.NodeNames() {
		n, err := i.cloud.DestroyByTag(ctx, name)
		if err != nil {
			i.log.Errorf("fail to destroy droplet <%s>, error: %v", name, err)
			return err
		}
		i.log.Debugf("destroyed %d droplets tagged %s", n, name)
		i.msg.Plain("%s has been destroyed.", name)
	}
	return nil
}

// Addresses prints the public address of each droplet in role.
func (i *Installer) Addresses(ctx context.Context, role string) ([]string, error) {
	hosts, err := i.hosts(ctx, role)
	if err != nil {
		if errors.Is(err, ErrInvalidRole) {
			i.msg.Plain("%s", InvalidRoleMessage)
		}
		return nil, err
	}
	addresses := make([]string, 0, len(hosts))
	for _, h := range hosts {
		i.msg.Plain("%s", h.Address)
		addresses = append(addresses, h.Address)
	}
	i.msg.Plain("Host addresses - %v", addresses)
	return addresses, nil
}
