package core

import (
	"context"
	"errors"

	"github.com/digitalocean/godo"
	"github.com/sirupsen/logrus"

	"github.com/godzilla-s/kubeadm-installer/pkg/client/cloud"
	"github.com/godzilla-s/kubeadm-installer/pkg/config"
	"github.com/godzilla-s/kubeadm-installer/pkg/node"
	"github.com/godzilla-s/kubeadm-installer/pkg/utils"
)

// InvalidRoleMessage is printed when a role other than master, workers or all
// is asked for.
const InvalidRoleMessage = `The "type" should be either "master", "workers", or "all".`

var (
	ErrInvalidRole    = errors.New("invalid role")
	ErrDropletStopped = errors.New("droplet will not become active")
)

// Cloud is the droplet API the installer drives.
type Cloud interface {
	ListSSHKeys(ctx context.Context) ([]godo.Key, error)
	CreateDroplet(ctx context.Context, name string, keys []godo.Key) (*godo.Droplet, error)
	Status(ctx context.Context, tag string) (string, error)
	PublicAddress(ctx context.Context, tag string) (string, error)
	DestroyByTag(ctx context.Context, tag string) (int, error)
}

// Dialer opens an ssh session to a host.
type Dialer func(ctx context.Context, h node.Host) (*node.Node, error)

type Installer struct {
	cloud Cloud
	conf  *config.Config
	dial  Dialer
	steps []step
	msg   *utils.Print
	log   *logrus.Logger
}

type step interface {
	install(ctx context.Context) error
	uninstall(ctx context.Context) error
}

func New(conf *config.Config, log *logrus.Logger) (*Installer, error) {
	cloudCli, err := cloud.New(conf.AccessToken, cloud.DropletSpec{
		Region: conf.Droplet.Region,
		Image:  conf.Droplet.Image,
		Size:   conf.Droplet.Size,
	}, log)
	if err != nil {
		return nil, err
	}
	dial := func(_ context.Context, h node.Host) (*node.Node, error) {
		return node.New(h, conf, log)
	}
	return NewWith(cloudCli, dial, conf, log, utils.NewMessage()), nil
}

func NewWith(cloudCli Cloud, dial Dialer, conf *config.Config, log *logrus.Logger, msg *utils.Print) *Installer {
	installer := &Installer{
		cloud: cloudCli,
		conf:  conf,
		dial:  dial,
		msg:   msg,
		log:   log,
	}
	installer.steps = []step{
		&dropletStep{Installer: installer},
		&provisionStep{Installer: installer},
		&clusterStep{Installer: installer},
		&joinStep{Installer: installer},
	}
	return installer
}

// WaitForSSH makes every later connection retry until sshd answers, for
// droplets that were just created.
func (i *Installer) WaitForSSH() {
	conf, log := i.conf, i.log
	i.dial = func(ctx context.Context, h node.Host) (*node.Node, error) {
		return node.Wait(ctx, h, conf, log)
	}
}

// Install creates the droplets and bootstraps the cluster on them.
func (i *Installer) Install(ctx context.Context) error {
	for _, s := range i.steps {
		err := s.install(ctx)
		if err != nil {
			i.msg.Error("install failed: %v", err)
			return err
		}
	}
	_, err := i.GetNodes(ctx)
	return err
}

// ValidateRole reports ErrInvalidRole for anything but master, workers or all.
func ValidateRole(role string) error {
	switch role {
	case config.RoleMaster, config.RoleWorkers, config.RoleAll:
		return nil
	}
	return ErrInvalidRole
}

func (i *Installer) master() string {
	return i.conf.NodeNames()[0]
}

func (i *Installer) workers() []string {
	return i.conf.NodeNames()[1:]
}

func (i *Installer) namesFor(role string) ([]string, error) {
	switch role {
	case config.RoleMaster:
		return []string{i.master()}, nil
	case config.RoleWorkers:
		return i.workers(), nil
	case config.RoleAll:
		return i.conf.NodeNames(), nil
	default:
		return nil, ErrInvalidRole
	}
}

func (i *Installer) roleOf(name string) string {
	if name == i.master() {
		return config.RoleMaster
	}
	return "worker"
}

// hosts resolves the public address of every droplet in role.
func (i *Installer) hosts(ctx context.Context, role string) ([]node.Host, error) {
	names, err := i.namesFor(role)
	if err != nil {
		return nil, err
	}
	hosts := make([]node.Host, 0, len(names))
	for _, name := range names {
		address, err := i.cloud.PublicAddress(ctx, name)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, node.Host{Name: name, Address: address, Role: i.roleOf(name)})
	}
	return hosts, nil
}

// connect dials every host in role. On error the sessions already opened are
// closed.
func (i *Installer) connect(ctx context.Context, role string) ([]*node.Node, error) {
	hosts, err := i.hosts(ctx, role)
	if err != nil {
		return nil, err
	}
	nodes := make([]*node.Node, 0, len(hosts))
	for _, h := range hosts {
		n, err := i.dial(ctx, h)
		if err != nil {
			i.log.Errorf("fail to connect node <%s>, address: %s, error: %v", h.Name, h.Address, err)
			closeNodes(nodes)
			return nil, err
		}
		i.log.Debugf("cluster node <%s> connected", h.Name)
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (i *Installer) connectMaster(ctx context.Context) (*node.Node, error) {
	nodes, err := i.connect(ctx, config.RoleMaster)
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

func closeNodes(nodes []*node.Node) {
	for _, n := range nodes {
		n.Close()
	}
}
