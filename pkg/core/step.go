package core

import (
	"context"

	"github.com/godzilla-s/kubeadm-installer/pkg/config"
	"github.com/godzilla-s/kubeadm-installer/pkg/node"
)

type dropletStep struct {
	*Installer
}

func (d *dropletStep) install(ctx context.Context) error {
	d.msg.Step("create droplets")
	if err := d.CreateDroplets(ctx); err != nil {
		return err
	}
	d.msg.Step("wait for droplets")
	return d.WaitForDroplets(ctx)
}

func (d *dropletStep) uninstall(ctx context.Context) error {
	d.msg.Step("destroy droplets")
	return d.DestroyDroplets(ctx)
}

type provisionStep struct {
	*Installer
}

func (p *provisionStep) install(ctx context.Context) error {
	p.msg.Step("provision machines")
	return p.ProvisionMachines(ctx)
}

func (p *provisionStep) uninstall(ctx context.Context) error {
	p.msg.Step("reset machines")
	nodes, err := p.connect(ctx, config.RoleAll)
	if err != nil {
		return err
	}
	defer closeNodes(nodes)
	for _, n := range nodes {
		if err := n.Cleanup(); err != nil {
			p.log.Errorf("fail to clean up node <%s>: %v", n.Name(), err)
			return err
		}
		p.msg.Message("%s has been reset", n.Name())
	}
	return nil
}

type clusterStep struct {
	*Installer
}

func (c *clusterStep) install(ctx context.Context) error {
	c.msg.Step("create cluster")
	return c.CreateCluster(ctx)
}

func (c *clusterStep) uninstall(context.Context) error {
	c.msg.Step("remove join file")
	return node.RemoveJoinFile(c.conf.Kubernetes.JoinFile)
}

type joinStep struct {
	*Installer
}

func (j *joinStep) install(ctx context.Context) error {
	j.msg.Step("configure workers")
	return j.ConfigureWorkers(ctx)
}

// Workers leave the cluster when their packages are removed.
func (j *joinStep) uninstall(context.Context) error {
	return nil
}
