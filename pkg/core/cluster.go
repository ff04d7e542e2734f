package core

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/godzilla-s/kubeadm-installer/pkg/client/kube"
	"github.com/godzilla-s/kubeadm-installer/pkg/config"
	"github.com/godzilla-s/kubeadm-installer/pkg/node"
)

// ProvisionMachines installs docker and kubernetes on every node. Nodes are
// provisioned concurrently.
func (i *Installer) ProvisionMachines(ctx context.Context) error {
	nodes, err := i.connect(ctx, config.RoleAll)
	if err != nil {
		return err
	}
	defer closeNodes(nodes)

	var g errgroup.Group
	for _, clusterNode := range nodes {
		n := clusterNode
		g.Go(func() error {
			i.log.Printf("provision node <%s>", n.Name())
			if err := n.Prepare(); err != nil {
				i.log.Errorf("cluster node <%s> fail to prepare, error: %v", n.Name(), err)
				return fmt.Errorf("provision %s: %w", n.Name(), err)
			}
			i.msg.Message("%s has been provisioned", n.Name())
			return nil
		})
	}
	return g.Wait()
}

// CreateCluster initialises the control plane on the master and saves the
// worker join command to the join file.
func (i *Installer) CreateCluster(ctx context.Context) error {
	master, err := i.connectMaster(ctx)
	if err != nil {
		return err
	}
	defer master.Close()

	if err := master.ConfigureMaster(); err != nil {
		return err
	}
	joinCommand, err := master.JoinCommand()
	if err != nil {
		return err
	}
	if err := node.WriteJoinFile(i.conf.Kubernetes.JoinFile, joinCommand); err != nil {
		return err
	}
	i.msg.Message("join command saved to %s", i.conf.Kubernetes.JoinFile)
	return nil
}

// ConfigureWorkers runs the saved join command on every worker.
func (i *Installer) ConfigureWorkers(ctx context.Context) error {
	joinCommand, err := node.ReadJoinFile(i.conf.Kubernetes.JoinFile)
	if err != nil {
		return fmt.Errorf("read join file %s: %w", i.conf.Kubernetes.JoinFile, err)
	}
	workers, err := i.connect(ctx, config.RoleWorkers)
	if err != nil {
		return err
	}
	defer closeNodes(workers)

	for _, n := range workers {
		if err := n.Join(joinCommand); err != nil {
			return fmt.Errorf("join %s: %w", n.Name(), err)
		}
		i.msg.Message("%s has joined the cluster", n.Name())
	}
	return nil
}

// GetNodes prints kubectl get nodes as seen from the master.
func (i *Installer) GetNodes(ctx context.Context) (string, error) {
	master, err := i.connectMaster(ctx)
	if err != nil {
		return "", err
	}
	defer master.Close()

	out, err := master.GetNodes()
	if err != nil {
		return "", err
	}
	i.msg.Plain("%s", strings.TrimRight(out, "\r\n"))
	return out, nil
}

// KubeConfig downloads admin.conf from the master, points it at the master's
// public address and writes it to kubernetes.kubeconfig.
func (i *Installer) KubeConfig(ctx context.Context) ([]byte, error) {
	master, err := i.connectMaster(ctx)
	if err != nil {
		return nil, err
	}
	defer master.Close()

	data, err := master.GetKubeConfig()
	if err != nil {
		return nil, err
	}
	server := "https://" + net.JoinHostPort(master.Address(), strconv.Itoa(config.DefaultAPIServerPort))
	data, err = kube.RewriteServer(data, server)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(i.conf.Kubernetes.KubeConfig, data, 0o600); err != nil {
		return nil, err
	}
	i.msg.Message("kubeconfig written to %s", i.conf.Kubernetes.KubeConfig)
	return data, nil
}

// WaitForNodes waits until every droplet is a Ready node.
func (i *Installer) WaitForNodes(ctx context.Context) error {
	data, err := i.KubeConfig(ctx)
	if err != nil {
		return err
	}
	kubeClient, err := kube.New("", data, i.log)
	if err != nil {
		return err
	}
	return i.waitForNodes(ctx, kubeClient)
}

func (i *Installer) waitForNodes(ctx context.Context, kubeClient *kube.Client) error {
	nodes, err := kubeClient.WaitReady(ctx, i.conf.Droplet.Count, i.conf.Wait.Timeout, i.conf.Wait.Interval)
	if err != nil {
		return fmt.Errorf("wait for nodes: %w", err)
	}
	for _, n := range nodes {
		i.msg.Plain("%s\tReady\t%s", n.Name, n.Version)
	}
	return nil
}
