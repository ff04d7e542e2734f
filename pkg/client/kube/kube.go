package kube

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/godzilla-s/kubeadm-installer/pkg/utils"
)

const rolePrefix = "node-role.kubernetes.io/"

type Client struct {
	clientSet kubernetes.Interface
	log       *logrus.Logger
}

type NodeStatus struct {
	Name    string
	Ready   bool
	Roles   []string
	Version string
}

// New builds a client from kubeconfig data. A non-empty masterURL overrides
// the server in the kubeconfig.
func New(masterURL string, kubeConfigData []byte, log *logrus.Logger) (*Client, error) {
	apiConfig, err := clientcmd.Load(kubeConfigData)
	if err != nil {
		return nil, err
	}

	config, err := clientcmd.BuildConfigFromKubeconfigGetter(masterURL, func() (*clientcmdapi.Config, error) {
		return apiConfig, nil
	})
	if err != nil {
		return nil, err
	}

	clientSet, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, err
	}
	return &Client{clientSet: clientSet, log: log}, nil
}

func NewForClientSet(clientSet kubernetes.Interface, log *logrus.Logger) *Client {
	return &Client{clientSet: clientSet, log: log}
}

func (c *Client) Nodes(ctx context.Context) ([]NodeStatus, error) {
	nodes, err := c.clientSet.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	statuses := make([]NodeStatus, 0, len(nodes.Items))
	for _, n := range nodes.Items {
		statuses = append(statuses, toNodeStatus(&n))
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses, nil
}

// WaitReady polls until at least want nodes are registered and all of them
// are Ready.
func (c *Client) WaitReady(ctx context.Context, want int, timeout, interval time.Duration) ([]NodeStatus, error) {
	var nodes []NodeStatus
	err := utils.Clock(ctx, timeout, interval, func() error {
		var err error
		nodes, err = c.Nodes(ctx)
		if err != nil {
			c.log.Debugf("list nodes: %v", err)
			return err
		}
		ready := 0
		for _, n := range nodes {
			if n.Ready {
				ready++
			}
		}
		c.log.Printf("%d/%d nodes ready", ready, want)
		if len(nodes) < want || ready < len(nodes) {
			return ErrNodesNotReady
		}
		return nil
	})
	return nodes, err
}

func toNodeStatus(n *corev1.Node) NodeStatus {
	status := NodeStatus{
		Name:    n.Name,
		Version: n.Status.NodeInfo.KubeletVersion,
	}
	for _, cond := range n.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			status.Ready = cond.Status == corev1.ConditionTrue
		}
	}
	for label := range n.Labels {
		if strings.HasPrefix(label, rolePrefix) {
			status.Roles = append(status.Roles, strings.TrimPrefix(label, rolePrefix))
		}
	}
	sort.Strings(status.Roles)
	return status
}

// RewriteServer points every cluster in the kubeconfig at server.
func RewriteServer(kubeConfigData []byte, server string) ([]byte, error) {
	apiConfig, err := clientcmd.Load(kubeConfigData)
	if err != nil {
		return nil, err
	}
	if len(apiConfig.Clusters) == 0 {
		return nil, ErrNoCluster
	}
	for _, cluster := range apiConfig.Clusters {
		cluster.Server = server
	}
	return clientcmd.Write(*apiConfig)
}
