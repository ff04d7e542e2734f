package config

import (
	"fmt"
	"time"
)

const EnvAccessToken = "DIGITAL_OCEAN_ACCESS_TOKEN"

// PodNetworkNone as podNetworkCIDR runs kubeadm init without --pod-network-cidr.
const PodNetworkNone = "none"

const (
	RoleMaster  = "master"
	RoleWorkers = "workers"
	RoleAll     = "all"
)

const (
	DefaultNodeCount  = 3
	DefaultNamePrefix = "node-"
	DefaultRegion     = "nyc3"
	DefaultImage      = "ubuntu-20-04-x64"
	DefaultSize       = "4gb"

	DefaultSSHUser    = "root"
	DefaultSSHPort    = 22
	DefaultPrivateKey = "~/.ssh/id_rsa"
	DefaultSSHTimeout = 15 * time.Second

	DefaultKubernetesVersion = "v1.30"
	DefaultPodNetworkCIDR    = "10.244.0.0/16"
	DefaultNetworkManifest   = "https://raw.githubusercontent.com/coreos/flannel/master/Documentation/kube-flannel.yml"
	DefaultJoinFile          = "join.txt"
	DefaultKubeConfig        = "admin.conf"

	DefaultWaitInterval   = time.Second
	DefaultWaitTimeout    = 10 * time.Minute
	DefaultSSHWaitTimeout = 5 * time.Minute
	DefaultAPIServerPort  = 6443
)

func NodeName(prefix string, index int) string {
	return fmt.Sprintf("%s%d", prefix, index)
}
