package node

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	adminConfigPath = "/etc/kubernetes/admin.conf"
	keyringPath     = "/etc/apt/keyrings/kubernetes-apt-keyring.gpg"
	sourceListPath  = "/etc/apt/sources.list.d/kubernetes.list"
	modulesLoadFile = "/etc/modules-load.d/k8s.conf"
	sysctlFile      = "/etc/sysctl.d/99-kubernetes-cri.conf"

	modulesLoadConfig = "overlay\nbr_netfilter\n"
	sysctlConfig      = "net.bridge.bridge-nf-call-iptables = 1\nnet.bridge.bridge-nf-call-ip6tables = 1\nnet.ipv4.ip_forward = 1\n"
)

var (
	dockerPackages     = []string{"docker.io"}
	kubernetesPackages = []string{"kubelet", "kubeadm", "kubectl"}
	transportPackages  = []string{"apt-transport-https", "ca-certificates", "curl", "gpg"}
)

const (
	dockerVersionCommand = "docker --version"
	enableDockerCommand  = "systemctl enable docker.service"

	tokenCreateCommand = "kubeadm token create --print-join-command"
	getNodesCommand    = "kubectl get nodes"
	resetCommand       = "kubeadm reset -f"
	readAdminCommand   = "cat " + adminConfigPath
)

var disableSwapCommands = []string{
	`sed -i "/ swap / s/^/#/" /etc/fstab`,
	"swapoff -a",
}

var kernelCommands = []string{
	"modprobe overlay && modprobe br_netfilter",
	"sysctl --system",
}

// containerd ships with the cri plugin using cgroupfs; kubelet expects systemd.
var containerdCommands = []string{
	"mkdir -p /etc/containerd && containerd config default > /etc/containerd/config.toml",
	"sed -i 's/SystemdCgroup = false/SystemdCgroup = true/' /etc/containerd/config.toml",
	"systemctl restart containerd",
}

func repositoryCommands(version string) []string {
	repo := fmt.Sprintf("https://pkgs.k8s.io/core:/stable:/%s/deb/", version)
	return []string{
		fmt.Sprintf("mkdir -p /etc/apt/keyrings && curl -fsSL %sRelease.key | gpg --batch --yes --dearmor -o %s", repo, keyringPath),
		fmt.Sprintf(`echo "deb [signed-by=%s] %s /" | tee %s && apt-get update`, keyringPath, repo, sourceListPath),
	}
}

func masterCommands(podNetworkCIDR, networkManifest string) []string {
	initCmd := "kubeadm init"
	if podNetworkCIDR != "" {
		initCmd = fmt.Sprintf("kubeadm init --pod-network-cidr=%s", podNetworkCIDR)
	}
	return []string{
		initCmd,
		"mkdir -p $HOME/.kube",
		"cp -f " + adminConfigPath + " $HOME/.kube/config",
		"chown $(id -u):$(id -g) $HOME/.kube/config",
		"kubectl apply -f " + networkManifest,
	}
}

func stagedPath(target string) string {
	return filepath.Join("/tmp", strings.ReplaceAll(strings.TrimPrefix(target, "/"), "/", "_"))
}

func moveCommand(from, to string) string {
	return fmt.Sprintf("mkdir -p %s && mv -f %s %s", filepath.Dir(to), from, to)
}
