package node

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/godzilla-s/kubeadm-installer/pkg/client/remote"
	"github.com/godzilla-s/kubeadm-installer/pkg/config"
)

// Runner is the part of the ssh client a node needs.
type Runner interface {
	Run(cmd string) ([]byte, error)
	Sudo(cmd string) ([]byte, error)
	SudoQuiet(cmd string) ([]byte, error)
	ReadFile(file string) ([]byte, error)
	WriteFile(file string, data []byte, override bool) error
	Install(pkgs ...string) error
	Uninstall(pkgs ...string) error
	Close() error
}

// Host identifies a droplet by tag name and public address.
type Host struct {
	Name    string
	Address string
	Role    string
}

type Node struct {
	remote             Runner
	host               Host
	settings           config.Kubernetes
	installingPackages []Package
	log                *logrus.Entry
}

// New dials the host once.
func New(h Host, conf *config.Config, log *logrus.Logger) (*Node, error) {
	logEntry := entry(h, log)
	remoteCli, err := remote.New(remoteConfig(h, conf), logEntry)
	if err != nil {
		return nil, err
	}
	return NewWithRunner(h, remoteCli, conf, logEntry), nil
}

// Wait dials the host until sshd answers or wait.sshTimeout passes.
func Wait(ctx context.Context, h Host, conf *config.Config, log *logrus.Logger) (*Node, error) {
	logEntry := entry(h, log)
	remoteCli, err := remote.WaitReachable(ctx, remoteConfig(h, conf), logEntry, conf.Wait.SSHTimeout, conf.Wait.Interval)
	if err != nil {
		return nil, err
	}
	return NewWithRunner(h, remoteCli, conf, logEntry), nil
}

func NewWithRunner(h Host, r Runner, conf *config.Config, log *logrus.Entry) *Node {
	n := &Node{
		remote:   r,
		host:     h,
		settings: conf.Kubernetes,
		log:      log,
	}
	n.installingPackages = []Package{
		&docker{Node: n},
		&kubernetes{Node: n},
	}
	return n
}

func entry(h Host, log *logrus.Logger) *logrus.Entry {
	return logrus.NewEntry(log).WithFields(map[string]interface{}{
		"host": h.Address,
		"node": h.Name,
		"role": h.Role,
	})
}

func remoteConfig(h Host, conf *config.Config) *remote.Config {
	return &remote.Config{
		Host:       h.Address,
		Port:       conf.SSH.Port,
		User:       conf.SSH.User,
		Password:   conf.SSH.Password,
		PrivateKey: conf.SSH.PrivateKey,
		Timeout:    conf.SSH.Timeout,
	}
}

func (n *Node) Name() string {
	return n.host.Name
}

func (n *Node) Address() string {
	return n.host.Address
}

func (n *Node) Close() error {
	return n.remote.Close()
}

// Prepare brings a fresh droplet to the point where kubeadm can run on it.
func (n *Node) Prepare() error {
	if err := n.InstallDocker(); err != nil {
		return err
	}
	if err := n.DisableSwap(); err != nil {
		return err
	}
	if err := n.ConfigureKernel(); err != nil {
		return err
	}
	if err := n.InstallKubernetes(); err != nil {
		return err
	}
	return nil
}

// Cleanup resets kubeadm state and removes the installed packages.
func (n *Node) Cleanup() error {
	for i := len(n.installingPackages) - 1; i >= 0; i-- {
		if err := n.installingPackages[i].uninstall(); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) InstallDocker() error {
	n.log.Printf("Installing Docker on %s", n.host.Address)
	return n.installingPackages[0].install()
}

func (n *Node) InstallKubernetes() error {
	n.log.Printf("Installing Kubernetes on %s", n.host.Address)
	return n.installingPackages[1].install()
}

// DisableSwap comments swap out of fstab and turns it off; kubelet refuses to
// start with swap on.
func (n *Node) DisableSwap() error {
	return n.sudo(disableSwapCommands...)
}

// ConfigureKernel loads the bridge netfilter modules and enables forwarding,
// both kubeadm preflight requirements.
func (n *Node) ConfigureKernel() error {
	if err := n.writeRootFile(modulesLoadFile, []byte(modulesLoadConfig)); err != nil {
		n.log.Errorf("fail to write %s: %v", modulesLoadFile, err)
		return err
	}
	if err := n.writeRootFile(sysctlFile, []byte(sysctlConfig)); err != nil {
		n.log.Errorf("fail to write %s: %v", sysctlFile, err)
		return err
	}
	return n.sudo(kernelCommands...)
}

func (n *Node) sudo(cmds ...string) error {
	for _, cmd := range cmds {
		if _, err := n.remote.Sudo(cmd); err != nil {
			return err
		}
	}
	return nil
}

// writeRootFile stages data in /tmp over sftp and moves it into place as root.
func (n *Node) writeRootFile(target string, data []byte) error {
	staged := stagedPath(target)
	if err := n.remote.WriteFile(staged, data, true); err != nil {
		return err
	}
	_, err := n.remote.Sudo(moveCommand(staged, target))
	return err
}
