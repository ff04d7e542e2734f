package node

import (
	"bytes"
	"strings"
)

// ConfigureMaster runs kubeadm init, installs the admin kubeconfig for the
// login user and deploys the pod network.
func (n *Node) ConfigureMaster() error {
	n.log.Printf("Configuring master on %s", n.host.Address)
	err := n.sudo(masterCommands(n.settings.PodNetworkCIDR, n.settings.NetworkManifest)...)
	if err != nil {
		n.log.Errorf("fail to configure master: %v", err)
		return err
	}
	n.log.Printf("configure master success")
	return nil
}

// JoinCommand creates a bootstrap token and returns the kubeadm join command
// for it.
func (n *Node) JoinCommand() (string, error) {
	out, err := n.remote.SudoQuiet(tokenCreateCommand)
	if err != nil {
		return "", err
	}
	return ParseJoinCommand(string(out))
}

func (n *Node) Join(joinCommand string) error {
	n.log.Printf("Joining %s to the cluster", n.host.Address)
	joinCommand = strings.TrimSpace(joinCommand)
	if joinCommand == "" {
		return ErrEmptyJoinFile
	}
	_, err := n.remote.Sudo(joinCommand)
	if err != nil {
		n.log.Errorf("fail to join cluster: %v", err)
		return err
	}
	return nil
}

func (n *Node) GetNodes() (string, error) {
	out, err := n.remote.Sudo(getNodesCommand)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// GetKubeConfig reads admin.conf over sftp, falling back to sudo cat when the
// login user cannot read it.
func (n *Node) GetKubeConfig() ([]byte, error) {
	data, err := n.remote.ReadFile(adminConfigPath)
	if err == nil {
		return data, nil
	}
	n.log.Debugf("read %s over sftp: %v", adminConfigPath, err)
	return n.remote.SudoQuiet(readAdminCommand)
}

func (n *Node) Reset() error {
	return n.sudo(resetCommand)
}

func trimOutput(out []byte) string {
	return string(bytes.TrimSpace(out))
}
