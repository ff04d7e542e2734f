package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) validate() error {
	if err := c.validateDroplet(); err != nil {
		return err
	}
	if err := c.validateSSH(); err != nil {
		return err
	}
	if err := c.validateKubernetes(); err != nil {
		return err
	}
	if err := c.validateWait(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDroplet() error {
	d := &c.Droplet
	if d.Count == 0 {
		d.Count = DefaultNodeCount
	}
	if d.Count < 2 {
		return fmt.Errorf("invalid droplet: need one master and at least one worker, got count %d", d.Count)
	}
	if d.NamePrefix == "" {
		d.NamePrefix = DefaultNamePrefix
	}
	if d.Region == "" {
		d.Region = DefaultRegion
	}
	if d.Image == "" {
		d.Image = DefaultImage
	}
	if d.Size == "" {
		d.Size = DefaultSize
	}
	return nil
}

func (c *Config) validateSSH() error {
	s := &c.SSH
	if s.User == "" {
		s.User = DefaultSSHUser
	}
	if s.Port == 0 {
		s.Port = DefaultSSHPort
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid ssh: port %d out of range", s.Port)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("invalid ssh: negative timeout")
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultSSHTimeout
	}
	if s.Password != "" {
		decPwd, err := base64.StdEncoding.DecodeString(s.Password)
		if err != nil {
			return fmt.Errorf("invalid ssh: invalid password")
		}
		s.Password = string(decPwd)
	}
	if s.PrivateKey == "" && s.Password == "" {
		s.PrivateKey = DefaultPrivateKey
	}
	if s.PrivateKey != "" {
		s.PrivateKey = expandHome(s.PrivateKey)
	}
	return nil
}

func (c *Config) validateKubernetes() error {
	k := &c.Kubernetes
	if k.Version == "" {
		k.Version = DefaultKubernetesVersion
	}
	if !strings.HasPrefix(k.Version, "v") {
		k.Version = "v" + k.Version
	}
	switch k.PodNetworkCIDR {
	case "":
		k.PodNetworkCIDR = DefaultPodNetworkCIDR
	case PodNetworkNone:
		k.PodNetworkCIDR = ""
	}
	if k.NetworkManifest == "" {
		k.NetworkManifest = DefaultNetworkManifest
	}
	if k.JoinFile == "" {
		k.JoinFile = DefaultJoinFile
	}
	if k.KubeConfig == "" {
		k.KubeConfig = DefaultKubeConfig
	}
	return nil
}

func (c *Config) validateWait() error {
	w := &c.Wait
	if w.Interval < 0 || w.Timeout < 0 || w.SSHTimeout < 0 {
		return fmt.Errorf("invalid wait: negative duration")
	}
	if w.Interval == 0 {
		w.Interval = DefaultWaitInterval
	}
	if w.Timeout == 0 {
		w.Timeout = DefaultWaitTimeout
	}
	if w.SSHTimeout == 0 {
		w.SSHTimeout = DefaultSSHWaitTimeout
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
