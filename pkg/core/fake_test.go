package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/digitalocean/godo"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/godzilla-s/kubeadm-installer/pkg/client/cloud"
	"github.com/godzilla-s/kubeadm-installer/pkg/client/remote"
	"github.com/godzilla-s/kubeadm-installer/pkg/config"
	"github.com/godzilla-s/kubeadm-installer/pkg/node"
	"github.com/godzilla-s/kubeadm-installer/pkg/utils"
)

type fakeCloud struct {
	mu        sync.Mutex
	keys      []godo.Key
	created   []string
	destroyed []string
	// statuses holds the status sequence each tag reports, one per call.
	statuses  map[string][]string
	addresses map[string]string
	err       error
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		statuses: map[string][]string{},
		addresses: map[string]string{
			"node-1": "203.0.113.1",
			"node-2": "203.0.113.2",
			"node-3": "203.0.113.3",
		},
	}
}

func (c *fakeCloud) ListSSHKeys(context.Context) ([]godo.Key, error) {
	return c.keys, c.err
}

func (c *fakeCloud) CreateDroplet(_ context.Context, name string, _ []godo.Key) (*godo.Droplet, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, name)
	return &godo.Droplet{Name: name}, nil
}

func (c *fakeCloud) Status(_ context.Context, tag string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	seq := c.statuses[tag]
	if len(seq) == 0 {
		return cloud.StatusActive, nil
	}
	status := seq[0]
	c.statuses[tag] = seq[1:]
	if status == "" {
		return "", cloud.ErrDropletNotFound
	}
	return status, nil
}

func (c *fakeCloud) PublicAddress(_ context.Context, tag string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	address, ok := c.addresses[tag]
	if !ok {
		return "", cloud.ErrDropletNotFound
	}
	return address, nil
}

func (c *fakeCloud) DestroyByTag(_ context.Context, tag string) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.destroyed = append(c.destroyed, tag)
	return 1, nil
}

// fakeHosts hands out one recording runner per host.
type fakeHosts struct {
	mu      sync.Mutex
	runners map[string]*fakeRunner
	outputs map[string]string
	failOn  string
	dialErr map[string]error
}

func newFakeHosts() *fakeHosts {
	return &fakeHosts{
		runners: map[string]*fakeRunner{},
		outputs: map[string]string{},
		dialErr: map[string]error{},
	}
}

func (h *fakeHosts) dial(conf *config.Config, log *logrus.Logger) Dialer {
	return func(_ context.Context, host node.Host) (*node.Node, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		if err := h.dialErr[host.Name]; err != nil {
			return nil, err
		}
		r, ok := h.runners[host.Name]
		if !ok {
			r = &fakeRunner{hosts: h, files: map[string]string{}}
			h.runners[host.Name] = r
		}
		r.dials++
		return node.NewWithRunner(host, r, conf, logrus.NewEntry(log)), nil
	}
}

func (h *fakeHosts) commands(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.runners[name]
	if !ok {
		return nil
	}
	return append([]string(nil), r.commands...)
}

type fakeRunner struct {
	hosts    *fakeHosts
	commands []string
	files    map[string]string
	dials    int
	closed   int
}

func (f *fakeRunner) exec(cmd string) ([]byte, error) {
	f.hosts.mu.Lock()
	defer f.hosts.mu.Unlock()
	f.commands = append(f.commands, cmd)
	if f.hosts.failOn != "" && strings.Contains(cmd, f.hosts.failOn) {
		return nil, &remote.CommandError{Command: cmd, Err: errors.New("exit status 1")}
	}
	return []byte(f.hosts.outputs[cmd]), nil
}

func (f *fakeRunner) Run(cmd string) ([]byte, error)  { return f.exec(cmd) }
func (f *fakeRunner) Sudo(cmd string) ([]byte, error) { return f.exec(cmd) }

func (f *fakeRunner) SudoQuiet(cmd string) ([]byte, error) { return f.exec(cmd) }

func (f *fakeRunner) ReadFile(file string) ([]byte, error) {
	f.hosts.mu.Lock()
	defer f.hosts.mu.Unlock()
	data, ok := f.files[file]
	if !ok {
		return nil, fmt.Errorf("open %s: permission denied", file)
	}
	return []byte(data), nil
}

func (f *fakeRunner) WriteFile(file string, data []byte, _ bool) error {
	f.hosts.mu.Lock()
	defer f.hosts.mu.Unlock()
	f.files[file] = string(data)
	return nil
}

func (f *fakeRunner) Install(pkgs ...string) error {
	_, err := f.exec(remote.InstallCommand(pkgs...))
	return err
}

func (f *fakeRunner) Uninstall(pkgs ...string) error {
	_, err := f.exec("remove " + strings.Join(pkgs, " "))
	return err
}

func (f *fakeRunner) Close() error {
	f.hosts.mu.Lock()
	defer f.hosts.mu.Unlock()
	f.closed++
	return nil
}

type fixture struct {
	installer *Installer
	cloud     *fakeCloud
	hosts     *fakeHosts
	conf      *config.Config
	out       *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	color.NoColor = true

	conf, err := config.Parse("")
	require.NoError(t, err)
	conf.Wait.Interval = time.Millisecond
	conf.Wait.Timeout = time.Second
	conf.Kubernetes.JoinFile = t.TempDir() + "/join.txt"
	conf.Kubernetes.KubeConfig = t.TempDir() + "/admin.conf"

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	f := &fixture{
		cloud: newFakeCloud(),
		hosts: newFakeHosts(),
		conf:  conf,
		out:   &bytes.Buffer{},
	}
	f.installer = NewWith(f.cloud, f.hosts.dial(conf, log), conf, log, utils.NewMessageTo(f.out))
	return f
}

func (f *fixture) lines() []string {
	return strings.Split(strings.TrimRight(f.out.String(), "\n"), "\n")
}
