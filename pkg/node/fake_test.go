package node

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/godzilla-s/kubeadm-installer/pkg/client/remote"
	"github.com/godzilla-s/kubeadm-installer/pkg/config"
)

// fakeRunner records every remote call as a flat command list. Install and
// Uninstall are recorded as the apt command the real client would run.
type fakeRunner struct {
	commands []string
	files    map[string]string
	outputs  map[string]string
	failOn   string
	closed   bool
	// quiet holds the commands whose output must stay out of the log.
	quiet []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{files: map[string]string{}, outputs: map[string]string{}}
}

func (f *fakeRunner) exec(cmd string) ([]byte, error) {
	f.commands = append(f.commands, cmd)
	if f.failOn != "" && strings.Contains(cmd, f.failOn) {
		return nil, &remote.CommandError{Command: cmd, Err: errors.New("exit status 1")}
	}
	return []byte(f.outputs[cmd]), nil
}

func (f *fakeRunner) Run(cmd string) ([]byte, error) {
	return f.exec(cmd)
}

func (f *fakeRunner) Sudo(cmd string) ([]byte, error) {
	return f.exec(cmd)
}

func (f *fakeRunner) SudoQuiet(cmd string) ([]byte, error) {
	f.quiet = append(f.quiet, cmd)
	return f.exec(cmd)
}

func (f *fakeRunner) ReadFile(file string) ([]byte, error) {
	data, ok := f.files[file]
	if !ok {
		return nil, errors.New("permission denied")
	}
	return []byte(data), nil
}

func (f *fakeRunner) WriteFile(file string, data []byte, _ bool) error {
	f.commands = append(f.commands, "write "+file)
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
	f.closed = true
	return nil
}

func testConfig() *config.Config {
	conf, err := config.Parse("")
	if err != nil {
		panic(err)
	}
	return conf
}

func testNode(r Runner) *Node {
	log := logrus.New()
	return NewWithRunner(Host{Name: "node-1", Address: "203.0.113.10", Role: config.RoleMaster}, r, testConfig(), logrus.NewEntry(log))
}
