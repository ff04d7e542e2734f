package remote

import (
	"bytes"
	"fmt"
	"strings"
)

type ubuntuClient struct {
	*Client
}

func (c *ubuntuClient) Install(pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	_, err := c.Sudo(InstallCommand(pkgs...))
	return err
}

func (c *ubuntuClient) Uninstall(pkgs ...string) error {
	installed, err := c.listInstalled(pkgs)
	if err != nil {
		return err
	}
	if len(installed) == 0 {
		return nil
	}
	_, err = c.Sudo(fmt.Sprintf("apt-get remove -y --allow-change-held-packages %s", strings.Join(installed, " ")))
	return err
}

func (c *ubuntuClient) listInstalled(pkgs []string) ([]string, error) {
	output, err := c.execCommand(`dpkg-query -W -f='${Package} ${Status}\n'`)
	if err != nil {
		return nil, err
	}
	return parseInstalled(output, pkgs), nil
}

// InstallCommand is the apt invocation used for every package install.
func InstallCommand(pkgs ...string) string {
	return fmt.Sprintf("apt-get update && apt-get install -qy %s", strings.Join(pkgs, " "))
}

func parseInstalled(output []byte, pkgs []string) []string {
	installed := make(map[string]struct{})
	output = bytes.TrimRight(output, "\n")
	for _, line := range bytes.Split(output, []byte("\n")) {
		fields := strings.Fields(string(line))
		if len(fields) < 2 || fields[len(fields)-1] != "installed" {
			continue
		}
		installed[fields[0]] = struct{}{}
	}
	var given []string
	for _, pkg := range pkgs {
		if _, ok := installed[pkg]; ok {
			given = append(given, pkg)
		}
	}
	return given
}
