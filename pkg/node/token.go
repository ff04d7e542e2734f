package node

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"regexp"
	"strings"
)

var (
	ErrJoinCommandNotFound = errors.New("no kubeadm join command in output")
	ErrEmptyJoinFile       = errors.New("join file is empty")
)

var joinCommandPattern = regexp.MustCompile(`(?m)^kubeadm.*$`)

// ParseJoinCommand returns the first line of output starting with kubeadm.
func ParseJoinCommand(output string) (string, error) {
	match := joinCommandPattern.FindString(output)
	match = strings.TrimSpace(match)
	if match == "" {
		return "", ErrJoinCommandNotFound
	}
	return match, nil
}

// WriteJoinFile replaces path with the join command and a trailing newline.
func WriteJoinFile(path, joinCommand string) error {
	return os.WriteFile(path, []byte(joinCommand+"\n"), 0o600)
}

// ReadJoinFile returns the first line of path.
func ReadJoinFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrEmptyJoinFile
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return "", ErrEmptyJoinFile
	}
	return line, nil
}

func RemoveJoinFile(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
