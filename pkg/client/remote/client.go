package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/godzilla-s/kubeadm-installer/pkg/utils"
)

type Client struct {
	address string
	user    string
	ssh     *ssh.Client
	sftp    *sftp.Client
	auth    *ssh.ClientConfig
	log     *logrus.Entry
	SystemAction
}

type Config struct {
	Host       string
	Port       int
	User       string
	Password   string
	PrivateKey string
	Timeout    time.Duration
}

type SystemAction interface {
	Install(pkgs ...string) error
	Uninstall(pkgs ...string) error
}

func New(conf *Config, log *logrus.Entry) (*Client, error) {
	client, err := newClient(conf, log)
	if err != nil {
		return nil, err
	}
	err = client.connect()
	if err != nil {
		return nil, err
	}
	return client, nil
}

// WaitReachable keeps dialing until sshd on the host accepts the connection.
// Droplets report active before sshd is up.
func WaitReachable(ctx context.Context, conf *Config, log *logrus.Entry, timeout, interval time.Duration) (*Client, error) {
	client, err := newClient(conf, log)
	if err != nil {
		return nil, err
	}
	err = utils.Clock(ctx, timeout, interval, func() error {
		err := client.connect()
		if err != nil {
			log.Debugf("ssh not reachable yet: %v", err)
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wait for ssh on %s", client.address)
	}
	return client, nil
}

func newClient(conf *Config, log *logrus.Entry) (*Client, error) {
	methods, err := authMethods(conf)
	if err != nil {
		return nil, err
	}
	auth := &ssh.ClientConfig{
		User:            conf.User,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         conf.Timeout,
	}
	if auth.Timeout == 0 {
		auth.Timeout = 15 * time.Second
	}
	port := conf.Port
	if port == 0 {
		port = 22
	}

	return &Client{
		address: net.JoinHostPort(conf.Host, strconv.Itoa(port)),
		user:    conf.User,
		auth:    auth,
		log:     log,
	}, nil
}

func authMethods(conf *Config) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if conf.PrivateKey != "" {
		key, err := os.ReadFile(conf.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "read private key")
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.Wrapf(err, "parse private key %s", conf.PrivateKey)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if conf.Password != "" {
		methods = append(methods, ssh.Password(conf.Password))
	}
	if len(methods) == 0 {
		return nil, ErrNoAuthMethod
	}
	return methods, nil
}

func (c *Client) connect() error {
	sshClient, err := ssh.Dial("tcp", c.address, c.auth)
	if err != nil {
		return err
	}
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return err
	}
	c.ssh = sshClient
	c.sftp = sftpClient
	c.SystemAction = &ubuntuClient{Client: c}
	return nil
}

func (c *Client) Address() string {
	return c.address
}

func (c *Client) Close() error {
	if c.sftp != nil {
		c.sftp.Close()
	}
	if c.ssh != nil {
		return c.ssh.Close()
	}
	return nil
}

func (c *Client) execCommand(cmd string) ([]byte, error) {
	if c.ssh == nil {
		return nil, ErrNotConnected
	}
	sess, err := c.ssh.NewSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	c.log.Debugf("run: %s", cmd)
	output, err := sess.CombinedOutput(cmd)
	if err != nil {
		return output, &CommandError{Command: cmd, Output: output, Err: err}
	}
	return output, nil
}

// Run executes cmd as the login user and logs its output line by line.
func (c *Client) Run(cmd string) ([]byte, error) {
	output, err := c.execCommand(cmd)
	c.logOutput(output, err)
	return output, err
}

// Sudo executes cmd as root.
func (c *Client) Sudo(cmd string) ([]byte, error) {
	return c.Run(SudoCommand(c.user, cmd))
}

// SudoQuiet executes cmd as root and keeps its output out of the log. It is
// for commands that print credentials.
func (c *Client) SudoQuiet(cmd string) ([]byte, error) {
	return c.execCommand(SudoCommand(c.user, cmd))
}

func (c *Client) logOutput(output []byte, err error) {
	output = bytes.TrimRight(output, "\n")
	if len(output) == 0 {
		return
	}
	for _, line := range bytes.Split(output, []byte("\n")) {
		if err != nil {
			c.log.Errorln(string(line))
			continue
		}
		c.log.Debugln(string(line))
	}
}

func (c *Client) WriteFile(file string, data []byte, override bool) error {
	if c.sftp == nil {
		return ErrNotConnected
	}
	if !override {
		_, err := c.sftp.Stat(file)
		if err == nil {
			return ErrFileDoesExist
		}
	}

	baseDir := filepath.Dir(file)
	fi, err := c.sftp.Stat(baseDir)
	if err != nil {
		err = c.sftp.MkdirAll(baseDir)
		if err != nil {
			return err
		}
	} else if !fi.IsDir() {
		return fmt.Errorf("cannot create %s, basedir is a file", file)
	}

	f, err := c.sftp.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

func (c *Client) ReadFile(file string) ([]byte, error) {
	if c.sftp == nil {
		return nil, ErrNotConnected
	}
	f, err := c.sftp.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// SudoCommand wraps cmd so it runs as root. Commands for root pass through.
func SudoCommand(user, cmd string) string {
	if user == "" || user == "root" {
		return cmd
	}
	return "sudo sh -c " + Quote(cmd)
}

// Quote single-quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
