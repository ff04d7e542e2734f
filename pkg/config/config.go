package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Droplet struct {
	Count      int    `yaml:"count"`
	NamePrefix string `yaml:"namePrefix"`
	Region     string `yaml:"region"`
	Image      string `yaml:"image"`
	Size       string `yaml:"size"`
}

type SSH struct {
	User       string        `yaml:"user"`
	Port       int           `yaml:"port"`
	PrivateKey string        `yaml:"privateKey"`
	Password   string        `yaml:"password"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Kubernetes struct {
	Version         string `yaml:"version"`
	PodNetworkCIDR  string `yaml:"podNetworkCIDR"`
	NetworkManifest string `yaml:"networkManifest"`
	JoinFile        string `yaml:"joinFile"`
	KubeConfig      string `yaml:"kubeconfig"`
}

type Wait struct {
	Interval   time.Duration `yaml:"interval"`
	Timeout    time.Duration `yaml:"timeout"`
	SSHTimeout time.Duration `yaml:"sshTimeout"`
}

type Config struct {
	Droplet    Droplet    `yaml:"droplet"`
	SSH        SSH        `yaml:"ssh"`
	Kubernetes Kubernetes `yaml:"kubernetes"`
	Wait       Wait       `yaml:"wait"`

	// AccessToken never comes from the file.
	AccessToken string `yaml:"-"`
}

// Parse reads and validates configFile. An empty name gives the defaults.
func Parse(configFile string) (*Config, error) {
	var config Config
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, err
		}
		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return nil, err
		}
	}
	config.AccessToken = os.Getenv(EnvAccessToken)
	err := config.validate()
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// NodeNames returns node-1 .. node-N.
func (c *Config) NodeNames() []string {
	names := make([]string, 0, c.Droplet.Count)
	for i := 1; i <= c.Droplet.Count; i++ {
		names = append(names, NodeName(c.Droplet.NamePrefix, i))
	}
	return names
}
