// Package config loads the netconf-client YAML configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Transports.
const (
	SSH = "ssh"
	TLS = "tls"
)

// Config is the netconf-client configuration.
type Config struct {
	// Address is "host" or "host:port". The port defaults to the
	// transport's IANA port.
	Address   string        `yaml:"address"`
	Transport string        `yaml:"transport"`
	Timeout   time.Duration `yaml:"timeout"`
	LogID     string        `yaml:"log_id"`

	// Capabilities replace the default client <hello> capabilities.
	Capabilities []string `yaml:"capabilities"`
	MaxChunkSize uint32   `yaml:"max_chunk_size"`

	// CallHome, if set, is the address to listen on for the server to
	// connect (RFC8071), in place of dialing Address.
	CallHome string `yaml:"call_home"`

	SSH SSHConfig `yaml:"ssh"`
	TLS TLSConfig `yaml:"tls"`
}

// SSHConfig holds SSH client settings.
type SSHConfig struct {
	User       string   `yaml:"user"`
	Password   string   `yaml:"password"`
	KeyFile    string   `yaml:"key_file"`
	Passphrase string   `yaml:"passphrase"`
	KnownHosts []string `yaml:"known_hosts"`
}

// TLSConfig holds TLS client settings. Without a CA file the server
// certificate is not verified.
type TLSConfig struct {
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	CAFile     string `yaml:"ca_file"`
	ServerName string `yaml:"server_name"`
}

// Default returns the configuration used for settings absent from the
// file.
func Default() *Config {
	return &Config{
		Transport: SSH,
		Timeout:   120 * time.Second,
		SSH:       SSHConfig{User: os.Getenv("USER")},
	}
}

// DefaultPath returns ~/.netconf-client/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".netconf-client", "config.yaml")
	}
	return filepath.Join(home, ".netconf-client", "config.yaml")
}

// Load reads the configuration at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.WithStack(err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		glog.Warningf("config file %s has permissions %04o, expected 0600; passwords may be exposed to other users", path, perm)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Validate checks that the configuration can establish a session.
func (c *Config) Validate() error {
	if c.Address == "" && c.CallHome == "" {
		return errors.New("no address or call_home address")
	}
	if c.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	switch c.Transport {
	case SSH:
		if c.SSH.User == "" {
			return errors.New("ssh: no user")
		}
		if c.SSH.Password == "" && c.SSH.KeyFile == "" {
			return errors.New("ssh: no password or key_file")
		}
	case TLS:
		if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
			return errors.New("tls: cert_file and key_file must be set together")
		}
	default:
		return errors.Errorf("unknown transport %q", c.Transport)
	}
	return nil
}
