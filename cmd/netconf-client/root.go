package main

import (
	"flag"
	"time"

	"github.com/ADTRAN/netconf-client/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	flags   config.Config

	// cfg is loaded in PersistentPreRunE, with flags applied.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "netconf-client",
	Short: "Run NETCONF operations against a server",
	Long: `netconf-client opens a NETCONF session over SSH or TLS, either by
dialing the server or by waiting for it to call home, and runs one
operation. Settings are read from the config file and overridden by flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		if cfg, err = config.Load(path); err != nil {
			return errors.Wrap(err, "load config")
		}
		applyFlags(cmd, cfg)
		return cfg.Validate()
	},
}

// applyFlags overrides c with the flags set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("address", func() { c.Address = flags.Address })
	set("transport", func() { c.Transport = flags.Transport })
	set("timeout", func() { c.Timeout = flags.Timeout })
	set("log-id", func() { c.LogID = flags.LogID })
	set("call-home", func() { c.CallHome = flags.CallHome })
	set("max-chunk-size", func() { c.MaxChunkSize = flags.MaxChunkSize })
	set("user", func() { c.SSH.User = flags.SSH.User })
	set("password", func() { c.SSH.Password = flags.SSH.Password })
	set("key-file", func() { c.SSH.KeyFile = flags.SSH.KeyFile })
	set("known-hosts", func() { c.SSH.KnownHosts = flags.SSH.KnownHosts })
	set("cert-file", func() { c.TLS.CertFile = flags.TLS.CertFile })
	set("tls-key-file", func() { c.TLS.KeyFile = flags.TLS.KeyFile })
	set("ca-file", func() { c.TLS.CAFile = flags.TLS.CAFile })
	set("server-name", func() { c.TLS.ServerName = flags.TLS.ServerName })
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.netconf-client/config.yaml)")
	pf.StringVarP(&flags.Address, "address", "a", "", "server address, host[:port]")
	pf.StringVarP(&flags.Transport, "transport", "t", config.SSH, "transport: ssh or tls")
	pf.DurationVar(&flags.Timeout, "timeout", 120*time.Second, "time to wait for each reply")
	pf.StringVar(&flags.LogID, "log-id", "", "id shown in request and reply traces")
	pf.StringVar(&flags.CallHome, "call-home", "", "listen on this address for the server to call home")
	pf.Uint32Var(&flags.MaxChunkSize, "max-chunk-size", 0, "maximum chunk size sent with chunked framing (0 is unlimited)")
	pf.StringVarP(&flags.SSH.User, "user", "u", "", "ssh user")
	pf.StringVarP(&flags.SSH.Password, "password", "p", "", "ssh password")
	pf.StringVar(&flags.SSH.KeyFile, "key-file", "", "ssh private key file")
	pf.StringSliceVar(&flags.SSH.KnownHosts, "known-hosts", nil, "ssh known_hosts files (host keys are not checked if unset)")
	pf.StringVar(&flags.TLS.CertFile, "cert-file", "", "tls client certificate file")
	pf.StringVar(&flags.TLS.KeyFile, "tls-key-file", "", "tls client key file")
	pf.StringVar(&flags.TLS.CAFile, "ca-file", "", "tls CA file (the server certificate is not verified if unset)")
	pf.StringVar(&flags.TLS.ServerName, "server-name", "", "tls server name")
	pf.AddGoFlagSet(flag.CommandLine)
}
