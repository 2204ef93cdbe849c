package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	netconf "github.com/ADTRAN/netconf-client"
	"github.com/ADTRAN/netconf-client/rpc"
	"github.com/ADTRAN/netconf-client/xmlutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	subtree    string
	xpathExpr  string
	source     string
	target     string
	datastore  string
	withCommit bool
	stream     string
	count      int
)

// filterOptions returns the filter selected by --subtree or --xpath.
func filterOptions() ([]rpc.Option, error) {
	switch {
	case subtree != "" && xpathExpr != "":
		return nil, errors.New("--subtree and --xpath are mutually exclusive")
	case subtree != "":
		return []rpc.Option{netconf.Subtree(subtree)}, nil
	case xpathExpr != "":
		return []rpc.Option{netconf.XPath(xpathExpr)}, nil
	}
	return nil, nil
}

// readInput returns the content of the file named by args[0], or of stdin
// if it is "-" or absent.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var b []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func printXML(cmd *cobra.Command, doc string) {
	fmt.Fprintln(cmd.OutOrStdout(), xmlutil.Pretty([]byte(doc)))
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Retrieve configuration and state data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := filterOptions()
		if err != nil {
			return err
		}
		return withManager(cmd.Context(), func(ctx context.Context, m *netconf.Manager) error {
			var reply *netconf.DataReply
			if datastore != "" {
				reply, err = m.GetData(ctx, datastore, opts...)
			} else {
				reply, err = m.Get(ctx, opts...)
			}
			if err != nil {
				return err
			}
			printXML(cmd, reply.DataXML())
			return nil
		})
	},
}

var getConfigCmd = &cobra.Command{
	Use:   "get-config",
	Short: "Retrieve a configuration datastore",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := filterOptions()
		if err != nil {
			return err
		}
		return withManager(cmd.Context(), func(ctx context.Context, m *netconf.Manager) error {
			reply, err := m.GetConfig(ctx, source, opts...)
			if err != nil {
				return err
			}
			printXML(cmd, reply.DataXML())
			return nil
		})
	},
}

var editConfigCmd = &cobra.Command{
	Use:   "edit-config [file|-]",
	Short: "Load a <config> element into a datastore",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		return withManager(cmd.Context(), func(ctx context.Context, m *netconf.Manager) error {
			if err := m.EditConfig(ctx, target, config); err != nil {
				return err
			}
			if withCommit {
				if err := m.Commit(ctx); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		})
	},
}

var rpcCmd = &cobra.Command{
	Use:   "rpc [file|-]",
	Short: "Send an operation element wrapped in an <rpc> and print the reply",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		operation, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		return withManager(cmd.Context(), func(ctx context.Context, m *netconf.Manager) error {
			reply, err := m.Dispatch(ctx, operation)
			if err != nil {
				return err
			}
			printXML(cmd, reply.String())
			return nil
		})
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Subscribe to an event stream and print notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []rpc.Option
		if stream != "" {
			opts = append(opts, rpc.Stream(stream))
		}
		return withManager(cmd.Context(), func(ctx context.Context, m *netconf.Manager) error {
			if err := m.CreateSubscription(ctx, opts...); err != nil {
				return err
			}
			for i := 0; count <= 0 || i < count; i++ {
				n, err := m.TakeNotification(ctx)
				if err != nil {
					return err
				}
				printXML(cmd, n.NotificationXML())
			}
			return nil
		})
	},
}

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Print the server's <hello>",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd.Context(), func(ctx context.Context, m *netconf.Manager) error {
			s := m.Session()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session-id: %d\nframing: %s\n", s.ID(), s.FramingMode())
			for _, c := range s.ServerCapabilities() {
				fmt.Fprintf(out, "capability: %s\n", c)
			}
			printXML(cmd, string(s.ServerHello()))
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{getCmd, getConfigCmd} {
		c.Flags().StringVar(&subtree, "subtree", "", "subtree filter content")
		c.Flags().StringVar(&xpathExpr, "xpath", "", "xpath filter expression")
	}
	getCmd.Flags().StringVar(&datastore, "datastore", "", "NMDA datastore for <get-data>, such as ds:operational")
	getConfigCmd.Flags().StringVar(&source, "source", "running", "source datastore")
	editConfigCmd.Flags().StringVar(&target, "target", "running", "target datastore")
	editConfigCmd.Flags().BoolVar(&withCommit, "commit", false, "commit after a successful edit")
	notificationsCmd.Flags().StringVar(&stream, "stream", "", "event stream (default NETCONF)")
	notificationsCmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many notifications (0 runs until interrupted)")

	rootCmd.AddCommand(getCmd, getConfigCmd, editConfigCmd, rpcCmd, notificationsCmd, helloCmd)
}
