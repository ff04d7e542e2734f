package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/godzilla-s/kubeadm-installer/pkg/config"
	"github.com/godzilla-s/kubeadm-installer/pkg/core"
	"github.com/godzilla-s/kubeadm-installer/pkg/utils"
)

var (
	configFile      string
	accessToken     string
	joinFile        string
	verbose         bool
	destroyDroplets bool
)

var rootCmd = &cobra.Command{
	Use:           "kubeadm-installer",
	Short:         "Provision DigitalOcean droplets and bootstrap a kubeadm cluster on them",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var pingCmd = &cobra.Command{
	Use:   "ping <output>",
	Short: "Sanity check",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		core.Ping(utils.NewMessage(), args[0])
	},
}

var createDropletsCmd = &cobra.Command{
	Use:   "create-droplets",
	Short: "Create the droplets node-1 .. node-N",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.CreateDroplets(ctx)
	}),
}

var waitForDropletsCmd = &cobra.Command{
	Use:   "wait-for-droplets",
	Short: "Wait for each droplet to be ready and active",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.WaitForDroplets(ctx)
	}),
}

var destroyDropletsCmd = &cobra.Command{
	Use:   "destroy-droplets",
	Short: "Destroy the droplets node-1 .. node-N",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.DestroyDroplets(ctx)
	}),
}

var getAddressesCmd = &cobra.Command{
	Use:       "get-addresses <master|workers|all>",
	Short:     "Print the public addresses of the droplets",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), validRole),
	ValidArgs: []string{config.RoleMaster, config.RoleWorkers, config.RoleAll},
	RunE: run(func(ctx context.Context, i *core.Installer, args []string) error {
		_, err := i.Addresses(ctx, args[0])
		return err
	}),
}

var provisionMachinesCmd = &cobra.Command{
	Use:   "provision-machines",
	Short: "Install docker and kubernetes on every droplet",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.ProvisionMachines(ctx)
	}),
}

var createClusterCmd = &cobra.Command{
	Use:   "create-cluster",
	Short: "Init kubernetes on the master and save the join command",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.CreateCluster(ctx)
	}),
}

var configureWorkersCmd = &cobra.Command{
	Use:     "configure-workers",
	Aliases: []string{"configure-worker-node"},
	Short:   "Join the workers to the cluster",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.ConfigureWorkers(ctx)
	}),
}

var getNodesCmd = &cobra.Command{
	Use:   "get-nodes",
	Short: "Run kubectl get nodes on the master",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		_, err := i.GetNodes(ctx)
		return err
	}),
}

var kubeConfigCmd = &cobra.Command{
	Use:   "kubeconfig",
	Short: "Download the admin kubeconfig from the master",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		_, err := i.KubeConfig(ctx)
		return err
	}),
}

var waitForNodesCmd = &cobra.Command{
	Use:   "wait-for-nodes",
	Short: "Wait until every droplet is a Ready node",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.WaitForNodes(ctx)
	}),
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Create the droplets and bootstrap the cluster",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		i.WaitForSSH()
		return i.Install(ctx)
	}),
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Reset kubernetes on every droplet",
	RunE: run(func(ctx context.Context, i *core.Installer, _ []string) error {
		return i.Uninstall(ctx, destroyDroplets)
	}),
}

// validRole runs before the installer is built so a bad type is reported
// even without an access token.
func validRole(cmd *cobra.Command, args []string) error {
	if err := core.ValidateRole(args[0]); err != nil {
		utils.NewMessageTo(cmd.OutOrStdout()).Plain("%s", core.InvalidRoleMessage)
		return err
	}
	return nil
}

type action func(ctx context.Context, i *core.Installer, args []string) error

func run(fn action) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		conf, err := config.Parse(configFile)
		if err != nil {
			return err
		}
		if accessToken != "" {
			conf.AccessToken = accessToken
		}
		if joinFile != "" {
			conf.Kubernetes.JoinFile = joinFile
		}

		installer, err := core.New(conf, newLogger())
		if err != nil {
			return err
		}
		return fn(cmd.Context(), installer, args)
	}
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "f", "", "config file")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", "", "DigitalOcean access token, defaults to $"+config.EnvAccessToken)
	rootCmd.PersistentFlags().StringVar(&joinFile, "join-file", "", "file the worker join command is kept in")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every remote command")
	uninstallCmd.Flags().BoolVar(&destroyDroplets, "destroy", false, "destroy the droplets instead of resetting them")

	rootCmd.AddCommand(
		pingCmd,
		createDropletsCmd,
		waitForDropletsCmd,
		destroyDropletsCmd,
		getAddressesCmd,
		provisionMachinesCmd,
		createClusterCmd,
		configureWorkersCmd,
		getNodesCmd,
		kubeConfigCmd,
		waitForNodesCmd,
		installCmd,
		uninstallCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, core.ErrInvalidRole) {
			logrus.Error(err)
		}
		stop()
		os.Exit(1)
	}
}
