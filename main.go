// Command wifiwand manages wifi connections and monitors connectivity from
// the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/keithrbennett/wifiwand-sub000/internal/config"
	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

func main() {
	var (
		rootFlagSet = flag.NewFlagSet("wifiwand", flag.ExitOnError)
		configPath  = rootFlagSet.String("config", config.DefaultPath(), "path to config toml file (env: WIFIWAND_CONFIG)")
		verbose     = rootFlagSet.Bool("verbose", false, "enable debug logging")
		version     = rootFlagSet.Bool("version", false, "display version")
	)

	var adapter wifi.Adapter
	var orch *wifi.Orchestrator
	var cfg config.Config
	var logger *slog.Logger

	statusFlagSet := flag.NewFlagSet("status", flag.ExitOnError)
	statusJSON := statusFlagSet.Bool("json", false, "output in JSON format")
	statusYAML := statusFlagSet.Bool("yaml", false, "output in YAML format")
	statusCmd := &ffcli.Command{
		Name:      "status",
		ShortHelp: "Show radio, network, addressing, and internet status",
		FlagSet:   statusFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			format, err := pickFormat(*statusJSON, *statusYAML)
			if err != nil {
				return err
			}
			return runStatus(ctx, os.Stdout, format, adapter, cfg.Prober())
		},
	}

	networksFlagSet := flag.NewFlagSet("networks", flag.ExitOnError)
	networksJSON := networksFlagSet.Bool("json", false, "output in JSON format")
	networksYAML := networksFlagSet.Bool("yaml", false, "output in YAML format")
	networksCmd := &ffcli.Command{
		Name:      "networks",
		ShortHelp: "List visible wifi networks, strongest first",
		FlagSet:   networksFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			format, err := pickFormat(*networksJSON, *networksYAML)
			if err != nil {
				return err
			}
			return runNetworks(ctx, os.Stdout, format, adapter)
		},
	}

	profilesFlagSet := flag.NewFlagSet("profiles", flag.ExitOnError)
	profilesJSON := profilesFlagSet.Bool("json", false, "output in JSON format")
	profilesYAML := profilesFlagSet.Bool("yaml", false, "output in YAML format")
	profilesCmd := &ffcli.Command{
		Name:      "profiles",
		ShortHelp: "List saved network profiles",
		FlagSet:   profilesFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			format, err := pickFormat(*profilesJSON, *profilesYAML)
			if err != nil {
				return err
			}
			return runProfiles(ctx, os.Stdout, format, adapter)
		},
	}

	onCmd := &ffcli.Command{
		Name:      "on",
		ShortHelp: "Turn the wifi radio on",
		Exec: func(ctx context.Context, args []string) error {
			return runRadio(ctx, os.Stdout, adapter, true)
		},
	}
	offCmd := &ffcli.Command{
		Name:      "off",
		ShortHelp: "Turn the wifi radio off",
		Exec: func(ctx context.Context, args []string) error {
			return runRadio(ctx, os.Stdout, adapter, false)
		},
	}

	connectCmd := &ffcli.Command{
		Name:       "connect",
		ShortUsage: "wifiwand connect <ssid> [password]",
		ShortHelp:  "Connect to a wifi network",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("connect requires an ssid")
			}
			password := ""
			if len(args) > 1 {
				password = args[1]
			}
			return runConnect(ctx, os.Stdout, orch, args[0], password)
		},
	}

	disconnectCmd := &ffcli.Command{
		Name:      "disconnect",
		ShortHelp: "Disconnect from the current network",
		Exec: func(ctx context.Context, args []string) error {
			return runDisconnect(ctx, os.Stdout, orch)
		},
	}

	forgetCmd := &ffcli.Command{
		Name:       "forget",
		ShortUsage: "wifiwand forget <name> [name...]",
		ShortHelp:  "Remove saved network profiles",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("forget requires at least one profile name")
			}
			return runForget(ctx, os.Stdout, adapter, args)
		},
	}

	passwordFlagSet := flag.NewFlagSet("password", flag.ExitOnError)
	passwordJSON := passwordFlagSet.Bool("json", false, "output in JSON format")
	passwordYAML := passwordFlagSet.Bool("yaml", false, "output in YAML format")
	passwordCmd := &ffcli.Command{
		Name:       "password",
		ShortUsage: "wifiwand password <name>",
		ShortHelp:  "Show the stored password for a saved profile",
		FlagSet:    passwordFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("password requires a profile name")
			}
			format, err := pickFormat(*passwordJSON, *passwordYAML)
			if err != nil {
				return err
			}
			return runPassword(ctx, os.Stdout, format, adapter, args[0])
		},
	}

	dnsFlagSet := flag.NewFlagSet("dns", flag.ExitOnError)
	dnsJSON := dnsFlagSet.Bool("json", false, "output in JSON format")
	dnsYAML := dnsFlagSet.Bool("yaml", false, "output in YAML format")
	dnsCmd := &ffcli.Command{
		Name:       "dns",
		ShortUsage: "wifiwand dns [server...|clear]",
		ShortHelp:  "Show, set, or clear DNS servers",
		FlagSet:    dnsFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			format, err := pickFormat(*dnsJSON, *dnsYAML)
			if err != nil {
				return err
			}
			return runDNS(ctx, os.Stdout, format, adapter, args)
		},
	}

	cycleCmd := &ffcli.Command{
		Name:      "cycle",
		ShortHelp: "Power-cycle the radio, restoring network and DNS state",
		Exec: func(ctx context.Context, args []string) error {
			return runCycle(ctx, os.Stdout, adapter, logger)
		},
	}

	monitorFlagSet := flag.NewFlagSet("monitor", flag.ExitOnError)
	monitorInterval := monitorFlagSet.Duration("interval", 0, "poll interval (default from config)")
	monitorLogFile := monitorFlagSet.String("log-file", "", "append events to this file (default from config)")
	monitorHook := monitorFlagSet.String("hook", "", "run this shell command for each event (default from config)")
	monitorHookTimeout := monitorFlagSet.Duration("hook-timeout", -1, "kill the hook after this long, 0 to disable (default from config)")
	monitorCmd := &ffcli.Command{
		Name:      "monitor",
		ShortHelp: "Watch for status changes and report them",
		FlagSet:   monitorFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			interval := *monitorInterval
			if interval <= 0 {
				interval = cfg.Monitor.PollInterval.Duration
			}
			logFile := *monitorLogFile
			if logFile == "" {
				logFile = cfg.Monitor.EventLogFile
			}
			hook := *monitorHook
			if hook == "" {
				hook = cfg.Monitor.HookCommand
			}
			hookTimeout := *monitorHookTimeout
			if hookTimeout < 0 {
				hookTimeout = cfg.Monitor.HookTimeout.Duration
			}
			return runMonitor(ctx, os.Stdout, adapter, cfg.Prober(), logger, interval, logFile, hook, hookTimeout)
		},
	}

	root := &ffcli.Command{
		ShortUsage: "wifiwand [flags] <subcommand> [args...]",
		FlagSet:    rootFlagSet,
		Subcommands: []*ffcli.Command{
			statusCmd, networksCmd, profilesCmd, onCmd, offCmd, connectCmd,
			disconnectCmd, forgetCmd, passwordCmd, dnsCmd, cycleCmd, monitorCmd,
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	// Parse root flags first so logging and config are set up before the
	// subcommand runs. root.Run parses them again, which is fine.
	err := ff.Parse(rootFlagSet, os.Args[1:],
		ff.WithEnvVarPrefix("WIFIWAND"),
		ff.WithIgnoreUndefined(true),
	)
	if err != nil {
		if err == flag.ErrHelp {
			root.FlagSet.Usage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *version {
		fmt.Println(Version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err = config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	adapter, err = GetAdapter(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	orch = wifi.NewOrchestrator(adapter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Run(ctx); err != nil {
		if err == flag.ErrHelp {
			root.FlagSet.Usage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
