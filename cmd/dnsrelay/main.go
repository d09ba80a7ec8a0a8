package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	relay "github.com/nwillett/dnsrelay"
)

type options struct {
	port          int
	forwarder     string
	configPath    string
	workers       int
	logLevel      string
	syslogAddress string
	syslogNetwork string
	syslogTag     string
}

func main() {
	var opt options
	cmd := &cobra.Command{
		Use:   "dnsrelay",
		Short: "Caching, recursive-forwarding DNS resolver",
		Long: `dnsrelay is a caching DNS forwarder.

It listens for DNS queries over UDP, answers from a local cache when a
fresh record set is available, and otherwise forwards the query verbatim
to a configured upstream resolver, caches the reply, and relays it back
to the client.`,
		Example: `  dnsrelay -p 53 -f 8.8.8.8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opt)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVarP(&opt.port, "port", "p", 53, "listener port")
	cmd.Flags().StringVarP(&opt.forwarder, "forwarder", "f", "", "upstream resolver host[:port]")
	cmd.Flags().StringVarP(&opt.configPath, "config", "c", "", "optional TOML config file")
	cmd.Flags().IntVarP(&opt.workers, "workers", "w", relay.DefaultWorkers, "worker pool size")
	cmd.Flags().StringVarP(&opt.logLevel, "log-level", "l", "info", "log level: panic,fatal,error,warn,info,debug,trace")
	cmd.Flags().StringVar(&opt.syslogAddress, "syslog-address", "", "optional syslog sink address (enables syslog logging)")
	cmd.Flags().StringVar(&opt.syslogNetwork, "syslog-network", "udp", "syslog transport")
	cmd.Flags().StringVar(&opt.syslogTag, "syslog-tag", "dnsrelay", "syslog tag")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opt options) error {
	file, err := loadConfig(opt.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Config file values fill in anything the corresponding flag wasn't
	// explicitly set on the command line; flags always win (SPEC_FULL.md §4.7).
	if !cmd.Flags().Changed("port") && file.Port != 0 {
		opt.port = file.Port
	}
	if !cmd.Flags().Changed("forwarder") && file.Forwarder != "" {
		opt.forwarder = file.Forwarder
	}
	if !cmd.Flags().Changed("workers") && file.Workers != 0 {
		opt.workers = file.Workers
	}
	if !cmd.Flags().Changed("log-level") && file.LogLevel != "" {
		opt.logLevel = file.LogLevel
	}
	if !cmd.Flags().Changed("syslog-address") && file.Syslog.Address != "" {
		opt.syslogAddress = file.Syslog.Address
	}
	if !cmd.Flags().Changed("syslog-network") && file.Syslog.Network != "" {
		opt.syslogNetwork = file.Syslog.Network
	}
	if !cmd.Flags().Changed("syslog-tag") && file.Syslog.Tag != "" {
		opt.syslogTag = file.Syslog.Tag
	}

	if opt.forwarder == "" {
		return fmt.Errorf("no upstream forwarder configured: pass -f/--forwarder or set it in the config file")
	}

	level, err := logrus.ParseLevel(opt.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opt.logLevel, err)
	}
	relay.Log.SetLevel(level)

	if opt.syslogAddress != "" {
		sink, err := relay.NewSyslogSink(relay.SyslogOptions{
			Network: opt.syslogNetwork,
			Address: opt.syslogAddress,
			Tag:     opt.syslogTag,
		})
		if err != nil {
			return fmt.Errorf("connecting to syslog: %w", err)
		}
		defer sink.Close()
		relay.Log.AddHook(&syslogHook{sink: sink})
	}

	forwarder, err := relay.NewForwarder(opt.forwarder)
	if err != nil {
		return fmt.Errorf("resolving forwarder address: %w", err)
	}

	cache := relay.NewCache("main")
	addr := fmt.Sprintf(":%d", opt.port)
	server := relay.NewServer("main", addr, cache, forwarder, relay.ServerOptions{Workers: opt.workers})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		relay.Log.Info("stopping")
		cancel()
	}()

	relay.Log.WithField("addr", addr).WithField("forwarder", opt.forwarder).Info("starting dnsrelay")
	return server.Run(ctx)
}

// syslogHook relays every logrus entry to a SyslogSink, in the teacher
// package's style of wrapping an external sink as a decorator rather than
// reimplementing logrus's own formatting.
type syslogHook struct {
	sink *relay.SyslogSink
}

func (h *syslogHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *syslogHook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}
	h.sink.Write(line)
	return nil
}
