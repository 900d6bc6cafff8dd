// Command rfidctl is a small example program wiring every dialect and
// transport variant end to end: it connects a single Reader Session,
// registers it with the Receive Multiplexer, issues one command, and
// prints whatever the reader reports back until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/uhfreader/sdk/catalog"
	"github.com/uhfreader/sdk/dialect"
	"github.com/uhfreader/sdk/mux"
	"github.com/uhfreader/sdk/reader"
	"github.com/uhfreader/sdk/rfidtrace"
	"github.com/uhfreader/sdk/transport"
)

type cliConfig struct {
	dialectName string
	connectType string
	port        string
	baud        int
	remoteAddr  string
	remotePort  int
	command     string
	language    string
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if cfg.language != "" {
		catalog.SetDefaultLanguage(cfg.language)
	}

	codec, err := dialectFor(cfg.dialectName)
	if err != nil {
		log.Fatalf("select dialect: %v", err)
	}

	tcfg, err := transportConfigFor(cfg)
	if err != nil {
		log.Fatalf("build transport config: %v", err)
	}

	// runID correlates this invocation's log lines, the same role
	// the reference NETCONF client gives a per-RPC UUID.
	runID := uuid.New().String()

	s := reader.NewSession(reader.Config{Dialect: codec.Kind()}, codec)
	s.SetCallback(&reader.CallbackSet{
		NotifyRecvTags: func(key string, payload []byte, offset int) {
			log.Printf("[%s] %s: tag notification at offset %d (%d bytes)", runID, key, offset, len(payload))
		},
		NotifyStartInventory: statusLogger(runID, "start_inventory"),
		NotifyStopInventory:  statusLogger(runID, "stop_inventory"),
		NotifyReset:          statusLogger(runID, "reset"),
		NotifyInventoryOnce:  statusLogger(runID, "inventory_once"),
		NotifyReadTagBlock: func(key string, status byte, data []byte) {
			log.Printf("[%s] %s: read_tag_block status=%s (%d bytes)", runID, key, catalog.MessageFor(int(status), cfg.language), len(data))
		},
		NotifyWriteTagBlock: statusLogger(runID, "write_tag_block"),
		NotifyLockTag:       statusLogger(runID, "lock_tag"),
		NotifyKillTag:       statusLogger(runID, "kill_tag"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = rfidtrace.With(ctx, rfidtrace.DiagnosticTrace)

	if err := s.Connect(ctx, tcfg); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer s.Release()

	m := mux.New()
	m.SetTrace(rfidtrace.DiagnosticTrace)
	m.Add(s)
	m.Start()
	defer m.Stop()

	if err := runCommand(ctx, s, cfg.command); err != nil {
		log.Fatalf("%s: %v", cfg.command, err)
	}

	<-ctx.Done()
}

func statusLogger(runID, op string) func(string, byte) {
	return func(key string, status byte) {
		log.Printf("[%s] %s: %s status=%s", runID, key, op, catalog.MessageFor(int(status), ""))
	}
}

func runCommand(ctx context.Context, s *reader.Session, command string) error {
	switch command {
	case "inventory":
		return s.Inventory(ctx)
	case "inventory-once":
		return s.InventoryOnce(ctx)
	case "stop":
		return s.Stop(ctx)
	case "reset":
		return s.Reset(ctx)
	case "":
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func parseConfig(args []string) (cliConfig, error) {
	cfg := cliConfig{}
	fs := flag.NewFlagSet("rfidctl", flag.ContinueOnError)
	fs.StringVar(&cfg.dialectName, "dialect", "general", "wire dialect: general|r2000|uhf|m")
	fs.StringVar(&cfg.connectType, "connect", "tcp", "transport: serial|udp|tcp")
	fs.StringVar(&cfg.port, "port", "/dev/ttyUSB0", "serial port name (connect=serial)")
	fs.IntVar(&cfg.baud, "baud", 115200, "serial baud rate (connect=serial)")
	fs.StringVar(&cfg.remoteAddr, "addr", "127.0.0.1", "reader address (connect=udp|tcp)")
	fs.IntVar(&cfg.remotePort, "remote-port", 6000, "reader port (connect=udp|tcp)")
	fs.StringVar(&cfg.command, "command", "reset", "command to issue: inventory|inventory-once|stop|reset|\"\"")
	fs.StringVar(&cfg.language, "language", "", "status message language (en, bg, ru, de, fr, zh)")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

func dialectFor(name string) (dialect.Codec, error) {
	switch name {
	case "general":
		return dialect.NewGeneral(), nil
	case "r2000":
		return dialect.NewR2000(), nil
	case "uhf":
		return dialect.NewUHF(), nil
	case "m":
		return dialect.NewM(), nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

func transportConfigFor(cfg cliConfig) (transport.Config, error) {
	switch cfg.connectType {
	case "serial":
		return transport.Config{
			ConnectType: transport.ConnectSerial,
			PortName:    cfg.port,
			BaudRate:    cfg.baud,
		}, nil
	case "udp":
		return transport.Config{
			ConnectType: transport.ConnectUDP,
			RemoteAddr:  cfg.remoteAddr,
			RemotePort:  cfg.remotePort,
		}, nil
	case "tcp":
		return transport.Config{
			ConnectType: transport.ConnectTCPClient,
			RemoteAddr:  cfg.remoteAddr,
			RemotePort:  cfg.remotePort,
		}, nil
	default:
		return transport.Config{}, fmt.Errorf("unknown connect type %q", cfg.connectType)
	}
}
