// Command regmap-cli is an interactive register-map console.
//
// It connects to a device over Modbus TCP or RTU (or a simulated
// in-memory register bank), binds a register-map profile to the
// connection and opens a readline console for reading fields, writing
// fields and staging batched writes.
//
// Usage:
//
//	regmap-cli [flags]
//
// Flags:
//
//	-profile string    Register-map profile: builtin name or YAML path (default "power-meter")
//	-config string     Config file path (default ~/.config/regmap/cli.toml)
//	-addr string       Modbus TCP address (host or host:port)
//	-port int          Modbus TCP port when -addr has none (default 502)
//	-serial string     Serial device path for Modbus RTU (e.g. /dev/ttyUSB0)
//	-baud int          Serial baud rate (default 19200)
//	-slave int         Modbus slave/unit ID (default 1)
//	-simulate          Run against a simulated register bank
//	-trace string      Append traffic events to a CBOR log file (.rlog)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Explore the builtin power meter profile offline
//	regmap-cli -simulate
//
//	# Connect to a Modbus TCP power meter, capturing traffic
//	regmap-cli -profile power-meter -addr 192.168.1.50 -trace meter.rlog
//
//	# Modbus RTU over a serial line
//	regmap-cli -profile storage-controller -serial /dev/ttyUSB0 -baud 9600 -slave 2
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/regmap-proto/regmap-go/cmd/regmap-cli/interactive"
	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/frame"
	"github.com/regmap-proto/regmap-go/pkg/profile"
	"github.com/regmap-proto/regmap-go/pkg/reglog"
	"github.com/regmap-proto/regmap-go/pkg/schema"
	"github.com/regmap-proto/regmap-go/pkg/transport"
)

// Config holds the console configuration.
type Config struct {
	Profile    string
	ConfigFile string
	Addr       string
	Port       int
	Serial     string
	Baud       int
	Slave      int
	Simulate   bool
	Trace      string
	LogLevel   string
}

var config Config

func init() {
	flag.StringVar(&config.Profile, "profile", "power-meter", "Register-map profile: builtin name or YAML path")
	flag.StringVar(&config.ConfigFile, "config", "", "Config file path (default ~/.config/regmap/cli.toml)")
	flag.StringVar(&config.Addr, "addr", "", "Modbus TCP address (host or host:port)")
	flag.IntVar(&config.Port, "port", 502, "Modbus TCP port when -addr has none")
	flag.StringVar(&config.Serial, "serial", "", "Serial device path for Modbus RTU")
	flag.IntVar(&config.Baud, "baud", 0, "Serial baud rate (default 19200)")
	flag.IntVar(&config.Slave, "slave", 1, "Modbus slave/unit ID")
	flag.BoolVar(&config.Simulate, "simulate", false, "Run against a simulated register bank")
	flag.StringVar(&config.Trace, "trace", "", "Append traffic events to a CBOR log file")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	// Flags set explicitly on the command line win over the config file.
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	if err := applyFileConfig(&config, setFlags); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging
	setupLogging(config.LogLevel)

	if err := validateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("Register Map Console")
	log.Println("====================")
	log.Printf("Profile: %s", config.Profile)

	// Resolve the register-map profile
	prof, err := resolveProfile(config.Profile)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}

	s, err := prof.Resolve()
	if err != nil {
		log.Fatalf("Failed to resolve profile: %v", err)
	}

	c, err := codec.New(s)
	if err != nil {
		log.Fatalf("Failed to build codec: %v", err)
	}

	unit, err := prof.FrameUnit()
	if err != nil {
		log.Fatalf("Failed to read profile unit: %v", err)
	}

	log.Printf("Layout: %s (%d fields, %d bytes, %s-addressed)",
		s.Name(), s.Len(), s.TotalSize(), unit)

	// Build the transport client
	client, err := buildClient(unit, c)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	log.Printf("Connected: %s", client.RemoteAddr())

	// Assemble the traffic logger
	trafficLogger, closeTrace, err := buildTrafficLogger(config.Trace, config.LogLevel)
	if err != nil {
		log.Fatalf("Failed to open trace log: %v", err)
	}
	defer closeTrace()

	if config.Trace != "" {
		log.Printf("Tracing register traffic to %s", config.Trace)
	}

	session, err := transport.NewSession(transport.SessionConfig{
		Client: client,
		Codec:  c,
		Logger: trafficLogger,
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	console, err := interactive.New(session, c)
	if err != nil {
		log.Fatalf("Failed to create console: %v", err)
	}

	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(console.Stdout())
	go console.Run(ctx, cancel)

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g. by the quit command)
	}

	cancel()

	if err := session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}

	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

func validateConfig() error {
	if config.Slave < 0 || config.Slave > 255 {
		return fmt.Errorf("slave ID must be 0-255, got %d", config.Slave)
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", config.Port)
	}
	if !config.Simulate && config.Addr == "" && config.Serial == "" {
		return fmt.Errorf("one of -addr, -serial or -simulate is required")
	}
	if config.Addr != "" && config.Serial != "" {
		return fmt.Errorf("-addr and -serial are mutually exclusive")
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", config.LogLevel)
	}
	return nil
}

// resolveProfile loads a profile by builtin name or YAML file path.
func resolveProfile(name string) (*profile.Profile, error) {
	if name == "" {
		return nil, fmt.Errorf("profile is required (-profile)")
	}

	// Anything that looks like a path loads from disk.
	if strings.ContainsAny(name, `/\`) ||
		strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return profile.Load(name)
	}

	p, err := profile.Builtin(name)
	if err != nil {
		if names, nerr := profile.BuiltinNames(); nerr == nil {
			return nil, fmt.Errorf("%w (builtin profiles: %s)", err, strings.Join(names, ", "))
		}
		return nil, err
	}
	return p, nil
}

// buildClient selects and opens the transport from the configuration.
func buildClient(unit frame.Unit, c *codec.Codec) (transport.Client, error) {
	switch {
	case config.Simulate:
		client, err := transport.NewMemoryClient(unit)
		if err != nil {
			return nil, err
		}
		if err := seedMemory(client, c); err != nil {
			return nil, fmt.Errorf("seeding simulated registers: %w", err)
		}
		return client, nil

	case config.Serial != "":
		return transport.NewModbusRTU(transport.ModbusConfig{
			Address:  config.Serial,
			SlaveID:  byte(config.Slave),
			BaudRate: config.Baud,
		})

	default:
		addr := config.Addr
		if !strings.Contains(addr, ":") {
			addr = net.JoinHostPort(addr, strconv.Itoa(config.Port))
		}
		return transport.NewModbusTCP(transport.ModbusConfig{
			Address: addr,
			SlaveID: byte(config.Slave),
		})
	}
}

// seedMemory fills the simulated register bank with synthetic values so
// reads return something to look at.
func seedMemory(client *transport.MemoryClient, c *codec.Codec) error {
	s := c.Schema()
	record := codec.NewRecord(s)
	for i, fld := range s.Fields() {
		if err := record.Set(fld.Key, seedValue(fld, i)); err != nil {
			return err
		}
	}

	image, err := c.Encode(record)
	if err != nil {
		return err
	}
	client.Preload(s.StartAddress(), image)
	return nil
}

// seedValue produces a synthetic value for a field. Integers stay small
// enough to fit every integer kind.
func seedValue(fld schema.Field, i int) any {
	switch {
	case fld.Kind == schema.KindBool:
		return true
	case fld.Kind.Float():
		return 100.0 + float64(i)*1.5
	default:
		return int64(i%50 + 1)
	}
}

// logWriter routes slog output through the stdlib logger's current
// writer, which main redirects through readline once the console is up.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	return log.Writer().Write(p)
}

// buildTrafficLogger assembles the session's traffic logger: a CBOR
// file logger when -trace is set, plus a console echo at debug level.
func buildTrafficLogger(tracePath, logLevel string) (reglog.Logger, func(), error) {
	var loggers []reglog.Logger
	closeFn := func() {}

	if tracePath != "" {
		fl, err := reglog.NewFileLogger(tracePath)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeFn = func() { _ = fl.Close() }
	}

	if logLevel == "debug" {
		echo := slog.New(slog.NewTextHandler(logWriter{}, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		loggers = append(loggers, reglog.NewSlogAdapter(echo))
	}

	switch len(loggers) {
	case 0:
		return reglog.Discard, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return reglog.NewMultiLogger(loggers...), closeFn, nil
	}
}
