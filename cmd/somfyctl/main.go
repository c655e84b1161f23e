// somfyctl controls Somfy PoE motors from the command line.
//
// Usage:
//
//	somfyctl [options] <command> [args]
//
// Commands:
//
//	discover        List motors announcing on the local network
//	up              Move the motor to its upper limit (open)
//	down            Move the motor to its lower limit (closed)
//	stop            Halt any movement in progress
//	wink            Jog the motor for physical identification
//	to <position>   Move to a position, 0 (open) to 100 (closed)
//	position        Print the current position
//	info            Print device information
//	watch           Poll and print the position until interrupted
//
// Options:
//
//	-host      Motor address (required for all commands except discover)
//	-pin       Device PIN
//	-timeout   Discovery browse timeout (default: 10s)
//	-interval  Watch polling interval (default: 5s)
//	-debug     Enable debug logging
//
// Example:
//
//	somfyctl discover
//	somfyctl -host 192.168.1.50 -pin 1234 to 75
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pion/logging"

	"github.com/peter-dolkens/somfy-poe/pkg/discovery"
	"github.com/peter-dolkens/somfy-poe/pkg/motor"
	"github.com/peter-dolkens/somfy-poe/pkg/poll"
	"github.com/peter-dolkens/somfy-poe/pkg/protocol"
)

// options holds the parsed CLI flags.
type options struct {
	host     string
	pin      string
	timeout  time.Duration
	interval time.Duration
	debug    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.host, "host", "", "Motor address (IP or hostname)")
	flag.StringVar(&opts.pin, "pin", "", "Device PIN")
	flag.DurationVar(&opts.timeout, "timeout", discovery.DefaultBrowseTimeout, "Discovery browse timeout")
	flag.DurationVar(&opts.interval, "interval", poll.DefaultInterval, "Watch polling interval")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(2)
	}

	if err := run(opts, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "somfyctl: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [args]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  discover        List motors announcing on the local network\n")
	fmt.Fprintf(os.Stderr, "  up              Move the motor to its upper limit (open)\n")
	fmt.Fprintf(os.Stderr, "  down            Move the motor to its lower limit (closed)\n")
	fmt.Fprintf(os.Stderr, "  stop            Halt any movement in progress\n")
	fmt.Fprintf(os.Stderr, "  wink            Jog the motor for physical identification\n")
	fmt.Fprintf(os.Stderr, "  to <position>   Move to a position, 0 (open) to 100 (closed)\n")
	fmt.Fprintf(os.Stderr, "  position        Print the current position\n")
	fmt.Fprintf(os.Stderr, "  info            Print device information\n")
	fmt.Fprintf(os.Stderr, "  watch           Poll and print the position until interrupted\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func run(opts options, command string, args []string) error {
	loggerFactory := newLoggerFactory(opts.debug)

	if command == "discover" {
		return runDiscover(opts, loggerFactory)
	}

	if opts.host == "" {
		return fmt.Errorf("command %q requires -host", command)
	}

	c, err := motor.NewController(motor.Config{
		Host:          opts.host,
		PIN:           opts.pin,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return err
	}

	if command == "watch" {
		return runWatch(opts, c, loggerFactory)
	}

	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Disconnect()

	switch command {
	case "up":
		return c.MoveUp()
	case "down":
		return c.MoveDown()
	case "stop":
		return c.Stop()
	case "wink":
		return c.Wink()
	case "to":
		if len(args) != 1 {
			return fmt.Errorf("usage: to <position>")
		}
		position, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[0], err)
		}
		return c.MoveToPosition(position)
	case "position":
		pos, err := c.Position()
		if err != nil {
			return err
		}
		printPosition(pos)
		return nil
	case "info":
		info, err := c.Info()
		if err != nil {
			return err
		}
		fmt.Printf("name:     %s\n", info.Name)
		fmt.Printf("model:    %s\n", info.Model)
		fmt.Printf("firmware: %s\n", info.Firmware)
		if info.Hardware != "" {
			fmt.Printf("hardware: %s\n", info.Hardware)
		}
		if info.MAC != "" {
			fmt.Printf("mac:      %s\n", info.MAC)
		}
		fmt.Printf("targetID: %s\n", c.TargetID())
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// runDiscover browses the local network and lists every motor found.
func runDiscover(opts options, loggerFactory logging.LoggerFactory) error {
	resolver, err := discovery.NewResolver(discovery.ResolverConfig{
		BrowseTimeout: opts.timeout,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stderr, "browsing for motors (%s)...\n", opts.timeout)
	motors, err := resolver.Discover(ctx)
	if err != nil {
		return err
	}
	if len(motors) == 0 {
		fmt.Println("no motors found")
		return nil
	}

	for _, m := range motors {
		fmt.Printf("%-20s %-15s target=%s model=%q firmware=%s\n",
			m.Name(), m.Addr(), m.TargetID(), m.Model(), m.Firmware())
	}
	return nil
}

// runWatch polls the motor position until interrupted. The poller owns
// connect and reconnect; a failed cycle is reported and retried.
func runWatch(opts options, c *motor.Controller, loggerFactory logging.LoggerFactory) error {
	p, err := poll.NewPoller(poll.Config{
		Client:        c,
		Interval:      opts.interval,
		LoggerFactory: loggerFactory,
		OnUpdate:      printPosition,
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := p.Run(ctx); err != context.Canceled {
		return err
	}
	return nil
}

func printPosition(pos *protocol.Position) {
	fmt.Printf("position=%.1f direction=%s status=%s\n", pos.Value, pos.Direction, pos.Status)
}

// newLoggerFactory builds the CLI logger: warnings only by default,
// full trace with -debug.
func newLoggerFactory(debug bool) logging.LoggerFactory {
	factory := logging.NewDefaultLoggerFactory()
	factory.Writer = os.Stderr
	if debug {
		factory.DefaultLogLevel = logging.LogLevelDebug
	} else {
		factory.DefaultLogLevel = logging.LogLevelWarn
	}
	return factory
}
