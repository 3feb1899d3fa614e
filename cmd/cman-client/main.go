package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/beka-birhanu/cman/client"
	"github.com/beka-birhanu/cman/config"
	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/game/maze"
	logger "github.com/beka-birhanu/cman/infrastruture/log"
	"github.com/beka-birhanu/cman/udp"
	"github.com/gdamore/tcell/v2"
)

const (
	exitUsage      = 2
	defaultLogFile = "cman-client.log"
)

type options struct {
	role    game.Role
	addr    string
	port    int
	mapPath string
}

// parseArgs accepts flags before and after the two positional arguments.
func parseArgs(args []string, cfg config.Config, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("cman-client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: cman-client [--port N] [--map FILE] <watcher|cman|spirit> <server-address>")
		fs.PrintDefaults()
	}
	port := fs.Int("port", cfg.Port, "UDP port of the server")
	mapPath := fs.String("map", cfg.MapPath, "path of the map file")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if len(positional) != 2 {
		fs.Usage()
		return nil, fmt.Errorf("expected role and address, got %d arguments", len(positional))
	}
	role, ok := game.ParseRole(positional[0])
	if !ok {
		fs.Usage()
		return nil, fmt.Errorf("unknown role %q", positional[0])
	}
	if *port <= 0 || *port > 0xFFFF {
		return nil, fmt.Errorf("invalid port %d", *port)
	}

	return &options{role: role, addr: positional[1], port: *port, mapPath: *mapPath}, nil
}

func dial(opts *options) (*udp.SocketManager, error) {
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(opts.addr, fmt.Sprint(opts.port)))
	if err != nil {
		return nil, err
	}
	return udp.Dial(raddr.AddrPort())
}

func main() {
	cfg := config.Load()
	opts, err := parseArgs(os.Args[1:], cfg, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = defaultLogFile
	}
	appLogger, err := logger.New("CLIENT", config.ColorYellow, os.Stdout,
		logger.WithFileOnly(logFile),
		logger.WithLevel(cfg.LogLevel),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = appLogger.Sync() }()

	m, err := maze.LoadFile(opts.mapPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Loading map %s: %v\n", opts.mapPath, err)
		os.Exit(1)
	}

	socket, err := dial(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connecting to %s:%d: %v\n", opts.addr, opts.port, err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		_ = socket.Close()
		fmt.Fprintf(os.Stderr, "Opening terminal: %v\n", err)
		os.Exit(1)
	}
	renderer, err := client.NewTerminalRenderer(screen)
	if err != nil {
		_ = socket.Close()
		fmt.Fprintf(os.Stderr, "Initializing terminal: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	keys := &client.KeySlot{}
	go renderer.ReadKeys(ctx, keys)

	c, err := client.New(&client.Config{
		Socket:     socket,
		Map:        m,
		Role:       opts.role,
		Renderer:   renderer,
		Keys:       keys,
		Logger:     appLogger,
		TickPeriod: cfg.ClientTickPeriod,
	})
	if err != nil {
		stop()
		renderer.Close()
		_ = socket.Close()
		fmt.Fprintf(os.Stderr, "Creating client: %v\n", err)
		os.Exit(1)
	}

	appLogger.Info(fmt.Sprintf("joining %s:%d as %s", opts.addr, opts.port, opts.role))
	res := c.Run(ctx)

	stop()
	renderer.Close()
	_ = socket.Close()
	fmt.Println(res.Message)
	_ = appLogger.Sync()
	os.Exit(res.Code)
}
