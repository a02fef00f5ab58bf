package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/term"

	"github.com/1broseidon/lumen/internal/app"
	"github.com/1broseidon/lumen/internal/config"
	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/ipc"
	"github.com/1broseidon/lumen/internal/tracelog"
	"github.com/1broseidon/lumen/internal/window"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "vsync":
		os.Exit(runVSync(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "top":
		os.Exit(runTop(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lumen <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open the engine window and run the frame loop")
	fmt.Fprintln(w, "  status              Show the running engine's status")
	fmt.Fprintln(w, "  vsync on|off        Switch vertical sync")
	fmt.Fprintln(w, "  resize W H          Resize the off-screen framebuffer (0 0 follows the window)")
	fmt.Fprintln(w, "  close               Close the engine window")
	fmt.Fprintln(w, "  top                 Interactive dashboard for the running engine")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config edit         Edit configuration interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'lumen <command> --help' for command-specific options.")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newTrace(cfg *config.Config) (*tracelog.Logger, error) {
	lc := cfg.GetLoggingConfig()
	return tracelog.New(tracelog.Config{
		Enabled:   lc.TraceEvents,
		Level:     tracelog.ParseLevel(lc.Level),
		FilePath:  lc.File,
		MaxSizeMB: lc.MaxSizeMB,
		MaxFiles:  lc.MaxFiles,
	})
}

// fatalf is log.Fatalf outside tests.
var fatalf = log.Fatalf

// exitPlatformInit records err in the trace and closes it before exiting.
// Deferred calls do not run past os.Exit.
func exitPlatformInit(trace *tracelog.Logger, err error) {
	trace.Record(tracelog.LevelError, "PLATFORM_INIT", map[string]any{"error": err.Error()})
	trace.Close()
	fatalf("Failed to start window system: %v", err)
}

// echoWidth is the column width for --echo-events lines.
func echoWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

func formatEcho(frame uint64, e event.Event, width int) string {
	line := fmt.Sprintf("[%6d] %-22s %s", frame, e.Categories().String(), e.String())
	return tracelog.Truncate(line, width)
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/lumen/config.yaml)")
	backendName := fs.String("backend", "", "Window system backend: x11 or headless (default: from config)")
	frames := fs.Uint64("frames", 0, "Exit after N frames (0: run until the window closes)")
	echo := fs.Bool("echo-events", false, "Print every event to stdout")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumen run [--config PATH] [--backend NAME] [--frames N] [--echo-events]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the engine window and run the frame loop until it is closed.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *backendName != "" {
		cfg.Backend = *backendName
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	logger := newLogger(cfg)
	trace, err := newTrace(cfg)
	if err != nil {
		log.Printf("Warning: failed to open event trace: %v", err)
		trace = nil
	}
	defer trace.Close()

	opts := []app.Option{app.WithLogger(logger), app.WithTrace(trace)}
	if *echo {
		width := echoWidth()
		opts = append(opts, app.WithEventObserver(func(frame uint64, e event.Event) {
			fmt.Println(formatEcho(frame, e, width))
		}))
	}

	backend, err := app.NewBackend(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	boot := app.NewBootstrap(backend, logger)
	engine, err := app.New(cfg, boot, opts...)
	if err != nil {
		boot.Terminate()
		if errors.Is(err, window.ErrPlatformInit) {
			exitPlatformInit(trace, err)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer engine.Close()

	if cfg.Inspector.Enabled {
		srv, err := ipc.NewServer(engine, ipc.WithLogger(logger))
		if err == nil {
			err = srv.Start()
		}
		if err != nil {
			log.Printf("Warning: inspector disabled: %v", err)
		} else {
			defer srv.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx, *frames); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Info("frame loop finished", "frames", engine.Frames())
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumen status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show engine status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, st *ipc.StatusData) {
	fb := st.Framebuffer
	fmt.Fprintf(w, "backend:         %s\n", st.Backend)
	fmt.Fprintf(w, "title:           %s\n", st.Title)
	fmt.Fprintf(w, "window:          %dx%d\n", st.WindowWidth, st.WindowHeight)
	fmt.Fprintf(w, "vsync:           %v\n", st.VSync)
	fmt.Fprintf(w, "framebuffer:     %dx%d samples=%d follows_window=%v\n", fb.Width, fb.Height, fb.Samples, fb.FollowsWindow)
	fmt.Fprintf(w, "attachments:     color=%d depth=%d\n", fb.ColorAttachment, fb.DepthAttachment)
	if fb.Lost {
		fmt.Fprintln(w, "framebuffer_lost: true")
	}
	fmt.Fprintf(w, "frames:          %d\n", st.Frames)
	fmt.Fprintf(w, "uptime_seconds:  %d\n", st.UptimeSeconds)
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func runVSync(args []string) int {
	fs := flag.NewFlagSet("vsync", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumen vsync on|off")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	enabled, err := parseOnOff(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := ipc.NewClient().SetVSync(enabled); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseSize(ws, hs string) (uint32, uint32, error) {
	w, err := strconv.ParseUint(ws, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", ws)
	}
	h, err := strconv.ParseUint(hs, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", hs)
	}
	if (w == 0) != (h == 0) {
		return 0, 0, fmt.Errorf("width and height must both be zero or both be positive")
	}
	return uint32(w), uint32(h), nil
}

func runResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumen resize WIDTH HEIGHT")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resize the off-screen framebuffer. 0 0 makes it follow the window size.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	w, h, err := parseSize(fs.Arg(0), fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := ipc.NewClient().ResizeFramebuffer(w, h); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runClose(args []string) int {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumen close")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "close takes no arguments")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().CloseWindow(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
