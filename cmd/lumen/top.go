package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/lumen/internal/ipc"
	"github.com/1broseidon/lumen/internal/tui"
)

func runTop(args []string) int {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file the settings tab edits (default: ~/.config/lumen/config.yaml)")
	socket := fs.String("socket", "", "Inspector socket path (default: $LUMEN_SOCKET or the runtime dir)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumen top [--config PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Live dashboard for the engine started with 'lumen run'.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client := ipc.NewClient()
	if *socket != "" {
		client = ipc.NewClientWithSocket(*socket)
	}

	if err := tui.Run(tui.Options{ConfigPath: *configPath, Inspector: client, StartTab: tui.TabEngine}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
