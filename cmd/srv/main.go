package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"coursemark.dev/srv"
)

var flagListenAddr = flag.String("listen", ":8000", "address to listen on")
var flagDataDir = flag.String("data", "data", "path to the route data directory")
var flagDBPath = flag.String("db", "db.sqlite3", "path to the sqlite database")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	server, err := srv.New(*flagDBPath, *flagDataDir)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	slog.Info("serving route data", "dir", *flagDataDir)

	return server.Serve(*flagListenAddr)
}
