package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/turkoid/zipadeedoodah/internal/config"
	"github.com/turkoid/zipadeedoodah/internal/logging"
	"github.com/turkoid/zipadeedoodah/internal/tui"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "Path to config file")
	envFlag := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err == nil {
		err = settings.ApplyEnv(*envFlag)
	}
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The UI owns the terminal, so logs only go to a file when one is set.
	closer, err := logging.Setup(logging.Options{
		Service: "zipadeedoodah-tui",
		RunID:   uuid.NewString(),
		Level:   settings.LogLevel,
		File:    settings.LogFile,
		Stderr:  io.Discard,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
