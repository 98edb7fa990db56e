package main

import (
	"fmt"
	"os"

	"todolist/internal/client"
	"todolist/internal/config"
	"todolist/internal/logging"
	"todolist/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "todo:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	// stdout belongs to the UI, so logs only go to a file when one is set.
	var logger *log.Logger
	if cfg.LogFile != "" {
		var file *os.File
		logger, file, err = logging.NewFile(cfg.LogFile, logging.Options{Prefix: "todo"})
		if err != nil {
			return err
		}
		defer file.Close()
	} else {
		logger = logging.Discard()
	}

	api, err := client.New(cfg.APIURL, cfg.HTTPTimeout.Duration)
	if err != nil {
		return err
	}
	logger.Info("starting", "api", cfg.APIURL)

	model := tui.New(api, tui.Options{
		ErrorTimeout: cfg.ErrorTimeout.Duration,
		Styles:       client.DefaultStyles(),
		Logger:       logger,
	})

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
