// Command console is a terminal admin console for the doctor directory. It
// talks to the doctor service over its REST API.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/duynhne/doctor-service/config"
	"github.com/duynhne/doctor-service/internal/client"
	"github.com/duynhne/doctor-service/internal/console"
	"github.com/duynhne/doctor-service/internal/view"
	"github.com/duynhne/doctor-service/middleware"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "console:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	// The terminal belongs to bubbletea, so logs go to a file.
	logPath := os.Getenv("CONSOLE_LOG_FILE")
	if logPath == "" {
		logPath = "doctor-console.log"
	}
	logger, err := middleware.NewFileLogger(cfg.Logging, logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	api := client.NewDoctorClient(cfg.DoctorAPI.BaseURL, cfg.GetDoctorAPITimeoutDuration(),
		client.WithToken(os.Getenv("DOCTOR_API_TOKEN")),
	)

	var p *tea.Program
	notifier := view.NotifierFunc(func(n view.Notification) {
		view.LogNotifier{Logger: logger}.Notify(n)
		if p != nil {
			p.Send(console.NoticeMsg(n))
		}
	})

	dir := view.NewDirectory(api, view.NewTermStore(""), notifier,
		view.WithPageSize(cfg.Directory.PageSize),
		view.WithDebounce(cfg.GetDebounceDuration()),
		view.WithLogger(logger),
	)
	defer dir.Close()

	profile := view.NewProfile(api, logger)

	p = tea.NewProgram(console.NewModel(dir, profile), tea.WithAltScreen())
	dir.OnChange(func() { p.Send(console.RefreshMsg{}) })

	logger.Info("Console started",
		zap.String("api", cfg.DoctorAPI.BaseURL),
		zap.Int("page_size", cfg.Directory.PageSize),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	logger.Info("Console stopped")
	return nil
}
