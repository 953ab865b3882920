package main

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"borrowck/internal/driver"
	"borrowck/internal/pipeline"
	"borrowck/internal/ui"
)

type checkOutcome struct {
	report *driver.Report
	err    error
}

// runCheckWithUI checks paths while a Bubble Tea program draws progress.
// The program quits when the checker closes the event channel.
func runCheckWithUI(ctx context.Context, title string, paths []string, opts driver.Options) (*driver.Report, error) {
	files, err := driver.ListScripts(paths)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(files))
	for i, f := range files {
		labels[i] = filepath.ToSlash(f)
	}

	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = pipeline.FuncSink(func(ev pipeline.Event) {
			ev.File = filepath.ToSlash(ev.File)
			events <- ev
		})
		report, err := driver.CheckPaths(ctx, paths, optsCopy)
		outcomeCh <- checkOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, labels, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// после выхода программы (ctrl+c или ошибка) канал никто не читает
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
