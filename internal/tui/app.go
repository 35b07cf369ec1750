// Package tui is the terminal front end for a review session. The operator
// picks a kind for each document with the number keys, steps through the
// archive, and finishes by writing the renamed archive to disk.
package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/sessions"
	"github.com/JaimeStill/voidsort/pkg/formatting"
)

type mode int

const (
	modeSelect mode = iota
	modeDescribe
	modeDone
)

// Result describes the archive written by a finished session.
type Result struct {
	Path string
	Plan archive.Plan
}

// App is the bubbletea model for one review session.
type App struct {
	session *sessions.Session
	builder *archive.Builder
	outDir  string
	logger  *slog.Logger

	kinds []classifications.Kind
	mode  mode
	input textinput.Model

	status string
	err    error
	result *Result

	width int
}

// New creates the review model. The finished archive is written into outDir.
func New(session *sessions.Session, builder *archive.Builder, outDir string, logger *slog.Logger) *App {
	input := textinput.New()
	input.Placeholder = "work order description"
	input.CharLimit = 120
	input.Width = 48

	return &App{
		session: session,
		builder: builder,
		outDir:  outDir,
		logger:  logger.With("system", "tui"),
		kinds:   classifications.Kinds(),
		input:   input,
	}
}

// Result returns the written archive, or nil until the session is finished.
func (a *App) Result() *Result {
	return a.result
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.mode {
		case modeDescribe:
			return a.updateDescribe(msg)
		case modeDone:
			return a, tea.Quit
		default:
			return a.updateSelect(msg)
		}
	}

	return a, nil
}

func (a *App) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "esc":
		return a, tea.Quit
	case "n", "right", "enter":
		a.apply(a.session.Next())
		return a, nil
	case "p", "left", "backspace":
		a.apply(a.session.Prev())
		return a, nil
	case "f":
		a.finish()
		return a, nil
	}

	if k, ok := a.kindForKey(key); ok {
		if k.RequiresDescription() {
			return a, a.describe()
		}
		a.classify(k, "")
	}
	return a, nil
}

func (a *App) updateDescribe(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = modeSelect
		a.input.Blur()
		a.status = ""
		return a, nil
	case tea.KeyEnter:
		if a.classify(classifications.KindWorkOrder, a.input.Value()) {
			a.mode = modeSelect
			a.input.Blur()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// describe opens the description field, restoring the current document's
// description when it is already a work order.
func (a *App) describe() tea.Cmd {
	doc, _ := a.session.Current()

	a.input.Reset()
	if doc.Classification.Kind == classifications.KindWorkOrder {
		a.input.SetValue(doc.Classification.Description)
		a.input.CursorEnd()
	}

	a.mode = modeDescribe
	a.err = nil
	a.status = "enter the work order description, then press enter"
	return a.input.Focus()
}

func (a *App) classify(kind classifications.Kind, description string) bool {
	if err := a.session.SetClassification(kind, description); err != nil {
		a.err = err
		return false
	}

	doc, i := a.session.Current()
	a.logger.Debug("document classified", "index", i, "source", doc.Name, "kind", kind)

	a.err = nil
	a.status = fmt.Sprintf("classified as %s", kind.Label())
	return true
}

func (a *App) apply(err error) {
	a.err = err
	if err == nil {
		a.status = ""
	}
}

func (a *App) finish() {
	var result *Result

	err := a.session.Finish(func(docs []documents.Document) error {
		plan, err := a.builder.Build(a.session.Address(), docs)
		if err != nil {
			return err
		}

		path, err := writeArchive(a.outDir, plan)
		if err != nil {
			return err
		}

		result = &Result{Path: path, Plan: plan}
		return nil
	})
	if err != nil {
		a.err = err
		a.logger.Error("finish failed", "error", err)
		return
	}

	a.result = result
	a.mode = modeDone
	a.err = nil
	a.status = ""
	a.logger.Info(
		"archive written",
		"path", result.Path,
		"entries", len(result.Plan.Entries),
		"skipped", result.Plan.Skipped,
	)
}

func (a *App) kindForKey(key string) (classifications.Kind, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return "", false
	}
	i := int(key[0] - '1')
	if i >= len(a.kinds) {
		return "", false
	}
	return a.kinds[i], true
}

// writeArchive writes plan into dir through a temporary file so a failed
// write never leaves a partial archive under the final name.
func writeArchive(dir string, plan archive.Plan) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create output dir: %w", archive.ErrBuildFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".voidsort-*.zip")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", archive.ErrBuildFailed, err)
	}
	defer os.Remove(tmp.Name())

	if err := archive.Write(tmp, plan); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", archive.ErrBuildFailed, err)
	}

	path := filepath.Join(dir, plan.Filename)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: %w", archive.ErrBuildFailed, err)
	}
	return path, nil
}

func (a *App) View() string {
	if a.mode == modeDone {
		return a.viewDone()
	}

	sum := a.session.Summary()
	doc, _ := a.session.Current()

	var b strings.Builder

	b.WriteString(titleStyle.Render(sum.Address))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Document %d of %d", sum.Index+1, sum.Total)))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Width(a.boxWidth()).Render(a.viewDocument(doc)))
	b.WriteString("\n\n")

	for i, k := range a.kinds {
		line := fmt.Sprintf("[%d] %s", i+1, k.Label())
		if doc.Classification.Kind == k {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if a.mode == modeDescribe {
		b.WriteString("\n")
		b.WriteString(a.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf(
		"MTW so far: %d   BMD so far: %d   classified: %d/%d",
		sum.Counts[classifications.KindMTW],
		sum.Counts[classifications.KindBMD],
		sum.Classified, sum.Total,
	)))
	b.WriteString("\n")

	if a.err != nil {
		b.WriteString(errorStyle.Render(a.err.Error()))
		b.WriteString("\n")
	} else if a.status != "" {
		b.WriteString(statusStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(a.help(sum.Last)))
	return b.String()
}

func (a *App) viewDocument(doc documents.Document) string {
	pages := "unknown"
	if doc.PageCount != nil {
		pages = fmt.Sprintf("%d", *doc.PageCount)
	}

	current := "unclassified"
	if doc.Classified() {
		current = doc.Classification.Kind.Label()
		if doc.Classification.Description != "" {
			current += ": " + doc.Classification.Description
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		doc.Name,
		subtleStyle.Render(fmt.Sprintf(
			"%s pages, %s",
			pages, formatting.FormatBytes(int64(len(doc.Content)), 1),
		)),
		"Classification: "+current,
	)
}

func (a *App) viewDone() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Archive written"))
	b.WriteString("\n")
	b.WriteString(a.result.Path)
	b.WriteString("\n\n")

	for _, f := range a.result.Plan.Tree() {
		name := f.Name
		if name == "" {
			name = "(root)"
		}
		b.WriteString(folderStyle.Render(name))
		b.WriteString("\n")
		for _, file := range f.Files {
			b.WriteString("  " + file + "\n")
		}
	}

	if n := a.result.Plan.Skipped; n > 0 {
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render(fmt.Sprintf("%d skipped", n)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("press any key to exit"))
	return b.String()
}

func (a *App) help(last bool) string {
	keys := []string{"1-6 classify", "p back"}
	if last {
		keys = append(keys, "f finish")
	} else {
		keys = append(keys, "n next")
	}
	keys = append(keys, "q quit")
	return strings.Join(keys, "  ·  ")
}

func (a *App) boxWidth() int {
	if a.width <= 0 {
		return 72
	}
	return max(20, a.width-4)
}

