package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kevinwang15/nodeedit"
	"github.com/scott-cotton/cli"
)

func edit(cfg *EditConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Edit.Parse(cc, args)
	if err != nil {
		cfg.Edit.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	path, file, _, err := pathAndFile(args)
	if err != nil {
		return err
	}
	settings, err := cfg.settings()
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	repo := openRepository(file)
	node, _, err := loadNode(repo, path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", file, err)
	}

	// stderr belongs to the terminal UI
	logger := slog.New(slog.DiscardHandler)
	if f, err := os.OpenFile(filepath.Join(os.TempDir(), "nodeedit.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: settings.LogLevel}))
	}

	sess := nodeedit.NewSession(repo, nodeedit.WithConfig(settings), nodeedit.WithLogger(logger))
	sess.Select(node)
	_, err = tea.NewProgram(newEditModel(sess, clipboard.WriteAll)).Run()
	return err
}

var (
	labelStyle  = lipgloss.NewStyle().Bold(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1)
)

// editModel drives a Session from the keyboard: Viewing shows the node,
// Editing shows one input per field.
type editModel struct {
	sess   *nodeedit.Session
	copy   func(string) error
	keys   []string
	inputs []textinput.Model
	focus  int
	notice string
	status string
}

func newEditModel(sess *nodeedit.Session, copyFn func(string) error) *editModel {
	return &editModel{sess: sess, copy: copyFn}
}

func (m *editModel) Init() tea.Cmd { return nil }

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.notice != "" {
		// the notice blocks until dismissed
		m.notice = ""
		return m, nil
	}
	if m.sess.State() == nodeedit.Editing {
		return m.updateEditing(key)
	}
	return m.updateViewing(key)
}

func (m *editModel) updateViewing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "esc":
		return m, tea.Quit
	case "e", "enter":
		if err := m.sess.Edit(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		return m, m.startInputs()
	case "y":
		p := m.sess.PathString()
		if err := m.copy(p); err != nil {
			m.status = fmt.Sprintf("failed to copy: %v", err)
			return m, nil
		}
		m.status = "copied " + p
	}
	return m, nil
}

func (m *editModel) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.sess.Cancel()
		m.inputs, m.keys = nil, nil
		m.status = "cancelled"
		return m, nil
	case "ctrl+s":
		return m, m.save()
	case "tab", "down":
		return m, m.moveFocus(1)
	case "shift+tab", "up":
		return m, m.moveFocus(-1)
	}
	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(key)
	return m, cmd
}

func (m *editModel) startInputs() tea.Cmd {
	fields := m.sess.Fields()
	m.keys = m.sess.FieldKeys()
	m.inputs = make([]textinput.Model, len(m.keys))
	for i, k := range m.keys {
		ti := textinput.New()
		ti.Prompt = ""
		ti.SetValue(fields[k].String())
		if t, ok := m.sess.FieldType(k); ok {
			ti.Placeholder = string(t)
		}
		m.inputs[i] = ti
	}
	m.focus = 0
	if len(m.inputs) == 0 {
		return nil
	}
	return m.inputs[0].Focus()
}

func (m *editModel) moveFocus(d int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + d + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m *editModel) save() tea.Cmd {
	for i, k := range m.keys {
		if err := m.sess.SetFieldText(k, m.inputs[i].Value()); err != nil {
			m.notice = nodeedit.Notice(err) + "\n" + err.Error()
			return nil
		}
	}
	res, err := m.sess.Save()
	if err != nil {
		m.notice = nodeedit.Notice(err) + "\n" + err.Error()
		return nil
	}
	m.inputs, m.keys = nil, nil
	if res.Changed {
		m.status = "saved"
	} else {
		m.status = "saved, no changes"
	}
	return nil
}

func (m *editModel) View() string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render("Content"))
	sb.WriteString("\n")
	if m.sess.State() == nodeedit.Editing {
		for i, k := range m.keys {
			label := k
			if k == nodeedit.RootField {
				label = "value"
			}
			fmt.Fprintf(&sb, "%s: %s\n", labelStyle.Render(label), m.inputs[i].View())
		}
	} else {
		sb.WriteString(valueStyle.Render(m.sess.Display()))
		sb.WriteString("\n")
	}
	sb.WriteString(labelStyle.Render("JSON Path"))
	sb.WriteString("\n")
	sb.WriteString(pathStyle.Render(m.sess.PathString()))
	sb.WriteString("\n")
	if m.notice != "" {
		sb.WriteString(noticeStyle.Render(m.notice))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(statusStyle.Render(m.status))
		sb.WriteString("\n")
	}
	if m.sess.State() == nodeedit.Editing {
		sb.WriteString(helpStyle.Render("tab next • ctrl+s save • esc cancel"))
	} else {
		sb.WriteString(helpStyle.Render("e edit • y copy path • q quit"))
	}
	return sb.String()
}
