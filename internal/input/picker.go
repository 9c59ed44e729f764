package input

import (
	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BE9FD"))
	pickerErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

type pickerModel struct {
	picker   filepicker.Model
	selected string
	rejected string
	quitting bool
}

func (m pickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.selected = path
		return m, tea.Quit
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.rejected = path
	}

	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting || m.selected != "" {
		return ""
	}
	view := pickerTitleStyle.Render("Select the input CSV file") + "\n\n" + m.picker.View()
	if m.rejected != "" {
		view += "\n" + pickerErrStyle.Render(m.rejected+" is not a CSV file")
	}
	return view
}

// Pick shows an interactive file picker restricted to .csv files,
// starting in dir, and returns the chosen path. Cancelling is an error:
// a run cannot proceed without an input table.
func Pick(dir string) (string, error) {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv"}
	fp.CurrentDirectory = dir
	fp.ShowPermissions = false

	final, err := tea.NewProgram(pickerModel{picker: fp}).Run()
	if err != nil {
		return "", errors.Wrap(err, "file picker failed")
	}

	m, ok := final.(pickerModel)
	if !ok || m.selected == "" {
		return "", errors.New("no input file selected")
	}
	return m.selected, nil
}
