package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskremind/internal/commands"
	"github.com/sandeepkv93/taskremind/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePalette()
		m.Status = StatusBar{Text: "command prompt closed"}
		return m, nil
	case tea.KeyEnter:
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	case tea.KeyRunes:
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.commandInput.CursorEnd()
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m *Model) closePalette() {
	m.Palette = PaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

// executePaletteCommand runs the typed command and refreshes the view so the
// table reflects any change.
func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err == nil && cmd.Type == commands.TypeWatch {
		m.Status = StatusBar{Text: "already watching"}
		return m, nil
	}
	var res commands.Result
	if err == nil {
		res, err = commands.Execute(cmd, m.opts.Handlers)
	}
	if err != nil {
		m.Status = StatusBar{Text: errorLine(err), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: firstLine(res.Message)}
	return m, m.checkCmd()
}

func errorLine(err error) string {
	if field := model.Field(err); field != "" {
		return model.Kind(err) + " (" + field + "): " + err.Error()
	}
	return err.Error()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
