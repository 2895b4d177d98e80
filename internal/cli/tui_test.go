package cli

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokenviz/bubblegraph/pkg/errors"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestChainListModelNavigation(t *testing.T) {
	m := NewChainListModel()
	if len(m.Chains) == 0 {
		t.Fatal("expected at least one supported chain")
	}

	updated, _ := m.Update(keyMsg("down"))
	m = updated.(ChainListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.Cursor)
	}

	updated, _ = m.Update(keyMsg("k"))
	m = updated.(ChainListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after k, want 0", m.Cursor)
	}

	// Cursor stays in bounds at the top
	updated, _ = m.Update(keyMsg("up"))
	m = updated.(ChainListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.Cursor)
	}
}

func TestChainListModelSelect(t *testing.T) {
	m := NewChainListModel()

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(ChainListModel)

	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(ChainListModel)
	if m.Selected != m.Chains[1] {
		t.Errorf("Selected = %q, want %q", m.Selected, m.Chains[1])
	}
	if cmd == nil {
		t.Error("expected quit command after enter")
	}
}

func TestChainListModelQuitWithoutSelection(t *testing.T) {
	m := NewChainListModel()

	updated, cmd := m.Update(keyMsg("esc"))
	m = updated.(ChainListModel)
	if m.Selected != "" {
		t.Errorf("Selected = %q after esc, want empty", m.Selected)
	}
	if cmd == nil {
		t.Error("expected quit command after esc")
	}
}

func TestChainListModelView(t *testing.T) {
	m := NewChainListModel()
	view := m.View()

	if !strings.Contains(view, "Select Chain") {
		t.Error("view missing title")
	}
	for _, chain := range m.Chains {
		if !strings.Contains(view, chain) {
			t.Errorf("view missing chain %q", chain)
		}
	}
}

func TestPickChainRequiresTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	orig := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = orig }()

	_, err = pickChain()
	if err == nil {
		t.Fatal("expected an error when stdin is not a terminal")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if !strings.Contains(err.Error(), "--chain") {
		t.Fatalf("error should point at --chain: %v", err)
	}
}
