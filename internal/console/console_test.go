package console

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/inbound/internal/core"
	"github.com/JonMunkholm/inbound/internal/storage"
)

func newService(t *testing.T) *core.Service {
	t.Helper()
	svc, err := core.NewService(context.Background(), storage.NewMemoryStore(), core.ServiceConfig{
		Now: func() time.Time { return time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func writeExpected(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "expected.csv")
	body := "Styles NO,Color,XS,S,M,L,XL,2XL\nST1,BK,,,10,,,\nST2,WH,2,,,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// enter types line, presses Enter and runs the resulting command once,
// feeding its message back. Follow-up commands such as the highlight tick
// are returned unexecuted.
func enter(t *testing.T, m tea.Model, line string) (tea.Model, tea.Cmd) {
	t.Helper()
	if line != "" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return m, nil
	}
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); ok {
		return m, cmd
	}
	return m.Update(msg)
}

func newModel(t *testing.T, svc *core.Service, exportDir string) tea.Model {
	t.Helper()
	return New(context.Background(), svc, exportDir, 0)
}

func TestConsole_ScanSession(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t)
	m := newModel(t, svc, dir)

	m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
	assert.Contains(t, m.View(), core.UploadNotification.Message)
	assert.Contains(t, m.View(), "2 rows, 2 SKUs, 12 expected")

	m, cmd := enter(t, m, "")
	assert.Nil(t, cmd, "blank line is ignored")

	m, _ = enter(t, m, "  ST1/BK/M  ")
	m, cmd = enter(t, m, "ST1/BK/M")
	assert.NotNil(t, cmd, "accepted scan schedules the highlight reset")
	assert.Contains(t, m.View(), "바코드 ST1/BK/M 스캔 성공!")
	assert.Contains(t, m.View(), "ST1-BK-M  2 / 10")

	m, _ = enter(t, m, "ST1-BK-M")
	assert.Contains(t, m.View(), "(SCAN002)")

	m, _ = enter(t, m, ":stats")
	assert.Contains(t, m.View(), "progress 16.7%")
	assert.Equal(t, 2, svc.Stats().ActualTotal)
}

func TestConsole_SkuChangedWarning(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t)
	m := newModel(t, svc, dir)

	m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
	m, _ = enter(t, m, "ST1/BK/M")
	m, _ = enter(t, m, "ST2/WH/XS")

	view := m.View()
	assert.Contains(t, view, "[warning] 새로운 SKU가 스캔되었습니다. 이전 SKU와 다릅니다.")
	assert.Contains(t, view, "[success] 바코드 ST2/WH/XS 스캔 성공!")
}

func TestConsole_Highlight(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t)
	m := newModel(t, svc, dir)

	m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
	m, _ = enter(t, m, "ST1/BK/M")
	assert.Contains(t, m.View(), "> ST1-BK-M")

	// A stale tick for another SKU leaves the highlight alone.
	m, _ = m.Update(clearHighlightMsg{sku: "ST2-WH-XS"})
	assert.Contains(t, m.View(), "> ST1-BK-M")

	m, _ = m.Update(clearHighlightMsg{sku: "ST1-BK-M"})
	assert.NotContains(t, m.View(), "> ST1-BK-M")
	assert.Contains(t, m.View(), "  ST1-BK-M")
}

func TestConsole_Export(t *testing.T) {
	dir := t.TempDir()
	exportDir := filepath.Join(dir, "exports")
	svc := newService(t)
	m := newModel(t, svc, exportDir)

	m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
	m, _ = enter(t, m, "ST1/BK/M")
	m, _ = enter(t, m, ":export")

	assert.Contains(t, m.View(), core.ExportNotification.Message)
	_, err := os.Stat(filepath.Join(exportDir, "20240305_입고 스캔정보_20240305.xlsx"))
	require.NoError(t, err)

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed")
	assert.Equal(t, 0, svc.Stats().ActualTotal)
}

func TestConsole_Reset(t *testing.T) {
	dir := t.TempDir()

	t.Run("declined at final step", func(t *testing.T) {
		svc := newService(t)
		m := newModel(t, svc, dir)
		m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
		m, _ = enter(t, m, "ST1/BK/M")

		m, _ = enter(t, m, ":reset")
		assert.Contains(t, m.View(), confirmResetPrompt)
		m, _ = enter(t, m, "y")
		assert.Contains(t, m.View(), finalConfirmResetPrompt)
		m, _ = enter(t, m, "n")

		assert.Contains(t, m.View(), "reset cancelled")
		assert.Equal(t, 1, svc.Stats().ActualTotal)
		assert.Equal(t, core.ResetIdle, svc.ResetPhase())
	})

	t.Run("escape cancels", func(t *testing.T) {
		svc := newService(t)
		m := newModel(t, svc, dir)
		m, _ = enter(t, m, ":reset")
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		assert.Equal(t, core.ResetIdle, svc.ResetPhase())
		assert.Contains(t, m.View(), "> ")
	})

	t.Run("confirmed twice", func(t *testing.T) {
		svc := newService(t)
		m := newModel(t, svc, dir)
		m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
		m, _ = enter(t, m, "ST1/BK/M")
		m, _ = enter(t, m, ":reset")
		m, _ = enter(t, m, "y")
		m, _ = enter(t, m, "yes")

		assert.Contains(t, m.View(), core.ResetNotification.Message)
		assert.Equal(t, 0, svc.Stats().ActualTotal)
		assert.Equal(t, 2, svc.Stats().TotalSkus)
	})
}

// failingStore rejects writes while failing is set.
type failingStore struct {
	*storage.MemoryStore
	failing bool
}

func (f *failingStore) PutAll(ctx context.Context, entries map[string][]byte) error {
	if f.failing {
		return errors.New("disk full")
	}
	return f.MemoryStore.PutAll(ctx, entries)
}

func TestConsole_ResetRetryAfterSaveFailure(t *testing.T) {
	dir := t.TempDir()
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	svc, err := core.NewService(context.Background(), store, core.ServiceConfig{})
	require.NoError(t, err)
	m := newModel(t, svc, dir)

	m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
	m, _ = enter(t, m, "ST1/BK/M")
	m, _ = enter(t, m, ":reset")
	m, _ = enter(t, m, "y")

	store.failing = true
	m, _ = enter(t, m, "y")
	assert.Contains(t, m.View(), "(STORE001)")
	assert.Contains(t, m.View(), finalConfirmResetPrompt)
	assert.Equal(t, 1, svc.Stats().ActualTotal)

	store.failing = false
	m, _ = enter(t, m, "y")
	assert.Contains(t, m.View(), core.ResetNotification.Message)
	assert.Equal(t, 0, svc.Stats().ActualTotal)
	assert.Equal(t, core.ResetIdle, svc.ResetPhase())
}

func TestConsole_Commands(t *testing.T) {
	svc := newService(t)
	m := newModel(t, svc, t.TempDir())

	m, _ = enter(t, m, ":upload")
	assert.Contains(t, m.View(), "(FILE003)")

	m, _ = enter(t, m, ":upload /does/not/exist.csv")
	assert.Contains(t, m.View(), "(FILE002)")

	m, _ = enter(t, m, ":history")
	assert.Contains(t, m.View(), "no scans")

	m, _ = enter(t, m, ":bogus")
	assert.Contains(t, m.View(), `unknown command "bogus"`)

	_, cmd := enter(t, m, ":quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsole_Editing(t *testing.T) {
	svc := newService(t)
	m := newModel(t, svc, t.TempDir())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ST1/BK/MX")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Contains(t, m.View(), "> ST1/BK/M ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsole_HistoryFilter(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t)
	m := newModel(t, svc, dir)

	m, _ = enter(t, m, ":upload "+writeExpected(t, dir))
	m, _ = enter(t, m, "ST1/BK/M")
	m, _ = enter(t, m, "ST2/WH/XS")
	m, _ = enter(t, m, ":history st1/bk")

	view := m.View()
	assert.Contains(t, view, "  ST1-BK-M")
	// Only the filtered list is printed below the recent scans.
	assert.Equal(t, 1, countLines(view, "ST2-WH-XS"))
	assert.Equal(t, 2, countLines(view, "ST1-BK-M"))
}

func countLines(s, substr string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}
