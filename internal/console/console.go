// Package console is the terminal frontend of a receiving station. A
// keyboard-wedge scanner types one barcode per line and Enter commits it.
// Lines starting with ':' are operator commands.
package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/inbound/internal/core"
)

// ClientName identifies console actions in audit records.
const ClientName = "console"

// historyRows is how many scan events the view lists.
const historyRows = 15

/* ----------------------------------------
	MESSAGES
---------------------------------------- */

// scannedMsg carries the result of one scan.
type scannedMsg struct {
	out core.ScanOutcome
	err error
}

// doneMsg reports a finished session operation.
type doneMsg struct {
	notice core.Notification
	detail string
}

// errMsg reports a failed session operation.
type errMsg struct{ err error }

// clearHighlightMsg ends the highlight of sku once the delay has passed.
type clearHighlightMsg struct{ sku string }

/* ----------------------------------------
	MODEL
---------------------------------------- */

type mode int

const (
	modeScan mode = iota
	modeConfirmReset
	modeFinalConfirmReset
)

const (
	confirmResetPrompt      = "정말로 데이터를 초기화하시겠습니까? 이 작업은 되돌릴 수 없습니다."
	finalConfirmResetPrompt = "마지막으로 확인합니다. 데이터를 초기화하시겠습니까?"
)

// Model is the bubbletea model of the station terminal.
type Model struct {
	ctx       context.Context
	svc       *core.Service
	exportDir string
	delay     time.Duration

	mode      mode
	input     string
	notices   []core.Notification
	output    []string
	highlight string
}

// New creates a Model. Exports are written to exportDir; the last scanned
// SKU stays highlighted for delay.
func New(ctx context.Context, svc *core.Service, exportDir string, delay time.Duration) Model {
	if delay <= 0 {
		delay = core.HighlightDelay
	}
	origin := core.OriginFromContext(ctx)
	origin.Client = ClientName
	return Model{
		ctx:       core.WithOrigin(ctx, origin),
		svc:       svc,
		exportDir: exportDir,
		delay:     delay,
	}
}

// Run starts the terminal program and blocks until the operator quits or
// ctx is cancelled.
func Run(ctx context.Context, svc *core.Service, exportDir string, delay time.Duration, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, svc, exportDir, delay), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case scannedMsg:
		m.notices = core.ScanNotifications(msg.out, msg.err)
		m.output = nil
		if msg.err != nil {
			return m, nil
		}
		m.output = []string{fmt.Sprintf("%s  %d / %s",
			msg.out.SKU, msg.out.Record.ActualQuantity, formatQty(msg.out.Record.ExpectedQuantity))}
		m.highlight = msg.out.SKU
		sku := msg.out.SKU
		return m, tea.Tick(m.delay, func(time.Time) tea.Msg {
			return clearHighlightMsg{sku: sku}
		})

	case clearHighlightMsg:
		// A newer scan may own the highlight by now.
		if m.highlight == msg.sku {
			m.highlight = ""
		}

	case doneMsg:
		m.notices = []core.Notification{msg.notice}
		m.output = nil
		if msg.detail != "" {
			m.output = []string{msg.detail}
		}

	case errMsg:
		m.notices = []core.Notification{core.ErrorNotification(msg.err)}
		m.output = nil
		// A failed final reset can be confirmed again.
		if m.svc.ResetPhase() == core.ResetFinalConfirmRequested {
			m.mode = modeFinalConfirmReset
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		if m.mode != modeScan {
			m.cancelReset()
		}
		m.input = ""

	case tea.KeyEnter:
		line := strings.TrimSpace(m.input)
		m.input = ""
		return m.submit(line)

	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}

	case tea.KeySpace:
		m.input += " "

	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}

	return m, nil
}

// submit handles one committed line.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConfirmReset:
		if !isYes(line) {
			m.cancelReset()
			return m, nil
		}
		if _, err := m.svc.ConfirmReset(); err != nil {
			m.cancelReset()
			return m, errCmd(err)
		}
		m.mode = modeFinalConfirmReset
		return m, nil

	case modeFinalConfirmReset:
		m.mode = modeScan
		if !isYes(line) {
			m.cancelReset()
			return m, nil
		}
		return m, m.finalizeReset()
	}

	if line == "" {
		return m, nil
	}
	if strings.HasPrefix(line, ":") {
		return m.command(line)
	}
	return m, m.scan(line)
}

// command runs an operator command.
func (m Model) command(line string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	m.notices = nil
	m.output = nil

	switch strings.ToLower(name) {
	case "q", "quit", "exit":
		return m, tea.Quit
	case "stats":
		m.output = []string{m.statsLine()}
	case "upload":
		return m, m.upload(arg)
	case "history":
		m.output = m.history(arg)
	case "export":
		return m, m.export()
	case "reset":
		m.svc.CancelReset()
		if _, err := m.svc.RequestReset(); err != nil {
			return m, errCmd(err)
		}
		m.mode = modeConfirmReset
	case "help":
		m.output = strings.Split(helpText, "\n")
	default:
		m.output = []string{fmt.Sprintf("unknown command %q, try :help", name)}
	}
	return m, nil
}

func (m *Model) cancelReset() {
	m.svc.CancelReset()
	m.mode = modeScan
	m.notices = nil
	m.output = []string{"reset cancelled"}
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

const helpText = `STYLE/COLOR/SIZE    record one scan
:upload <file>      load the expected list (.xlsx or .csv)
:stats              show progress
:history [filter]   show scans, filter is style[/color[/size]]
:export             write the report and clear the scan counts
:reset              clear the scan counts (asks twice)
:quit`

/* ----------------------------------------
	COMMANDS
---------------------------------------- */

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return errMsg{err: err} }
}

func (m Model) scan(barcode string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		out, err := svc.Scan(ctx, barcode)
		return scannedMsg{out: out, err: err}
	}
}

func (m Model) upload(path string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		if path == "" {
			return errMsg{err: errors.New("no file provided")}
		}
		f, err := os.Open(path)
		if err != nil {
			return errMsg{err: fmt.Errorf("%w: %v", core.ErrParseFailure, err)}
		}
		defer f.Close()

		res, err := svc.Upload(ctx, filepath.Base(path), f)
		if err != nil {
			return errMsg{err: err}
		}
		return doneMsg{
			notice: core.UploadNotification,
			detail: fmt.Sprintf("%d rows, %d SKUs, %s expected", res.RowsRead, res.SkuCount, formatQty(res.ExpectedTotal)),
		}
	}
}

// export writes the workbook to a temp file and renames it into place so a
// failed export never leaves a partial file behind.
func (m Model) export() tea.Cmd {
	ctx, svc, dir := m.ctx, m.svc, m.exportDir
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errMsg{err: fmt.Errorf("export: %w", err)}
		}

		path := filepath.Join(dir, svc.ExportFileName())
		tmp, err := os.CreateTemp(dir, ".export-*.xlsx")
		if err != nil {
			return errMsg{err: fmt.Errorf("export: %w", err)}
		}
		defer os.Remove(tmp.Name())

		res, err := svc.Export(ctx, tmp)
		if cerr := tmp.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
		if err == nil {
			err = os.Rename(tmp.Name(), path)
		}
		if err != nil {
			return errMsg{err: err}
		}

		return doneMsg{
			notice: core.ExportNotification,
			detail: fmt.Sprintf("%d rows -> %s", res.Rows, path),
		}
	}
}

func (m Model) finalizeReset() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		if _, err := svc.FinalizeReset(ctx); err != nil {
			return errMsg{err: err}
		}
		return doneMsg{notice: core.ResetNotification}
	}
}

/* ----------------------------------------
	VIEW
---------------------------------------- */

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("입고 스캔  " + m.statsLine() + "\n\n")

	for _, line := range m.recent() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	for _, n := range m.notices {
		code := ""
		if n.Code != "" {
			code = " (" + n.Code + ")"
		}
		fmt.Fprintf(&b, "[%s] %s%s\n", n.Level, n.Message, code)
	}
	for _, line := range m.output {
		b.WriteString("  " + line + "\n")
	}

	switch m.mode {
	case modeConfirmReset:
		b.WriteString(confirmResetPrompt + " [y/N] ")
	case modeFinalConfirmReset:
		b.WriteString(finalConfirmResetPrompt + " [y/N] ")
	default:
		b.WriteString("> ")
	}
	b.WriteString(m.input)
	return b.String()
}

func (m Model) statsLine() string {
	st := m.svc.Stats()
	return fmt.Sprintf("SKUs %d | expected %s | scanned %d | progress %s",
		st.TotalSkus, formatQty(st.ExpectedTotal), st.ActualTotal, core.FormatPercent(st.OverallProgress))
}

// recent lists the newest scan events, marking the highlighted SKU.
func (m Model) recent() []string {
	events := m.svc.History(core.HistoryFilter{})
	if len(events) > historyRows {
		events = events[:historyRows]
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, m.eventLine(ev))
	}
	return lines
}

// history lists scan events matching filter.
func (m Model) history(filter string) []string {
	parts := strings.SplitN(filter, "/", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	events := m.svc.History(core.HistoryFilter{Style: parts[0], Color: parts[1], Size: parts[2]})
	if len(events) == 0 {
		return []string{"no scans"}
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, m.eventLine(ev))
	}
	return lines
}

func (m Model) eventLine(ev core.ScanEvent) string {
	mark := " "
	if ev.SKU == m.highlight {
		mark = ">"
	}
	return fmt.Sprintf("%s %-24s %4d / %-6s %s",
		mark, ev.SKU, ev.ActualQuantity, formatQty(ev.ExpectedQuantity), ev.Timestamp)
}

func formatQty(q float64) string {
	return decimal.NewFromFloat(q).String()
}
