package repl

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is a full-screen front end over a REPL: a register panel, a
// program hex view, a heap hex view, an output log, and a command
// input line.
type TUI struct {
	repl *REPL

	App    *tview.Application
	Layout *tview.Flex

	RegisterView *tview.TextView
	ProgramView  *tview.TextView
	HeapView     *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField
}

// NewTUI builds a TUI around an existing REPL.
func NewTUI(r *REPL) *TUI {
	t := &TUI{
		repl: r,
		App:  tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.ProgramView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.ProgramView.SetBorder(true).SetTitle(" Program ")

	t.HeapView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.HeapView.SetBorder(true).SetTitle(" Heap ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Input ")
	t.CommandInput.SetDoneFunc(t.handleInput)
}

func (t *TUI) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.ProgramView, 0, 1, false).
		AddItem(t.HeapView, 0, 1, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.OutputView, 0, 1, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Layout = tview.NewFlex().
		AddItem(left, 0, 1, false).
		AddItem(right, 0, 2, true)
}

func (t *TUI) handleInput(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	line := strings.TrimSpace(t.CommandInput.GetText())
	t.CommandInput.SetText("")
	if line == "" {
		return
	}
	t.repl.History.Add(line)

	quit, err := t.repl.handleLine(line)
	if err != nil {
		fmt.Fprintf(t.OutputView, "[red]error: %v[-]\n", err)
	}
	t.refresh()
	if quit {
		t.App.Stop()
	}
}

func (t *TUI) refresh() {
	t.RegisterView.Clear()
	for i, v := range t.repl.VM.Registers {
		fmt.Fprintf(t.RegisterView, "R%-2d = %d\n", i, v)
	}
	fmt.Fprintf(t.RegisterView, "pc = %d  rem = %d\n", t.repl.VM.PC, t.repl.VM.Remainder)

	t.ProgramView.Clear()
	program := t.repl.VM.Program
	for i := 0; i < len(program); i += 4 {
		end := i + 4
		if end > len(program) {
			end = len(program)
		}
		fmt.Fprintf(t.ProgramView, "%04d: % X\n", i, program[i:end])
	}

	t.HeapView.Clear()
	heap := t.repl.VM.Heap
	for i := 0; i < len(heap); i += 16 {
		end := i + 16
		if end > len(heap) {
			end = len(heap)
		}
		fmt.Fprintf(t.HeapView, "%04d: % X\n", i, heap[i:end])
	}
}

// Run starts the TUI event loop; it blocks until the user quits.
func (t *TUI) Run() error {
	t.refresh()
	return t.App.SetRoot(t.Layout, true).SetFocus(t.CommandInput).Run()
}
