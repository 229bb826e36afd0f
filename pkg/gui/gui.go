package gui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/jesseduffield/gocui"
	"github.com/marjoballabani/lazya2l/pkg/config"
	"github.com/marjoballabani/lazya2l/pkg/gui/icons"
	"github.com/marjoballabani/lazya2l/pkg/session"
	"github.com/pkg/errors"
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const maxCommandHistory = 10

type CommandExecution struct {
	Timestamp   string
	Command     string
	Description string
	Status      string
}

// inputPurpose says what the text typed into the bottom bar is for.
type inputPurpose int

const (
	inputTreeFilter inputPurpose = iota
	inputDetailsFilter
	inputOpenPath
	inputSavePath
	inputImportPath
	inputProjectDescription
	inputModuleName
	inputModuleDescription
)

type Gui struct {
	g       *gocui.Gui
	ctx     context.Context
	config  *config.Config
	sess    *session.Session
	logger  *log.Logger
	version string
	theme   *Theme
	colors  *colorizer

	// Rendered session state, taken at the start of every layout
	snap session.Snapshot
	rows []treeRow

	// Tree state
	exp       *expansion
	cursor    int
	followSel bool

	// Details state
	detailsScrollPos int
	detailsFilter    string
	form             *editForm
	preview          string // exported A2L text shown instead of the item

	commandHistory []CommandExecution

	views struct {
		background string
		tree       string
		details    string
		commands   string
		help       string
		modal      string
		helpModal  string
		picker     string
	}

	// Current column: "tree" or "details"
	currentColumn string

	modalOpen  bool
	helpOpen   bool
	helpPopup  *Popup
	pickerOpen bool
	picker     *Popup

	// Bottom bar input
	inputActive  bool
	inputPurpose inputPurpose
	inputText    string
	inputCursor  int
	inputModule  string // module the module inputs apply to

	pending      int32 // backend calls in flight
	spinnerFrame uint32

	roundedFrameRunes []rune
}

// NewGui creates the terminal UI over sess. Backend calls made from the UI
// are bound to ctx.
func NewGui(ctx context.Context, cfg *config.Config, sess *session.Session, logger *log.Logger, version string) (*Gui, error) {
	g, err := gocui.NewGui(gocui.NewGuiOpts{
		OutputMode:      gocui.OutputTrue,
		SupportOverlaps: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gui")
	}

	switch cfg.UI.NerdFontsVersion {
	case "2":
		icons.PatchForNerdFontsV2()
	case "3":
	default:
		icons.SetEnabled(false)
	}

	gui := &Gui{
		g:             g,
		ctx:           ctx,
		config:        cfg,
		sess:          sess,
		logger:        logger,
		version:       version,
		theme:         NewTheme(cfg.UI.Theme),
		colors:        newColorizer(cfg.UI.Theme.SyntaxStyle),
		exp:           newExpansion(),
		currentColumn: "tree",
		followSel:     true,
	}

	gui.views.background = "background"
	gui.views.tree = "tree"
	gui.views.details = "details"
	gui.views.commands = "commands"
	gui.views.help = "help"
	gui.views.modal = "modal"
	gui.views.helpModal = "helpModal"
	gui.views.picker = "picker"

	g.Cursor = false
	g.Mouse = true
	g.InputEsc = true
	g.ShowListFooter = true

	g.BgColor = gocui.ColorDefault
	g.FgColor = gocui.ColorDefault
	g.FrameColor = gui.theme.InactiveBorderColor
	g.SelFrameColor = gui.theme.ActiveBorderColor
	g.SelFgColor = gui.theme.ActiveBorderColor
	g.Highlight = true

	// ─ │ ╭ ╮ ╰ ╯
	gui.roundedFrameRunes = []rune{'─', '│', '╭', '╮', '╰', '╯'}

	g.SetManagerFunc(func(g *gocui.Gui) error {
		return gui.Layout(g)
	})

	if err := gui.setKeybindings(); err != nil {
		return nil, err
	}

	gui.logCommand("init", "lazya2l starting", "success")
	return gui, nil
}

func (g *Gui) getActiveColorCode() string {
	return g.theme.GetAnsiColorCode()
}

func (g *Gui) logCommand(command, description, status string) {
	g.commandHistory = append(g.commandHistory, CommandExecution{
		Timestamp:   time.Now().Format("15:04:05"),
		Command:     command,
		Description: description,
		Status:      status,
	})
	if len(g.commandHistory) > maxCommandHistory {
		g.commandHistory = g.commandHistory[1:]
	}
	if status == "error" {
		g.logger.Printf("gui: %s: %s", command, description)
	}
}

// OpenOnStart schedules path to be opened once the main loop runs. An empty
// path shows the start screen.
func (g *Gui) OpenOnStart(path string) {
	if path == "" {
		return
	}
	g.g.Update(func(*gocui.Gui) error {
		g.openFile(path)
		return nil
	})
}

// Run blocks until the user quits.
func (g *Gui) Run() error {
	defer g.g.Close()

	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-g.ctx.Done():
				return
			case <-ticker.C:
			}
			atomic.AddUint32(&g.spinnerFrame, 1)
			if g.isAnyLoading() {
				g.g.Update(func(*gocui.Gui) error { return nil })
			}
		}
	}()

	go func() {
		<-g.ctx.Done()
		g.g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
	}()

	if err := g.g.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		return err
	}
	return nil
}

// async runs call off the UI goroutine. done runs on the UI goroutine with
// the result; replies the session discarded as stale are dropped silently.
func (g *Gui) async(command, description string, call func(ctx context.Context) error, done func(err error)) {
	atomic.AddInt32(&g.pending, 1)
	g.logCommand(command, description, "running")
	go func() {
		err := call(g.ctx)
		g.g.Update(func(*gocui.Gui) error {
			atomic.AddInt32(&g.pending, -1)
			if errors.Is(err, session.ErrStale) {
				return nil
			}
			if done != nil {
				done(err)
			}
			return nil
		})
	}()
}

// report logs the outcome of a finished call.
func (g *Gui) report(command, success string, err error) {
	if err != nil {
		g.logCommand(command, err.Error(), "error")
		return
	}
	g.logCommand(command, success, "success")
}

// getLoadingText returns formatted loading text with animated spinner
func (g *Gui) getLoadingText(text string) string {
	frame := atomic.LoadUint32(&g.spinnerFrame)
	spinner := spinnerFrames[frame%uint32(len(spinnerFrames))]
	return fmt.Sprintf("\033[33m%s %s\033[0m", spinner, text)
}

func (g *Gui) isAnyLoading() bool {
	return atomic.LoadInt32(&g.pending) > 0
}
