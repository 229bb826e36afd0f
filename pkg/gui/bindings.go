package gui

import "github.com/jesseduffield/gocui"

// Context represents the current UI context/mode
type Context string

const (
	ContextNormal Context = "normal"
	ContextInput  Context = "input" // typing into the bottom bar
	ContextHelp   Context = "help"
	ContextModal  Context = "modal"
	ContextPicker Context = "picker"
	ContextEdit   Context = "edit" // edit form open in the details panel
)

// Binding represents a keybinding with context-aware handling
type Binding struct {
	Key         interface{} // gocui.Key or rune
	Modifier    gocui.Modifier
	ViewName    string // Empty for global, specific view name otherwise
	Handler     func() error
	Description string
	// GetDisabledReason returns "" if enabled, or why the action is unavailable
	GetDisabledReason func() string
	// Contexts maps specific contexts to different handlers (optional)
	// If current context has a handler here, it's used instead of Handler
	Contexts map[Context]func() error
}

// DisabledReasons provides common disable-reason check functions
type DisabledReasons struct {
	NoDataset func() string
	NoItem    func() string
}

func (g *Gui) newDisabledReasons() DisabledReasons {
	return DisabledReasons{
		NoDataset: func() string {
			if g.snap.Metadata == nil {
				return "No dataset open"
			}
			return ""
		},
		NoItem: func() string {
			if g.snap.Item == nil {
				return "No item selected"
			}
			return ""
		},
	}
}

// require combines multiple disable-reason checks into one
// Returns first non-empty reason, or empty string if all pass
func require(checks ...func() string) func() string {
	return func() string {
		for _, check := range checks {
			if reason := check(); reason != "" {
				return reason
			}
		}
		return ""
	}
}

// getContext returns the current UI context
func (g *Gui) getContext() Context {
	switch {
	case g.helpOpen:
		return ContextHelp
	case g.pickerOpen:
		return ContextPicker
	case g.modalOpen:
		return ContextModal
	case g.inputActive:
		return ContextInput
	case g.form != nil:
		return ContextEdit
	}
	return ContextNormal
}

// KeybindingManager handles registration and execution of keybindings
type KeybindingManager struct {
	gui      *Gui
	bindings []*Binding
	disabled DisabledReasons
}

func (g *Gui) newKeybindingManager() *KeybindingManager {
	return &KeybindingManager{
		gui:      g,
		disabled: g.newDisabledReasons(),
	}
}

// RegisterAll adds multiple bindings
func (km *KeybindingManager) RegisterAll(bindings []*Binding) {
	km.bindings = append(km.bindings, bindings...)
}

// Bindings returns every registered binding.
func (km *KeybindingManager) Bindings() []*Binding {
	return km.bindings
}

// Apply registers all bindings with gocui
func (km *KeybindingManager) Apply() error {
	for _, b := range km.bindings {
		handler := km.wrapHandler(b)

		var err error
		switch key := b.Key.(type) {
		case gocui.Key:
			err = km.gui.g.SetKeybinding(b.ViewName, key, b.Modifier, handler)
		case rune:
			err = km.gui.g.SetKeybinding(b.ViewName, key, b.Modifier, handler)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// wrapHandler creates a gocui-compatible handler that checks context and disabled state
func (km *KeybindingManager) wrapHandler(b *Binding) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		return km.dispatch(b)
	}
}

func (km *KeybindingManager) dispatch(b *Binding) error {
	if h, ok := b.Contexts[km.gui.getContext()]; ok {
		return h()
	}
	if b.GetDisabledReason != nil {
		if reason := b.GetDisabledReason(); reason != "" {
			km.gui.logCommand(b.Description, reason, "error")
			return nil
		}
	}
	return b.Handler()
}
