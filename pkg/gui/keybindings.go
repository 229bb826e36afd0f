package gui

import "github.com/jesseduffield/gocui"

func (g *Gui) setKeybindings() error {
	km := g.newKeybindingManager()

	km.RegisterAll(g.globalBindings())
	km.RegisterAll(g.navigationBindings())
	km.RegisterAll(g.editBindings())
	km.RegisterAll(g.actionBindings(km))
	km.RegisterAll(g.typingBindings(km.Bindings()))
	km.RegisterAll(g.mouseBindings())

	return km.Apply()
}

// typed returns the context handlers that make ch insert text while the
// bottom bar or the edit form has the keyboard. Popups swallow it unless
// popup handlers are given.
func (g *Gui) typed(ch rune, popup map[Context]func() error) map[Context]func() error {
	m := map[Context]func() error{
		ContextInput:  func() error { return g.insertInputChar(ch) },
		ContextEdit:   func() error { return g.formInsert(ch) },
		ContextHelp:   g.blockAction,
		ContextPicker: g.blockAction,
		ContextModal:  g.blockAction,
	}
	for ctx, h := range popup {
		m[ctx] = h
	}
	return m
}

// globalBindings - always available (quit, escape, help)
func (g *Gui) globalBindings() []*Binding {
	return []*Binding{
		{
			Key:         gocui.KeyCtrlC,
			Handler:     g.doQuit,
			Description: "Force quit",
		},
		{
			Key:         'q',
			Handler:     g.doQuit,
			Description: "Quit",
			Contexts:    g.typed('q', nil),
		},
		{
			Key:         gocui.KeyEsc,
			Handler:     g.doEscape,
			Description: "Close/Cancel",
		},
		{
			Key:         '?',
			Handler:     g.doToggleHelp,
			Description: "Show help",
			Contexts:    g.typed('?', map[Context]func() error{ContextHelp: g.doToggleHelp}),
		},
		{
			Key:         '@',
			Handler:     g.doToggleModal,
			Description: "Command log",
			Contexts:    g.typed('@', map[Context]func() error{ContextModal: g.doToggleModal}),
		},
	}
}

// navigationBindings - panel and list navigation
func (g *Gui) navigationBindings() []*Binding {
	popupUp := map[Context]func() error{ContextHelp: g.helpMoveUp, ContextPicker: g.pickerMoveUp}
	popupDown := map[Context]func() error{ContextHelp: g.helpMoveDown, ContextPicker: g.pickerMoveDown}
	return []*Binding{
		{
			Key:         gocui.KeyArrowUp,
			Handler:     g.doCursorUp,
			Description: "Move up",
			Contexts: map[Context]func() error{
				ContextHelp:   g.helpMoveUp,
				ContextPicker: g.pickerMoveUp,
				ContextModal:  g.blockAction,
				ContextEdit:   g.formPrev,
			},
		},
		{
			Key:         gocui.KeyArrowDown,
			Handler:     g.doCursorDown,
			Description: "Move down",
			Contexts: map[Context]func() error{
				ContextHelp:   g.helpMoveDown,
				ContextPicker: g.pickerMoveDown,
				ContextModal:  g.blockAction,
				ContextEdit:   g.formNext,
			},
		},
		{
			Key:         gocui.KeyArrowLeft,
			Handler:     g.doColumnLeft,
			Description: "Move left",
			Contexts: map[Context]func() error{
				ContextInput:  g.inputCursorLeft,
				ContextHelp:   g.blockAction,
				ContextPicker: g.blockAction,
				ContextModal:  g.blockAction,
				ContextEdit:   g.blockAction,
			},
		},
		{
			Key:         gocui.KeyArrowRight,
			Handler:     g.doColumnRight,
			Description: "Move right",
			Contexts: map[Context]func() error{
				ContextInput:  g.inputCursorRight,
				ContextHelp:   g.blockAction,
				ContextPicker: g.blockAction,
				ContextModal:  g.blockAction,
				ContextEdit:   g.blockAction,
			},
		},
		{Key: 'j', Handler: g.doCursorDown, Description: "Move down", Contexts: g.typed('j', popupDown)},
		{Key: 'k', Handler: g.doCursorUp, Description: "Move up", Contexts: g.typed('k', popupUp)},
		{Key: 'h', Handler: g.doColumnLeft, Description: "Move left", Contexts: g.typed('h', nil)},
		{Key: 'l', Handler: g.doColumnRight, Description: "Move right", Contexts: g.typed('l', nil)},
		{
			Key:         gocui.KeyTab,
			Handler:     g.doNextColumn,
			Description: "Next panel",
			Contexts: map[Context]func() error{
				ContextInput:  g.blockAction,
				ContextHelp:   g.blockAction,
				ContextPicker: g.blockAction,
				ContextModal:  g.blockAction,
				ContextEdit:   g.formNext,
			},
		},
		{
			Key:         gocui.KeyBacktab,
			Handler:     g.doNextColumn,
			Description: "Previous panel",
			Contexts: map[Context]func() error{
				ContextInput:  g.blockAction,
				ContextHelp:   g.blockAction,
				ContextPicker: g.blockAction,
				ContextModal:  g.blockAction,
				ContextEdit:   g.formPrev,
			},
		},
		{
			Key:         gocui.KeySpace,
			Handler:     g.doSpace,
			Description: "Select/Expand",
			Contexts:    g.typed(' ', nil),
		},
		{
			Key:         ' ',
			Handler:     g.doSpace,
			Description: "Select/Expand",
			Contexts:    g.typed(' ', nil),
		},
		{
			Key:         gocui.KeyEnter,
			Handler:     g.doEnter,
			Description: "Confirm/Details",
			Contexts: map[Context]func() error{
				ContextInput:  g.commitInput,
				ContextHelp:   g.helpClose,
				ContextPicker: g.pickerClose,
				ContextModal:  g.doToggleModal,
				ContextEdit:   g.formNext,
			},
		},
		{Key: gocui.MouseWheelUp, ViewName: "details", Handler: g.doScrollUp},
		{Key: gocui.MouseWheelDown, ViewName: "details", Handler: g.doScrollDown},
	}
}

// editBindings - keys of the bottom bar and the edit form
func (g *Gui) editBindings() []*Binding {
	backspace := map[Context]func() error{
		ContextInput: g.inputBackspace,
		ContextEdit:  g.formBackspace,
	}
	return []*Binding{
		{
			Key:         gocui.KeyCtrlS,
			Handler:     g.blockAction,
			Description: "Apply changes",
			Contexts:    map[Context]func() error{ContextEdit: g.doCommitEdit},
		},
		{Key: gocui.KeyBackspace, Handler: g.blockAction, Contexts: backspace},
		{Key: gocui.KeyBackspace2, Handler: g.blockAction, Contexts: backspace},
	}
}

// actionBindings - dataset and entity actions
func (g *Gui) actionBindings(km *KeybindingManager) []*Binding {
	d := km.disabled
	return []*Binding{
		{
			Key:         '/',
			Handler:     g.doStartFilter,
			Description: "Filter",
			Contexts:    g.typed('/', nil),
		},
		{
			Key:               'e',
			Handler:           g.doBeginEdit,
			Description:       "Edit",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('e', nil),
		},
		{
			Key:               'm',
			Handler:           g.doShowMore,
			Description:       "Show more",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('m', nil),
		},
		{
			Key:               'r',
			Handler:           g.doRefresh,
			Description:       "Refresh",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('r', nil),
		},
		{
			Key:               'w',
			Handler:           g.doSave,
			Description:       "Save",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('w', nil),
		},
		{
			Key:               'W',
			Handler:           g.doSaveAs,
			Description:       "Save as",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('W', nil),
		},
		{
			Key:         'n',
			Handler:     g.doNew,
			Description: "New",
			Contexts:    g.typed('n', nil),
		},
		{
			Key:               'i',
			Handler:           g.doImportPicker,
			Description:       "Import",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('i', nil),
		},
		{
			Key:         'o',
			Handler:     g.doOpenPicker,
			Description: "Open",
			Contexts:    g.typed('o', nil),
		},
		{
			Key:               'x',
			Handler:           g.doPreview,
			Description:       "Preview A2L",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('x', nil),
		},
		{
			Key:               'p',
			Handler:           g.doDescribeProject,
			Description:       "Describe project",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('p', nil),
		},
		{
			Key:               'd',
			Handler:           g.doDescribeModule,
			Description:       "Describe module",
			GetDisabledReason: d.NoDataset,
			Contexts:          g.typed('d', nil),
		},
		{
			Key:               'c',
			Handler:           g.doCopyJSON,
			Description:       "Copy",
			GetDisabledReason: require(d.NoDataset, d.NoItem),
			Contexts:          g.typed('c', nil),
		},
	}
}

// typingBindings makes every printable character not bound above insert
// text while typing.
func (g *Gui) typingBindings(bound []*Binding) []*Binding {
	taken := make(map[rune]bool)
	for _, b := range bound {
		if r, ok := b.Key.(rune); ok {
			taken[r] = true
		}
	}
	var bindings []*Binding
	for ch := rune(33); ch < 127; ch++ {
		if taken[ch] {
			continue
		}
		bindings = append(bindings, &Binding{
			Key:      ch,
			Handler:  g.blockAction,
			Contexts: g.typed(ch, nil),
		})
	}
	return bindings
}

// mouseBindings - click handlers
func (g *Gui) mouseBindings() []*Binding {
	return []*Binding{
		{Key: gocui.MouseLeft, ViewName: "helpModal", Handler: g.doHelpClick},
		{Key: gocui.MouseLeft, ViewName: "picker", Handler: g.doPickerClick},
		{Key: gocui.MouseLeft, ViewName: "tree", Handler: g.doTreeClick},
		{Key: gocui.MouseLeft, ViewName: "details", Handler: g.doDetailsClick},
		{Key: gocui.MouseLeft, ViewName: "commands", Handler: g.doOutsideClick},
		{Key: gocui.MouseLeft, ViewName: "help", Handler: g.doOutsideClick},
		{Key: gocui.MouseLeft, ViewName: "background", Handler: g.doOutsideClick},
	}
}
