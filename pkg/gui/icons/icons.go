package icons

// Nerd Font icons for the lazya2l UI. They require a Nerd Font to display
// correctly; see https://www.nerdfonts.com/cheat-sheet

var enabled = true

// IsEnabled returns whether icons are enabled
func IsEnabled() bool {
	return enabled
}

// SetEnabled enables or disables icons globally
func SetEnabled(e bool) {
	enabled = e
	if !e {
		disableAllIcons()
	}
}

var (
	// Panel title icons
	TREE_ICON     = "\U000f0645" // 󰙅 (file-tree)
	DETAILS_ICON  = "\U000f0219" // 󰈙 (file-document)
	COMMAND_ICON  = "\U000f018d" // 󰆍 (console)
	KEYBOARD_ICON = "\U000f030c" // 󰌌 (keyboard)
	EDIT          = "\U000f03eb" // 󰏫 (pencil)

	// Tree view icons
	FOLDER_CLOSED = "\U000f024b" // 󰉋
	FOLDER_OPEN   = "\U000f0770" // 󰝰
	DOCUMENT      = "\U000f0219" // 󰈙

	// Status icons
	LOADING = "\U000f0772" // 󰝲 (loading)
	ERROR   = "\U000f0159" // 󰅙 (close-circle)
	SUCCESS = "\U000f0134" // 󰄴 (check-circle)

	// Navigation
	ARROW_EXPAND   = "\U000f0142" // 󰅂
	ARROW_COLLAPSE = "\U000f0140" // 󰅀
)

// disableAllIcons sets all icons to empty strings or ASCII fallbacks
func disableAllIcons() {
	TREE_ICON = ""
	DETAILS_ICON = ""
	COMMAND_ICON = ""
	KEYBOARD_ICON = ""
	EDIT = ""
	FOLDER_CLOSED = ""
	FOLDER_OPEN = ""
	DOCUMENT = ""
	LOADING = "…"
	ERROR = "✗"
	SUCCESS = "✓"
	ARROW_EXPAND = "+"
	ARROW_COLLAPSE = "-"
}

// PatchForNerdFontsV2 updates icons for Nerd Fonts v2 compatibility
func PatchForNerdFontsV2() {
	EDIT = "\uf040"
	FOLDER_CLOSED = "\uf07b"
	FOLDER_OPEN = "\uf07c"
	DOCUMENT = "\uf0f6"
}
