package icons

import "testing"

func TestSetEnabled(t *testing.T) {
	originalEnabled := enabled
	defer func() { enabled = originalEnabled }()

	SetEnabled(true)
	if !IsEnabled() {
		t.Error("IsEnabled() should be true after SetEnabled(true)")
	}

	SetEnabled(false)
	if IsEnabled() {
		t.Error("IsEnabled() should be false after SetEnabled(false)")
	}

	// Title icons are cleared
	if TREE_ICON != "" {
		t.Error("TREE_ICON should be empty when disabled")
	}
	if EDIT != "" {
		t.Error("EDIT should be empty when disabled")
	}

	// Status and navigation icons fall back to ASCII
	if SUCCESS != "✓" {
		t.Errorf("SUCCESS should be '✓' when disabled, got %q", SUCCESS)
	}
	if ERROR != "✗" {
		t.Errorf("ERROR should be '✗' when disabled, got %q", ERROR)
	}
	if ARROW_EXPAND != "+" || ARROW_COLLAPSE != "-" {
		t.Errorf("arrows should be '+' and '-' when disabled, got %q and %q", ARROW_EXPAND, ARROW_COLLAPSE)
	}
}

func TestPatchForNerdFontsV2(t *testing.T) {
	origClosed, origOpen, origDocument, origEdit := FOLDER_CLOSED, FOLDER_OPEN, DOCUMENT, EDIT
	defer func() {
		FOLDER_CLOSED, FOLDER_OPEN, DOCUMENT, EDIT = origClosed, origOpen, origDocument, origEdit
	}()

	PatchForNerdFontsV2()

	if FOLDER_CLOSED != "\uf07b" {
		t.Errorf("FOLDER_CLOSED should be patched for v2, got %q", FOLDER_CLOSED)
	}
	if FOLDER_OPEN != "\uf07c" {
		t.Errorf("FOLDER_OPEN should be patched for v2, got %q", FOLDER_OPEN)
	}
	if DOCUMENT != "\uf0f6" {
		t.Errorf("DOCUMENT should be patched for v2, got %q", DOCUMENT)
	}
	if EDIT != "\uf040" {
		t.Errorf("EDIT should be patched for v2, got %q", EDIT)
	}
}
