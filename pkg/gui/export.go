package gui

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// copyJSONAction copies the selected item, or the jq result shown in the
// details panel, to the clipboard.
func (g *Gui) copyJSONAction() error {
	data, err := g.clipboardPayload()
	if err != nil {
		g.logCommand("copy", err.Error(), "error")
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		cmd = exec.Command("xclip", "-selection", "clipboard")
	default:
		g.logCommand("copy", "Clipboard not supported on this platform", "error")
		return nil
	}

	cmd.Stdin = strings.NewReader(data)
	if err := cmd.Run(); err != nil {
		g.logCommand("copy", fmt.Sprintf("Failed to copy: %v", err), "error")
		return nil
	}

	g.logCommand("copy", fmt.Sprintf("Copied %s to clipboard", g.snap.Selected.Name), "success")
	return nil
}

func (g *Gui) clipboardPayload() (string, error) {
	doc, ok := g.detailsDocument()
	if !ok {
		return "", errors.New("no item selected")
	}
	var v any = doc
	if strings.HasPrefix(g.detailsFilter, ".") {
		results, err := runJQ(doc, g.detailsFilter)
		if err != nil {
			return "", errors.Wrap(err, "jq")
		}
		switch len(results) {
		case 0:
			v = nil
		case 1:
			v = results[0]
		default:
			v = results
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}
