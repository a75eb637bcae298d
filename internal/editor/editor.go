package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rogersnm/taskdesk/internal/markdown"
	"github.com/rogersnm/taskdesk/internal/model"
)

// editorCmd picks EDITOR, then VISUAL, then vi. Blank values count as unset.
func editorCmd() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}
	return "vi"
}

// Open runs the user's editor on path. EDITOR may carry arguments, e.g. "code --wait".
func Open(path string) error {
	editor := editorCmd()
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q: %w", editor, err)
	}
	return nil
}

// EditRecord writes r to a temporary markdown file, opens it in the editor
// and returns the edited record.
func EditRecord(r model.Record) (model.Record, error) {
	data, err := markdown.EncodeRecord(r)
	if err != nil {
		return model.Record{}, err
	}
	f, err := os.CreateTemp("", fmt.Sprintf("taskdesk-%d-*.md", r.ID))
	if err != nil {
		return model.Record{}, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return model.Record{}, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return model.Record{}, err
	}

	if err := Open(path); err != nil {
		return model.Record{}, err
	}

	edited, err := os.Open(path)
	if err != nil {
		return model.Record{}, fmt.Errorf("reading edited file: %w", err)
	}
	defer edited.Close()
	return markdown.DecodeRecord(edited, r)
}
