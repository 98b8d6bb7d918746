// Package editor opens files in the user's editor.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command returns the editor command line from $VISUAL or $EDITOR, falling
// back to vi. Arguments such as "code --wait" are honoured.
func Command() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// Open runs the editor on path and waits for it to exit.
func Open(path string) error {
	argv := Command()
	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q: %w", strings.Join(argv, " "), err)
	}
	return nil
}
