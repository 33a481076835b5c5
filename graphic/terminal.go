package graphic

import (
	"os"
	"strings"
)

// normalizeTerminal works around terminal settings that break termbox and
// returns a function restoring the original environment.
func normalizeTerminal() (func(), error) {
	prevTERMINFO, hadTERMINFO := os.LookupEnv("TERMINFO")

	if strings.HasPrefix(os.Getenv("TERM"), "tmux") {
		// Some TERMINFO values combined with a tmux TERM make termbox fail.
		if err := os.Unsetenv("TERMINFO"); err != nil {
			return nil, err
		}
	}

	restore := func() {
		if hadTERMINFO {
			os.Setenv("TERMINFO", prevTERMINFO)
		}
	}

	return restore, nil
}
