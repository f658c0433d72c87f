// Package term определяет, подключен ли вывод к терминалу.
package term

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter — writer с файловым дескриптором, например *os.File.
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// IsTerminal сообщает, что w пишет в терминал. Буферы и пайпы терминалом не считаются.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// StyledOutput решает, раскрашивать ли вывод: только для терминала и без NO_COLOR.
func StyledOutput(w io.Writer) bool {
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	return IsTerminal(w)
}
