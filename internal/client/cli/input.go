package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bankfront/internal/client/services"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errCancelled is returned by forms left empty at their first prompt.
var errCancelled = errors.New("cancelled")

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo. A newline is printed after
// the read to keep the UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// form reads one screen's worth of fields.
type form struct {
	reader *bufio.Reader
	w      io.Writer
}

// first reads the opening field; an empty answer cancels the form.
func (f form) first(prompt string) (string, error) {
	s, err := getSimpleText(f.reader, prompt+" (empty to cancel)", f.w)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errCancelled
	}
	return s, nil
}

func (f form) text(prompt string) (string, error) {
	return getSimpleText(f.reader, prompt, f.w)
}

// textOr returns def for an empty answer.
func (f form) textOr(prompt, def string) (string, error) {
	s, err := f.text(fmt.Sprintf("%s [%s]", prompt, def))
	if err != nil || s != "" {
		return s, err
	}
	return def, nil
}

func (f form) decimal(prompt string) (decimal.Decimal, error) {
	s, err := f.text(prompt)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", services.ErrValidation, s)
	}
	return d, nil
}

// decimalOr returns def for an empty answer.
func (f form) decimalOr(prompt string, def decimal.Decimal) (decimal.Decimal, error) {
	s, err := f.text(fmt.Sprintf("%s [%s]", prompt, def.String()))
	if err != nil {
		return decimal.Zero, err
	}
	if s == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", services.ErrValidation, s)
	}
	return d, nil
}

func (f form) integer(prompt string) (int, error) {
	s, err := f.text(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", services.ErrValidation, s)
	}
	return n, nil
}

// confirm accepts y or yes.
func (f form) confirm(prompt string) (bool, error) {
	s, err := f.text(prompt + " (y/N)")
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return s == "y" || s == "yes", nil
}
