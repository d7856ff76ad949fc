// Package readpassword reads a password from the terminal, from stdin, from
// one or more passfiles or from an external program.
package readpassword

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

const (
	// 2kB limit like EncFS
	maxPasswordLen = 2048
)

// ErrEmptyPassword is returned when we got an empty password from any source.
var ErrEmptyPassword = errors.New("password is empty")

// Once tries to get a password from the user, either from the terminal,
// extpass, passfile or stdin. Leave "prompt" empty to use the default
// "Password: " prompt.
func Once(extpass []string, passfile []string, prompt string) ([]byte, error) {
	if len(passfile) != 0 {
		return readPassFileConcatenate(passfile)
	}
	if len(extpass) != 0 {
		return readPasswordExtpass(extpass)
	}
	if prompt == "" {
		prompt = "Password"
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return readPasswordStdin(os.Stdin, prompt)
	}
	return readPasswordTerminal(prompt + ": ")
}

// readPasswordTerminal reads a line from the terminal.
// Fails on read error or empty result.
func readPasswordTerminal(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	fmt.Fprint(os.Stderr, prompt)
	// term.ReadPassword removes the trailing newline
	p, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("could not read password from terminal: %v", err)
	}
	fmt.Fprint(os.Stderr, "\n")
	if len(p) == 0 {
		return nil, ErrEmptyPassword
	}
	return p, nil
}

// readPasswordStdin reads a line from "r". Fails on read error or empty
// result.
func readPasswordStdin(r io.Reader, prompt string) ([]byte, error) {
	tlog.Info.Printf("Reading %s from stdin", strings.ToLower(prompt))
	p, err := readLineUnbuffered(r)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("got empty %s from stdin: %w", strings.ToLower(prompt), ErrEmptyPassword)
	}
	return p, nil
}

// readPasswordExtpass executes the "extpass" program and returns the first
// line of the output. A single element is split on spaces, more elements
// are taken as program and arguments.
func readPasswordExtpass(extpass []string) ([]byte, error) {
	tlog.Info.Println("Reading password from extpass program")
	var parts []string
	if len(extpass) == 1 {
		parts = strings.Split(extpass[0], " ")
	} else {
		parts = extpass
	}
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stderr = os.Stderr
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("extpass pipe setup failed: %v", err)
	}
	err = cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("extpass cmd start failed: %v", err)
	}
	p, err := readLineUnbuffered(pipe)
	if err != nil {
		return nil, err
	}
	pipe.Close()
	err = cmd.Wait()
	if err != nil {
		return nil, fmt.Errorf("extpass program returned an error: %v", err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("extpass: %w", ErrEmptyPassword)
	}
	return p, nil
}

// readLineUnbuffered reads single bytes from "r" until it gets "\n" or EOF.
// The returned string does NOT contain the trailing "\n".
func readLineUnbuffered(r io.Reader) (l []byte, err error) {
	b := make([]byte, 1)
	for {
		if len(l) > maxPasswordLen {
			return nil, fmt.Errorf("fatal: maximum password length of %d bytes exceeded", maxPasswordLen)
		}
		n, err := r.Read(b)
		if err == io.EOF {
			return l, nil
		}
		if err != nil {
			return nil, fmt.Errorf("readLineUnbuffered: %v", err)
		}
		if n == 0 {
			continue
		}
		if b[0] == '\n' {
			return bytes.TrimSuffix(l, []byte("\r")), nil
		}
		l = append(l, b...)
	}
}
