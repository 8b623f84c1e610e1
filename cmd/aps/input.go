package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"aps/interpreter-go/pkg/interpreter"
)

// newInputReader returns the line reader behind INPUT. Terminals get liner
// with history; anything else is read line by line and the prompt is written
// to out.
func newInputReader(in *os.File, out io.Writer) (interpreter.InputFunc, func()) {
	if isatty.IsTerminal(in.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		return lineEditorInput()
	}
	return bufferedInput(in, out), func() {}
}

func lineEditorInput() (interpreter.InputFunc, func()) {
	var ln *liner.State
	input := func(prompt string) (string, error) {
		if ln == nil {
			ln = liner.NewLiner()
			ln.SetCtrlCAborts(true)
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", errEndOfInput
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		return line, nil
	}
	closer := func() {
		if ln != nil {
			ln.Close()
		}
	}
	return input, closer
}

func bufferedInput(in io.Reader, out io.Writer) interpreter.InputFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) (string, error) {
		if prompt != "" {
			if _, err := io.WriteString(out, prompt); err != nil {
				return "", err
			}
		}
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", errEndOfInput
			}
			return line, nil
		}
		if err != nil {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
