package main

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// cleanClipboardText drops control characters and RTF markup and folds line
// endings to \n. Element text is single line in the editor, so newlines
// become spaces when flatten is set.
func cleanClipboardText(text string, flatten bool) string {
	if text == "" {
		return text
	}
	text = stripRTF(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' && flatten:
			result.WriteRune(' ')
		case r == '\t':
			result.WriteRune(' ')
		case r == '\n' || r >= 32:
			result.WriteRune(r)
		}
	}
	return result.String()
}

func stripRTF(text string) string {
	if !strings.HasPrefix(text, "{\\rtf") {
		return text
	}
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{', '}':
			continue
		case '\\':
			if i+1 >= len(runes) {
				continue
			}
			next := runes[i+1]
			if (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') {
				j := i + 1
				for j < len(runes) && ((runes[j] >= 'a' && runes[j] <= 'z') || (runes[j] >= 'A' && runes[j] <= 'Z') || (runes[j] >= '0' && runes[j] <= '9') || runes[j] == '-') {
					j++
				}
				if word := string(runes[i+1 : j]); word == "par" || word == "line" {
					result.WriteRune('\n')
				}
				if j < len(runes) && runes[j] == ' ' {
					j++
				}
				i = j - 1
				continue
			}
			if next == '\\' || next == '{' || next == '}' {
				result.WriteRune(next)
				i++
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
