package main

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type model struct {
	ctx context.Context

	width   int
	height  int
	cursorX int
	cursorY int

	board *Board
	gen   PathGenerator
	cfg   *Config
	log   *slog.Logger

	mode       Mode
	help       bool
	helpScroll int

	goalInput    string
	genMode      GenerationMode
	numPaths     int
	layers       int
	lastRequest  GenerationRequest
	hasRequested bool

	moveID     string
	moveOrigin point

	confirmAction ConfirmAction

	lastClickAt   time.Time
	lastClickCell point

	errorMessage   string
	successMessage string

	initCmd tea.Cmd
}

type generationDoneMsg struct {
	res *GenerationResult
	err error
}

type configReloadedMsg struct {
	cfg *Config
}
