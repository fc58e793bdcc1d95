package client

import (
	"time"

	"notepad/notepad/sources/psql/models"
)

type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

type Status struct {
	Message string
	Kind    StatusKind
}

// View draws controller state. The controller calls it while holding its
// lock, so a View must not call back into the Controller.
type View interface {
	RenderList(pages []models.PageSummary, currentID uint)
	SetFields(title, content string)
	ShowEditor()
	ShowEmpty()
	FocusTitle()
	// RenderPreview receives raw Markdown; turning it into output is up to the view.
	RenderPreview(markdown string)
	SetPreviewMode(on bool)
	ShowStatus(s Status)
	ClearStatus()
}

// Confirmer asks the user a yes/no question. It is called without the
// controller lock held, since it may block on input.
type Confirmer interface {
	Confirm(question string) bool
}

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks; tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
