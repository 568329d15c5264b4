package event

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Kind discriminates events. Callbacks are registered per Kind.
type Kind uint8

const (
	// KindNone is the zero Kind. It is never dispatched.
	KindNone Kind = iota

	// KindError reports a non-fatal misuse or failure. Args is ErrorArgs.
	KindError

	// KindAppStart is fired once the application has initialized. Args is AppArgs.
	KindAppStart

	// KindAppStop is fired when the main loop exits. Args is AppArgs.
	KindAppStop

	// KindRenderLoop is fired once per rendered frame. Args is AppArgs.
	KindRenderLoop
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindError:
		return "Error"
	case KindAppStart:
		return "AppStart"
	case KindAppStop:
		return "AppStop"
	case KindRenderLoop:
		return "RenderLoop"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Args is the kind-specific payload carried by an Event.
type Args interface {
	// EventKind returns the Kind this payload belongs to.
	EventKind() Kind
}

// Event is a single signal travelling from a producer to the dispatcher.
// The producer hands ownership to the System on Fire and must not reuse it.
type Event struct {
	Kind Kind
	Args Args
}

// New builds an event whose Kind is taken from its payload.
func New(args Args) *Event {
	if args == nil {
		return &Event{Kind: KindNone}
	}
	return &Event{Kind: args.EventKind(), Args: args}
}

// Location is a source position captured when an error was reported.
type Location struct {
	File     string
	Line     int
	Function string
}

// String formats the location as file:line.
func (l Location) String() string {
	if l.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(l.File), l.Line)
}

// Caller captures the location skip frames above the caller of Caller.
func Caller(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	loc := Location{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		loc.Function = fn.Name()
	}
	return loc
}

// ErrorArgs is the payload of KindError events.
type ErrorArgs struct {
	Message  string
	Location Location
}

// EventKind implements Args.
func (ErrorArgs) EventKind() Kind { return KindError }

// Error makes ErrorArgs usable as an error value.
func (a ErrorArgs) Error() string {
	return fmt.Sprintf("%s (%s)", a.Message, a.Location)
}

// App is the view of the running application handed to lifecycle callbacks.
type App interface {
	Title() string
	Frame() uint64
	Stop()
}

// AppArgs is the payload of application lifecycle events.
type AppArgs struct {
	Kind Kind
	App  App
}

// EventKind implements Args.
func (a AppArgs) EventKind() Kind { return a.Kind }

// Emitter accepts events. *System implements it; tests use recorders.
type Emitter interface {
	Fire(e *Event) error
}

// ReportError fires a KindError event carrying msg and the location of the
// function that called ReportError. A nil emitter is ignored.
func ReportError(em Emitter, msg string) {
	reportError(em, msg, 2)
}

// ReportErrorf is like ReportError with a format string.
func ReportErrorf(em Emitter, format string, args ...any) {
	reportError(em, fmt.Sprintf(format, args...), 2)
}

func reportError(em Emitter, msg string, skip int) {
	if em == nil {
		return
	}
	loc := Caller(skip)
	if err := em.Fire(New(ErrorArgs{Message: msg, Location: loc})); err != nil {
		slogger().Warn("event: error report not queued",
			"message", msg, "location", loc.String(), "err", err)
	}
}
