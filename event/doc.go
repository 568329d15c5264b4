// Package event decouples engine signals from the code that reacts to them.
//
// A System maps event kinds to ordered callback lists. Producers call Fire,
// which never blocks: the event is queued on a bounded channel and delivered
// later on the System's single dispatcher goroutine. Callbacks for one event
// run synchronously, in registration order, before the next event is popped.
//
// Basic usage:
//
//	sys := event.NewSystem()
//	sys.Register(event.KindError, func(e *event.Event) {
//	    args := e.Args.(event.ErrorArgs)
//	    log.Printf("%s: %s", args.Location, args.Message)
//	})
//	sys.Launch()
//	defer sys.Halt()
//
//	event.ReportError(sys, "shader compile failed")
//
// A panicking callback is recovered and counted; the dispatcher keeps
// running. When the queue is full, Fire drops the event and returns
// ErrQueueFull.
package event
