/*
Package datastar encodes server-sent events for the Datastar hypermedia framework
and reads the signals Datastar sends with each request.

Events are created with one function per event kind: MergeFragments,
RemoveFragments, MergeSignals (or MarshalSignals for Go values),
RemoveSignals and ExecuteScript. Each takes an options struct whose zero value
uses the protocol defaults; only fields that differ from the defaults are
written to the wire. Durations and event IDs are validated when they are
created with NewDuration and NewEventID, so encoding itself can't fail.

An Event is written to the client using a Generator, obtained by upgrading an
http.ResponseWriter:

	func handler(w http.ResponseWriter, r *http.Request) {
		var signals struct {
			Name string `json:"name"`
		}
		if err := datastar.ReadSignals(r, &signals); err != nil {
			datastar.Reject(w, err)
			return
		}

		g, err := datastar.Upgrade(w)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		_ = g.MergeFragments(`<div id="greeting">Hello, `+signals.Name+`!</div>`, datastar.MergeFragmentsOptions{})
	}

For responses with a fixed set of events, Response can be used as an
http.Handler instead. Subpackage dsfiber provides the same helpers for Fiber.
*/
package datastar
