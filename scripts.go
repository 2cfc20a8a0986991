package datastar

import "encoding/json"

// ExecuteScriptOptions configures an execute-script event.
// The zero value uses the protocol defaults.
type ExecuteScriptOptions struct {
	EventID       EventID
	RetryDuration Duration
	// KeepScript keeps the script element in the document after it runs.
	// By default the client removes it.
	KeepScript bool
	// Attributes are added to the script element, one per entry,
	// for example `type="module"`.
	Attributes []string
}

// ExecuteScript creates an event that runs the given script on the client.
// Every line of script becomes its own data line.
func ExecuteScript(script string, opts ExecuteScriptOptions) Event {
	e := newEvent(EventTypeExecuteScript, opts.EventID, opts.RetryDuration)

	if opts.KeepScript {
		e.push(keyAutoRemove, "false")
	}
	for _, a := range opts.Attributes {
		e.pushValue(keyAttributes, a)
	}
	e.pushLines(keyScript, script)

	return e
}

// Redirect creates an event that navigates the client to url.
func Redirect(url string, opts ExecuteScriptOptions) Event {
	// Encoding a string can't fail.
	quoted, _ := json.Marshal(url)
	return ExecuteScript("window.location = "+string(quoted), opts)
}
