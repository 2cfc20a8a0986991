package datastar

// MergeMode is the strategy the client uses to combine a fragment with its target element.
type MergeMode uint8

const (
	// MergeModeMorph morphs the fragment into the target element. It is the default.
	MergeModeMorph MergeMode = iota
	// MergeModeInner replaces the target's inner HTML with the fragment.
	MergeModeInner
	// MergeModeOuter replaces the target's outer HTML with the fragment.
	MergeModeOuter
	// MergeModePrepend prepends the fragment to the target's children.
	MergeModePrepend
	// MergeModeAppend appends the fragment to the target's children.
	MergeModeAppend
	// MergeModeBefore inserts the fragment before the target.
	MergeModeBefore
	// MergeModeAfter inserts the fragment after the target.
	MergeModeAfter
	// MergeModeUpsertAttributes updates the target's attributes to match the fragment.
	MergeModeUpsertAttributes
)

var mergeModeNames = [...]string{
	MergeModeMorph:            "morph",
	MergeModeInner:            "inner",
	MergeModeOuter:            "outer",
	MergeModePrepend:          "prepend",
	MergeModeAppend:           "append",
	MergeModeBefore:           "before",
	MergeModeAfter:            "after",
	MergeModeUpsertAttributes: "upsertAttributes",
}

// String returns the merge mode's wire name.
func (m MergeMode) String() string {
	if int(m) >= len(mergeModeNames) {
		return mergeModeNames[MergeModeMorph]
	}
	return mergeModeNames[m]
}

// ParseMergeMode returns the merge mode with the given wire name.
func ParseMergeMode(name string) (MergeMode, bool) {
	for m, n := range mergeModeNames {
		if n == name {
			return MergeMode(m), true
		}
	}
	return MergeModeMorph, false
}

// MergeFragmentsOptions configures a merge-fragments event.
// The zero value uses the protocol defaults.
type MergeFragmentsOptions struct {
	EventID       EventID
	RetryDuration Duration
	// MergeMode defaults to MergeModeMorph.
	MergeMode MergeMode
	// Selector targets the element to merge into. If empty, the client
	// matches fragments to elements by ID.
	Selector string
	// SettleDuration defaults to DefaultSettleDuration.
	SettleDuration    Duration
	UseViewTransition bool
}

// MergeFragments creates an event that merges the given HTML fragments into the page.
// Every line of fragments becomes its own data line.
func MergeFragments(fragments string, opts MergeFragmentsOptions) Event {
	e := newEvent(EventTypeMergeFragments, opts.EventID, opts.RetryDuration)

	if opts.MergeMode != MergeModeMorph {
		e.push(keyMergeMode, opts.MergeMode.String())
	}
	if opts.Selector != "" {
		e.pushLines(keySelector, opts.Selector)
	}
	if opts.SettleDuration.differsFrom(defaultSettleMillis) {
		e.push(keySettleDuration, opts.SettleDuration.format())
	}
	if opts.UseViewTransition {
		e.push(keyUseViewTransition, "true")
	}
	e.pushLines(keyFragments, fragments)

	return e
}

// RemoveFragmentsOptions configures a remove-fragments event.
// The zero value uses the protocol defaults.
type RemoveFragmentsOptions struct {
	EventID           EventID
	RetryDuration     Duration
	SettleDuration    Duration
	UseViewTransition bool
}

// RemoveFragments creates an event that removes the elements matching selector from the page.
func RemoveFragments(selector string, opts RemoveFragmentsOptions) Event {
	e := newEvent(EventTypeRemoveFragments, opts.EventID, opts.RetryDuration)

	e.pushValue(keySelector, selector)
	if opts.SettleDuration.differsFrom(defaultSettleMillis) {
		e.push(keySettleDuration, opts.SettleDuration.format())
	}
	if opts.UseViewTransition {
		e.push(keyUseViewTransition, "true")
	}

	return e
}
