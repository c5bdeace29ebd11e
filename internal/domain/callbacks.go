package domain

// Severity classifies status updates sent to the caller.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// LoadCallbacks is the sole UI-facing contract of the loaders. Any field
// may be nil; loaders must treat nil callbacks as no-ops.
type LoadCallbacks struct {
	// OnProgress reports (completed, total) plus a short message.
	OnProgress func(current, total int, message string)

	// OnItemLoaded fires after each item finishes enrichment (even partial).
	OnItemLoaded func(item ItemSummary)

	// OnStatusUpdate carries categorized, user-actionable messages.
	OnStatusUpdate func(message string, severity Severity)
}

// Progressf invokes OnProgress if set.
func (c LoadCallbacks) Progressf(current, total int, message string) {
	if c.OnProgress != nil {
		c.OnProgress(current, total, message)
	}
}

// ItemLoaded invokes OnItemLoaded if set.
func (c LoadCallbacks) ItemLoaded(item ItemSummary) {
	if c.OnItemLoaded != nil {
		c.OnItemLoaded(item)
	}
}

// Status invokes OnStatusUpdate if set.
func (c LoadCallbacks) Status(message string, severity Severity) {
	if c.OnStatusUpdate != nil {
		c.OnStatusUpdate(message, severity)
	}
}
