package metrics

// Attribute keys shared by every instrument.
const (
	AttrMethod   = "method"
	AttrRoute    = "route"
	AttrStatus   = "status"
	AttrProvider = "provider"
	AttrOutcome  = "outcome"
)

// Target outcomes recorded under AttrOutcome.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)
