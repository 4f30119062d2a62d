package command

// Decision represents the pure outcome of checking a proposed transition.
// An empty decision is an acceptance.
type Decision struct {
	Rejections []Rejection
}

// Rejection captures a domain-level reason a transition was declined.
type Rejection struct {
	Code    string
	Message string
	// Field names the offending state field when the code is field-specific.
	Field string
}

// Accept returns an accepting decision.
func Accept() Decision {
	return Decision{}
}

// Reject returns a decision that carries the provided rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{Rejections: append([]Rejection(nil), rejections...)}
}

// Accepted reports whether the decision carries no rejections.
func (d Decision) Accepted() bool {
	return len(d.Rejections) == 0
}

// Reason returns the first rejection, or false for an accepted decision.
func (d Decision) Reason() (Rejection, bool) {
	if len(d.Rejections) == 0 {
		return Rejection{}, false
	}
	return d.Rejections[0], true
}

// String renders the decision for logs.
func (d Decision) String() string {
	reason, rejected := d.Reason()
	if !rejected {
		return "accepted"
	}
	if reason.Field != "" {
		return "rejected: " + reason.Code + " (" + reason.Field + ")"
	}
	return "rejected: " + reason.Code
}
