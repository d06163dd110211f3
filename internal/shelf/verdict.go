package shelf

// VerdictKind is the outcome of classifying a candidate folder name.
type VerdictKind int

const (
	// VerdictKnown means the candidate is a registered shelf.
	VerdictKnown VerdictKind = iota + 1
	// VerdictAcceptedNew means the candidate is not registered but looks like a shelf.
	VerdictAcceptedNew
	// VerdictRejectedSuspicious means the candidate looks like an artist or album
	// folder (or is missing); the default shelf applies instead.
	VerdictRejectedSuspicious
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictKnown:
		return "known"
	case VerdictAcceptedNew:
		return "accepted_new"
	case VerdictRejectedSuspicious:
		return "rejected_suspicious"
	default:
		return "unknown"
	}
}

// Verdict is produced per classification call and never stored.
type Verdict struct {
	Kind VerdictKind
	// Candidate is the folder name as it was handed in.
	Candidate string
	// Shelf is the shelf to assign: the registered spelling for Known, the
	// normalized candidate for AcceptedNew, the default shelf when rejected.
	Shelf string
	// Heuristic names the rule that rejected the candidate, if any.
	Heuristic string
	// Reason is a human-readable explanation for rejected candidates.
	Reason string
}

// Rejected reports whether the candidate fell back to the default shelf.
func (v Verdict) Rejected() bool {
	return v.Kind == VerdictRejectedSuspicious
}
