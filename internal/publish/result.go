package publish

// Kind classifies the outcome of a publish attempt. Remediation differs per
// kind, so callers surface it next to the human-readable detail.
type Kind int

const (
	// Published: the post was submitted and confirmed in the feed.
	Published Kind = iota
	// Uncertain: the compose surface closed but the post could not be
	// confirmed in the feed. Treated as success with a caveat; hard
	// confirmation is not possible from the client side.
	Uncertain
	// ResourceUnavailable: the browser could not be started. Fatal for the
	// attempt, not for the process.
	ResourceUnavailable
	// LoginFailed: missing or rejected credentials, or the authenticated
	// page never appeared.
	LoginFailed
	// ComposeFailed: content injection could not be verified after retries.
	ComposeFailed
	// SubmitFailed: no viable submit control, or it never became enabled,
	// or activation left the compose surface open.
	SubmitFailed
)

func (k Kind) String() string {
	switch k {
	case Published:
		return "published"
	case Uncertain:
		return "published (unconfirmed)"
	case ResourceUnavailable:
		return "browser unavailable"
	case LoginFailed:
		return "login failed"
	case ComposeFailed:
		return "compose failed"
	case SubmitFailed:
		return "submit failed"
	default:
		return "unknown"
	}
}

// Workflow stages, reported with every result so the operator knows whether
// to fix credentials, retry, or update locators.
const (
	StageSession = "session"
	StageLogin   = "login"
	StageCompose = "compose"
	StageSubmit  = "submit"
	StageVerify  = "verify"
)

// Result is the classified outcome of one publish attempt. Browser errors
// never escape the workflow; they are folded into Kind plus Detail.
type Result struct {
	Kind   Kind
	Stage  string
	Detail string
}

// Succeeded reports whether the post went out, including the uncertain case.
func (r Result) Succeeded() bool {
	return r.Kind == Published || r.Kind == Uncertain
}

// Qualified reports success without feed confirmation.
func (r Result) Qualified() bool {
	return r.Kind == Uncertain
}

func failure(kind Kind, stage, detail string) Result {
	return Result{Kind: kind, Stage: stage, Detail: detail}
}
