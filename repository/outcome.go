package repository

// Outcome is the result of a single mirror run. Only the failing
// stage is recorded, details are logged when failure is detected.
type Outcome int

const (
	Success Outcome = iota
	CloneFailed
	FetchFailed
	RemotesError
	PushFailed
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case CloneFailed:
		return "clone_failed"
	case FetchFailed:
		return "fetch_failed"
	case RemotesError:
		return "remotes_error"
	case PushFailed:
		return "push_failed"
	default:
		return "unknown"
	}
}
