package memory

import "log"

type Status byte

const (
	PENDING Status = iota + 1
	RANKED
	SUBMITTED
	FAILED
	DUPLICATE_SKIPPED
)

func (s Status) ToString() string {
	switch s {
	case PENDING:
		return "pending"
	case RANKED:
		return "ranked"
	case SUBMITTED:
		return "submitted"
	case FAILED:
		return "failed"
	case DUPLICATE_SKIPPED:
		return "duplicate-skipped"
	default:
		log.Panicf("unknown status %d", s)
	}
	return ""
}

// IsTerminal reports whether a proposal in this state leaves the pool.
func (s Status) IsTerminal() bool {
	return s == SUBMITTED || s == DUPLICATE_SKIPPED
}

type AddResult byte

const (
	ADD_ACCEPTED AddResult = iota + 1
	ADD_DUPLICATE
)

func (r AddResult) ToString() string {
	switch r {
	case ADD_ACCEPTED:
		return "accepted"
	case ADD_DUPLICATE:
		return "duplicate"
	default:
		log.Panicf("unknown add result %d", r)
	}
	return ""
}
