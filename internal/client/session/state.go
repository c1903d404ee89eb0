package session

import "github.com/dmitrijs2005/bankfront/internal/client/models"

type Status int

const (
	Uninitialized Status = iota
	Loading
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// State is an immutable snapshot handed to readers and subscribers.
type State struct {
	Status  Status
	User    *models.User
	Loading bool
}

// IsAuthenticated implies User is non-nil.
func (s State) IsAuthenticated() bool {
	return s.Status == Authenticated && s.User != nil
}
