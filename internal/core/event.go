package core

import (
	"strconv"
	"time"
)

// Event describes one committed ledger use case.
type Event struct {
	ID         string
	Owner      Owner
	Operation  string
	Entities   []EntityRef
	OccurredAt time.Time
}

func (r EntityRef) String() string {
	return string(r.Kind) + ":" + strconv.FormatInt(r.ID, 10)
}

// Ref returns the reference of any owned entity with a known id.
func Ref(kind Kind, id int64) EntityRef {
	return EntityRef{Kind: kind, ID: id}
}
