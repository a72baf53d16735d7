package models

import (
	"time"

	"github.com/google/uuid"
)

// Person is a tagged entity with an implicit key.
type Person struct {
	ID        int64
	Name      string `sqlrecord:"full_name"`
	Age       *int32
	Born      time.Time
	Note      string `sqlrecord:"-"`
	internal  bool
	CreatedBy uuid.UUID
}

// Order has an explicit key and a type override.
type Order struct {
	Number string  `sqlrecord:"order_no,pk"`
	Total  float64 `sqlrecord:",type=decimal"`
	Paid   bool
	Notes  []byte
}

// Untracked has no tags and is only generated when named.
type Untracked struct {
	Code int16
}

var _ = Person{}.internal
