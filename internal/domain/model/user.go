package model

import (
	"time"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RolePrincipal Role = "principal"
)

// roleRank gives the capability total order: student < teacher < principal.
var roleRank = map[Role]int{
	RoleStudent:   1,
	RoleTeacher:   2,
	RolePrincipal: 3,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the capabilities of min.
// Unknown roles rank below everything, so checks fail closed.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	HashedPassword  string    `json:"-"` // Not exposed
	Role            Role      `json:"role"`
	Blocked         bool      `json:"blocked"`
	SubjectClassIDs []string  `json:"subject_class_ids,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	SubjectClasses []SubjectClass `json:"subject_classes,omitempty"` // populated view
}
