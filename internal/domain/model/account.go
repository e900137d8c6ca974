package model

import (
	"time"
)

// Variant selects the account collection an operation works on.
type Variant string

const (
	VariantStudent Variant = "student"
	VariantFaculty Variant = "faculty"
)

// Token roles.
const (
	RoleStudent        = "student"
	RoleFaculty        = "faculty"
	RoleRepresentative = "representative"
)

func (v Variant) Valid() bool {
	return v == VariantStudent || v == VariantFaculty
}

// Account is a stored credential record. IsRepresentative is only ever true
// for students and Position is only set for faculty.
type Account struct {
	ID               string
	Variant          Variant
	Email            string
	UserName         string
	Handle           string
	PasswordHash     string
	IsRepresentative bool
	Position         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AccountPatch lists the fields an update may change. Nil means unchanged.
type AccountPatch struct {
	PasswordHash *string
}

// Student is the redacted listing view of a student account.
type Student struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	UserName         string    `json:"userName"`
	Handle           string    `json:"handle"`
	IsRepresentative bool      `json:"isRepresentative"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Faculty is the redacted listing view of a faculty account.
type Faculty struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"userName"`
	Handle    string    `json:"handle"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Account) Student() Student {
	return Student{
		ID:               a.ID,
		Email:            a.Email,
		UserName:         a.UserName,
		Handle:           a.Handle,
		IsRepresentative: a.IsRepresentative,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (a *Account) Faculty() Faculty {
	return Faculty{
		ID:        a.ID,
		Email:     a.Email,
		UserName:  a.UserName,
		Handle:    a.Handle,
		Position:  a.Position,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// View returns the listing view matching the account's variant.
func (a *Account) View() interface{} {
	if a.Variant == VariantFaculty {
		return a.Faculty()
	}
	return a.Student()
}
