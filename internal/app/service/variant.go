package service

import (
	"campus_auth/internal/common"
	"campus_auth/internal/domain/model"
	"campus_auth/internal/domain/policy"
	"errors"
)

// Messages are the caller-facing texts that differ between account variants.
type Messages struct {
	Registered     string
	RegisterFailed string
	Duplicate      string
	LoggedIn       string
	UnknownEmail   string
	UnknownAccount string
}

// Variant describes one account collection and the role its tokens carry.
type Variant struct {
	Kind     model.Variant
	Role     string
	Messages Messages

	// prepare validates variant-only input and fills the derived fields of a
	// new account. It runs after the domain check and before any storage call.
	prepare func(p *policy.EmailPolicy, req RegisterRequest, account *model.Account) error
}

var StudentVariant = Variant{
	Kind: model.VariantStudent,
	Role: model.RoleStudent,
	Messages: Messages{
		Registered:     "Student email registration is successful",
		RegisterFailed: "Failed to register student",
		Duplicate:      "Student email is already registered",
		LoggedIn:       "Student login successful",
		UnknownEmail:   "Invalid student email",
		UnknownAccount: "Invalid Student email",
	},
	prepare: func(_ *policy.EmailPolicy, req RegisterRequest, account *model.Account) error {
		account.IsRepresentative = req.IsRepresentative != nil && *req.IsRepresentative
		return nil
	},
}

var FacultyVariant = Variant{
	Kind: model.VariantFaculty,
	Role: model.RoleFaculty,
	Messages: Messages{
		Registered:     "Faculty email registration successful",
		RegisterFailed: "Failed to register faculty",
		Duplicate:      "Faculty email already exists",
		LoggedIn:       "Faculty login successful",
		UnknownEmail:   "Invalid faculty email",
		UnknownAccount: "Invalid Faculty email",
	},
	prepare: func(p *policy.EmailPolicy, req RegisterRequest, account *model.Account) error {
		position, err := p.Position(req.Email)
		if err != nil {
			reason := "position not in allow-list"
			if errors.Is(err, policy.ErrMalformedEmail) {
				reason = "malformed address"
			}
			return common.Reject(common.ErrInvalidPosition, "Invalid faculty email", "email", req.Email, "reason", reason)
		}
		account.Position = position
		return nil
	},
}

// VariantFor returns the descriptor for kind.
func VariantFor(kind model.Variant) (Variant, bool) {
	switch kind {
	case model.VariantStudent:
		return StudentVariant, true
	case model.VariantFaculty:
		return FacultyVariant, true
	}
	return Variant{}, false
}
