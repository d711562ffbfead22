// Package validation holds the service-level input rules for users and
// reimbursements. It replaces ad-hoc per-call checks with one explicit rule
// per declared field, returning a structured list of violations so callers
// can report every problem at once.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
)

// Violation describes a single failed rule on a named field.
type Violation struct {
	Field   string
	Message string
}

// Violations is the result of an entity check; empty means valid.
type Violations []Violation

func (vs Violations) String() string {
	msgs := make([]string, 0, len(vs))
	for _, v := range vs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validator is the rule set injected into each service at construction.
// Tests substitute their own implementation instead of rebinding globals.
type Validator interface {
	ValidID(id int64) bool
	NonEmpty(ss ...string) bool
	CheckUser(u domain.User, requireID bool) Violations
	CheckReimbursement(r domain.Reimbursement, requireID bool) Violations
	IsUserField(key string) bool
	IsReimbField(key string) bool
}

// Rules is the production Validator.
type Rules struct{}

var _ Validator = Rules{}

// ValidID reports whether id is a usable entity identity: a positive integer.
func (Rules) ValidID(id int64) bool {
	return id > 0
}

// NonEmpty reports whether every argument is a non-empty string after
// trimming. Zero arguments is vacuously invalid.
func (Rules) NonEmpty(ss ...string) bool {
	if len(ss) == 0 {
		return false
	}
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

// ParseID converts a raw id string from the boundary into an entity id.
// Zero, negatives, fractions ("3.14"), and non-numeric garbage ("NaN") are
// all rejected the same way: the caller gets a non-nil error and must treat
// the input as a bad request before any store access happens.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q is not an integer", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id %d is not positive", id)
	}
	return id, nil
}

// CheckUser validates one rule per declared User field. The id rule is
// skipped when requireID is false (ids are server-assigned on create).
func (r Rules) CheckUser(u domain.User, requireID bool) Violations {
	var vs Violations
	if requireID && !r.ValidID(u.ID) {
		vs = append(vs, Violation{Field: "id", Message: "must be a positive integer"})
	}
	vs = appendRequired(vs, "username", u.Username)
	vs = appendRequired(vs, "password", u.Password)
	vs = appendRequired(vs, "first_name", u.FirstName)
	vs = appendRequired(vs, "last_name", u.LastName)
	vs = appendRequired(vs, "email", u.Email)
	if u.Role != "" && !domain.KnownRole(u.Role) {
		vs = append(vs, Violation{Field: "role", Message: "is not a recognized role"})
	}
	return vs
}

// CheckReimbursement validates one rule per declared Reimbursement field.
// Resolver names are intentionally unchecked here: they are empty while
// Pending and validated by the resolve path itself.
func (r Rules) CheckReimbursement(rb domain.Reimbursement, requireID bool) Violations {
	var vs Violations
	if requireID && !r.ValidID(rb.ID) {
		vs = append(vs, Violation{Field: "id", Message: "must be a positive integer"})
	}
	if rb.Amount <= 0 {
		vs = append(vs, Violation{Field: "amount", Message: "must be greater than zero"})
	}
	vs = appendRequired(vs, "description", rb.Description)
	vs = appendRequired(vs, "receipt", rb.Receipt)
	vs = appendRequired(vs, "author_first", rb.AuthorFirst)
	vs = appendRequired(vs, "author_last", rb.AuthorLast)
	if rb.Status != "" && !domain.KnownStatus(rb.Status) {
		vs = append(vs, Violation{Field: "status", Message: "is not a recognized status"})
	}
	if !domain.KnownType(rb.Type) {
		vs = append(vs, Violation{Field: "type", Message: "is not a recognized reimbursement type"})
	}
	return vs
}

func appendRequired(vs Violations, field, value string) Violations {
	if strings.TrimSpace(value) == "" {
		vs = append(vs, Violation{Field: field, Message: "must be a non-empty string"})
	}
	return vs
}

// userFields and reimbFields are the declared queryable field names for the
// unique-key lookup contract. Unknown keys are rejected as bad requests.
// password is deliberately not queryable.
var userFields = map[string]struct{}{
	"id":         {},
	"username":   {},
	"first_name": {},
	"last_name":  {},
	"email":      {},
	"role":       {},
}

var reimbFields = map[string]struct{}{
	"id":             {},
	"description":    {},
	"receipt":        {},
	"author_first":   {},
	"author_last":    {},
	"resolver_first": {},
	"resolver_last":  {},
	"status":         {},
	"type":           {},
}

// IsUserField reports whether key names a declared User field.
func (Rules) IsUserField(key string) bool {
	_, ok := userFields[key]
	return ok
}

// IsReimbField reports whether key names a declared Reimbursement field.
func (Rules) IsReimbField(key string) bool {
	_, ok := reimbFields[key]
	return ok
}
