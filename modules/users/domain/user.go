// Package domain contains the business entities and rules for users.
// This is the innermost layer - it has no dependencies on outer layers.
package domain

import "time"

// User is the aggregate root for the user bounded context: one Users row
// plus the UserEmails rows that share its id.
type User struct {
	id        UserID
	name      Name
	dob       DateOfBirth
	emails    []Email
	updatedAt time.Time
}

// Reconstitute recreates a User from persistence.
// Emails are copied and sorted so every store yields the same order.
func Reconstitute(id UserID, name Name, dob DateOfBirth, emails []Email, updatedAt time.Time) *User {
	sorted := make([]Email, len(emails))
	copy(sorted, emails)
	return &User{
		id:        id,
		name:      name,
		dob:       dob,
		emails:    SortEmails(sorted),
		updatedAt: updatedAt,
	}
}

func (u *User) ID() UserID           { return u.id }
func (u *User) Name() Name           { return u.name }
func (u *User) DOB() DateOfBirth     { return u.dob }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) Emails() []Email {
	out := make([]Email, len(u.emails))
	copy(out, u.emails)
	return out
}

func (u *User) HasEmail(email Email) bool {
	for _, e := range u.emails {
		if e == email {
			return true
		}
	}
	return false
}

// EmailsToAdd checks requested against the persisted emails. Every persisted
// email must be present in requested; the result holds the requested emails
// that are not yet persisted, in request order.
func (u *User) EmailsToAdd(requested []Email) ([]Email, error) {
	want := make(map[Email]struct{}, len(requested))
	for _, e := range requested {
		want[e] = struct{}{}
	}

	var issues []Issue
	for _, e := range u.emails {
		if _, ok := want[e]; !ok {
			issues = append(issues, Issue{
				Path:    "emails",
				Code:    "email_removal",
				Message: "you are not allowed to remove an email",
			})
			break
		}
	}
	if len(issues) > 0 {
		return nil, InvalidRequest("you are not allowed to remove an email", issues...)
	}

	added := make([]Email, 0, len(requested))
	for _, e := range requested {
		if !u.HasEmail(e) {
			added = append(added, e)
		}
	}
	return added, nil
}
