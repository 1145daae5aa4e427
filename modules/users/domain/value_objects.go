package domain

import "sort"

// Email is an address owned by a user. Values reaching the domain have
// already passed request validation and are compared byte for byte.
type Email string

func (e Email) String() string { return string(e) }

// Name is a value object representing a user's name.
type Name struct {
	firstName string
	lastName  string
}

func NewName(firstName, lastName string) Name {
	return Name{firstName: firstName, lastName: lastName}
}

func (n Name) FirstName() string { return n.firstName }
func (n Name) LastName() string  { return n.lastName }
func (n Name) FullName() string  { return n.firstName + " " + n.lastName }

// DateOfBirth is a calendar date in YYYY-MM-DD form.
type DateOfBirth string

func (d DateOfBirth) String() string { return string(d) }

// Profile is the caller-supplied portion of a user record.
type Profile struct {
	Name   Name
	DOB    DateOfBirth
	Emails []Email
}

// SortEmails orders emails ascending in place and returns them.
func SortEmails(emails []Email) []Email {
	sort.Slice(emails, func(i, j int) bool { return emails[i] < emails[j] })
	return emails
}

// EmailStrings converts emails to their string form.
func EmailStrings(emails []Email) []string {
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = e.String()
	}
	return out
}
