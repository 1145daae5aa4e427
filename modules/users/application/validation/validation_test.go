package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rai/user-records-go/modules/users/application/validation"
	"github.com/rai/user-records-go/modules/users/domain"
)

const validID = "123e4567-e89b-12d3-a456-426614174000"

type ValidatorSuite struct {
	suite.Suite
	v *validation.Validator
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.v = validation.New()
}

func validFields() validation.UserFields {
	return validation.UserFields{
		FirstName: "John",
		LastName:  "Doe",
		DOB:       "1990-01-01",
		Emails:    []string{"john@example.com"},
	}
}

func (s *ValidatorSuite) issues(err error) []domain.Issue {
	s.Require().True(errors.Is(err, domain.ErrInvalidRequest), "expected InvalidRequest, got %v", err)
	var derr *domain.Error
	s.Require().True(errors.As(err, &derr))
	return derr.Issues
}

func (s *ValidatorSuite) TestValidateCreate() {
	s.Run("valid fields produce a profile", func() {
		profile, err := s.v.ValidateCreate(validFields())
		s.Require().NoError(err)
		s.Equal("John", profile.Name.FirstName())
		s.Equal("Doe", profile.Name.LastName())
		s.Equal(domain.DateOfBirth("1990-01-01"), profile.DOB)
		s.Equal([]domain.Email{"john@example.com"}, profile.Emails)
	})

	s.Run("three emails are accepted", func() {
		f := validFields()
		f.Emails = []string{"a@example.com", "b@example.com", "c@example.com"}
		_, err := s.v.ValidateCreate(f)
		s.NoError(err)
	})

	s.Run("empty object reports every field", func() {
		_, err := s.v.ValidateCreate(validation.UserFields{})
		s.Equal(validation.MessageInvalidUserData, err.Error())

		paths := map[string]string{}
		for _, issue := range s.issues(err) {
			paths[issue.Path] = issue.Code
		}
		s.Equal(map[string]string{
			"firstName": "required",
			"lastName":  "required",
			"dob":       "required",
			"emails":    "required",
		}, paths)
	})
}

func (s *ValidatorSuite) TestValidateCreateRejections() {
	tests := []struct {
		name   string
		mutate func(f *validation.UserFields)
		path   string
		code   string
	}{
		{"first name with digits", func(f *validation.UserFields) { f.FirstName = "J0hn" }, "firstName", "alpha"},
		{"first name with space", func(f *validation.UserFields) { f.FirstName = "Mary Ann" }, "firstName", "alpha"},
		{"last name with hyphen", func(f *validation.UserFields) { f.LastName = "Smith-Jones" }, "lastName", "alpha"},
		{"dob in wrong format", func(f *validation.UserFields) { f.DOB = "01/01/1990" }, "dob", "dob"},
		{"dob with time", func(f *validation.UserFields) { f.DOB = "1990-01-01T00:00:00Z" }, "dob", "dob"},
		{"no emails", func(f *validation.UserFields) { f.Emails = []string{} }, "emails", "min"},
		{"four emails", func(f *validation.UserFields) {
			f.Emails = []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
		}, "emails", "max"},
		{"duplicate emails", func(f *validation.UserFields) {
			f.Emails = []string{"a@example.com", "a@example.com"}
		}, "emails", "unique"},
		{"malformed second email", func(f *validation.UserFields) {
			f.Emails = []string{"a@example.com", "not-an-email"}
		}, "emails[1]", "email"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			f := validFields()
			tt.mutate(&f)

			_, err := s.v.ValidateCreate(f)
			issues := s.issues(err)
			s.Require().Len(issues, 1)
			s.Equal(tt.path, issues[0].Path)
			s.Equal(tt.code, issues[0].Code)
			s.NotEmpty(issues[0].Message)
		})
	}
}

func (s *ValidatorSuite) TestNameMessage() {
	f := validFields()
	f.FirstName = "J0hn"
	_, err := s.v.ValidateCreate(f)
	issues := s.issues(err)
	s.Require().Len(issues, 1)
	s.Equal("First name must only contain letters (no spaces or special characters)", issues[0].Message)
}

func (s *ValidatorSuite) TestValidateUpdate() {
	s.Run("valid update", func() {
		id, profile, err := s.v.ValidateUpdate(validID, validFields())
		s.Require().NoError(err)
		s.Equal(validID, id.String())
		s.Len(profile.Emails, 1)
	})

	s.Run("bad id is reported alongside field issues", func() {
		f := validFields()
		f.DOB = "yesterday"
		_, _, err := s.v.ValidateUpdate("invalid-id", f)
		s.Equal(validation.MessageInvalidUserData, err.Error())

		issues := s.issues(err)
		s.Require().Len(issues, 2)
		s.Equal("userId", issues[0].Path)
		s.Equal("uuid", issues[0].Code)
		s.Equal("dob", issues[1].Path)
	})
}

func (s *ValidatorSuite) TestValidateUserID() {
	s.Run("valid id", func() {
		id, err := s.v.ValidateUserID(validID)
		s.Require().NoError(err)
		s.Equal(validID, id.String())
	})

	s.Run("malformed id", func() {
		_, err := s.v.ValidateUserID("invalid-id")
		s.Equal(validation.MessageInvalidUserID, err.Error())
		issues := s.issues(err)
		s.Require().Len(issues, 1)
		s.Equal("userId", issues[0].Path)
		s.Equal("uuid", issues[0].Code)
	})

	s.Run("empty id", func() {
		_, err := s.v.ValidateUserID("")
		issues := s.issues(err)
		s.Require().Len(issues, 1)
		s.Equal("required", issues[0].Code)
	})
}
