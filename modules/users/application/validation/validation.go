// Package validation checks caller-supplied user data and turns it into
// typed domain values. Every rejection is a domain InvalidRequest carrying
// one Issue per failing field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rai/user-records-go/modules/users/domain"
)

const (
	MessageInvalidUserData = "Invalid user data"
	MessageInvalidUserID   = "Invalid user id"
)

var dobPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var labels = map[string]string{
	"userId":    "User id",
	"firstName": "First name",
	"lastName":  "Last name",
	"dob":       "Date of birth",
	"emails":    "Emails",
}

// UserFields is the caller-supplied part of a user record.
type UserFields struct {
	FirstName string   `json:"firstName" validate:"required,alpha"`
	LastName  string   `json:"lastName" validate:"required,alpha"`
	DOB       string   `json:"dob" validate:"required,dob"`
	Emails    []string `json:"emails" validate:"required,min=1,max=3,unique,dive,required,email"`
}

type userIDFields struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

type updateFields struct {
	UserID string `json:"userId" validate:"required,uuid"`
	UserFields
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator. It panics if the custom rules cannot be registered,
// which only happens on a programming error.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("dob", func(fl validator.FieldLevel) bool {
		return dobPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register dob validation: %v", err))
	}
	return &Validator{validate: v}
}

// ValidateCreate checks the fields of a new user.
func (v *Validator) ValidateCreate(fields UserFields) (domain.Profile, error) {
	if err := v.check(fields, MessageInvalidUserData); err != nil {
		return domain.Profile{}, err
	}
	return toProfile(fields), nil
}

// ValidateUpdate checks the id and fields of an update. Emails in the
// returned profile are the full requested set.
func (v *Validator) ValidateUpdate(userID string, fields UserFields) (domain.UserID, domain.Profile, error) {
	if err := v.check(updateFields{UserID: userID, UserFields: fields}, MessageInvalidUserData); err != nil {
		return domain.UserID{}, domain.Profile{}, err
	}
	id, err := domain.ParseUserID(userID)
	if err != nil {
		return domain.UserID{}, domain.Profile{}, invalidUserID(userID)
	}
	return id, toProfile(fields), nil
}

// ValidateUserID checks a bare user id.
func (v *Validator) ValidateUserID(userID string) (domain.UserID, error) {
	if err := v.check(userIDFields{UserID: userID}, MessageInvalidUserID); err != nil {
		return domain.UserID{}, err
	}
	id, err := domain.ParseUserID(userID)
	if err != nil {
		return domain.UserID{}, invalidUserID(userID)
	}
	return id, nil
}

func (v *Validator) check(s any, message string) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.InvalidRequest(message, domain.Issue{Code: "invalid", Message: err.Error()})
	}

	issues := make([]domain.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, domain.Issue{
			Path:    fe.Field(),
			Code:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return domain.InvalidRequest(message, issues...)
}

// The uuid tag is stricter than uuid.Parse, so this only fires if the two drift.
func invalidUserID(userID string) error {
	return domain.InvalidRequest(MessageInvalidUserID, domain.Issue{
		Path:    "userId",
		Code:    "uuid",
		Message: fmt.Sprintf("Invalid uuid %q", userID),
	})
}

func describe(fe validator.FieldError) string {
	path := fe.Field()
	label := labels[path]
	if strings.Contains(path, "[") {
		label = "Email"
	}
	if label == "" {
		label = path
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "alpha":
		return label + " must only contain letters (no spaces or special characters)"
	case "dob":
		return "Date of birth must be in YYYY-MM-DD format"
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must contain at most %s item(s)", label, fe.Param())
	case "unique":
		return label + " must not contain duplicates"
	case "email":
		return "Invalid email"
	case "uuid":
		return "Invalid uuid"
	default:
		return fmt.Sprintf("%s failed %q validation", label, fe.Tag())
	}
}

func toProfile(f UserFields) domain.Profile {
	emails := make([]domain.Email, len(f.Emails))
	for i, e := range f.Emails {
		emails[i] = domain.Email(e)
	}
	return domain.Profile{
		Name:   domain.NewName(f.FirstName, f.LastName),
		DOB:    domain.DateOfBirth(f.DOB),
		Emails: emails,
	}
}
