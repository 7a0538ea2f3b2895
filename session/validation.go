package session

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/DinhTQSE/schoolmed-client/authapi"
	"github.com/DinhTQSE/schoolmed-client/users"
)

// defaultPhoneRegion is assumed when a phone number is given without a
// country prefix.
const defaultPhoneRegion = "VN"

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string // optional
	Role     string // defaults to the student role
}

// Validate checks the request before it goes on the wire. The server remains
// authoritative; this is a pre-flight so obviously broken requests fail
// without a round trip.
func (r RegisterRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
	); err != nil {
		return err
	}

	if err := users.ValidatePasswordStrength(r.Password); err != nil {
		return err
	}

	if r.Phone != "" {
		if _, err := parsePhone(r.Phone); err != nil {
			return err
		}
	}
	return nil
}

// applyDefaults fills the omitted optional fields.
func (r *RegisterRequest) applyDefaults() {
	if r.Role == "" {
		r.Role = string(users.RoleStudent)
	}
}

// signUpRequest maps the request onto the wire payload, normalizing the phone
// number to E.164 when one was given.
func (r RegisterRequest) signUpRequest() authapi.SignUpRequest {
	phone := r.Phone
	if phone != "" {
		if parsed, err := parsePhone(phone); err == nil {
			phone = phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}

	return authapi.SignUpRequest{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
		Phone:    phone,
		Role:     r.Role,
	}
}

func parsePhone(raw string) (*phonenumbers.PhoneNumber, error) {
	parsed, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return nil, fmt.Errorf("phone: %w", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return nil, fmt.Errorf("phone: not a valid number")
	}
	return parsed, nil
}
