package service

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
)

// Input bounds.
const (
	NameMaxLen      = 256
	PasswordMinLen  = 6
	PasswordMaxLen  = 30
	ProfileTitleMax = 256
	ProfileIntroMax = 1000
	ProfileBodyMax  = 10000
	HouseAddressMax = 500
)

const (
	listUsersLimit = 10
	listDealsLimit = 50
	dealsViewLimit = 10
)

func checkLength(v *ValidationError, field, value string, minLen, maxLen int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < minLen && minLen == 1:
		v.Add(field, "is required")
	case n < minLen:
		v.Add(field, "must be at least "+strconv.Itoa(minLen)+" characters")
	case n > maxLen:
		v.Add(field, "must be at most "+strconv.Itoa(maxLen)+" characters")
	}
}

// checkEmail requires a bare address, no display name.
func checkEmail(v *ValidationError, email string) {
	if email == "" {
		v.Add("email", "is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		v.Add("email", "is not a valid email address")
		return
	}
	if host := email[strings.LastIndex(email, "@")+1:]; !strings.Contains(host, ".") {
		v.Add("email", "is not a valid email address")
	}
}

func checkRoles(v *ValidationError, roles domain.Roles) {
	for _, r := range roles {
		switch {
		case !r.Valid():
			v.Add("roles", "unknown role "+string(r))
		case r == domain.RoleAnonymous:
			v.Add("roles", "anonymous cannot be assigned")
		}
	}
}

// NewUserInput is shared by registration and admin user creation.
type NewUserInput struct {
	Name     string
	Email    string
	Password string
	Roles    []domain.Role
}

func (in NewUserInput) normalize() NewUserInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	return in
}

func (in NewUserInput) validate(withRoles bool) error {
	var v ValidationError
	checkLength(&v, "name", in.Name, 1, NameMaxLen)
	checkEmail(&v, in.Email)
	checkLength(&v, "password", in.Password, PasswordMinLen, PasswordMaxLen)
	if withRoles {
		checkRoles(&v, domain.NewRoles(in.Roles...))
	}
	return v.Err()
}
