package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "superAdmin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin, UserRoleSuperAdmin:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

type Position string

const (
	PositionCoordinator     Position = "Coordinator"
	PositionSampler         Position = "Sampler"
	PositionHelper          Position = "Helper"
	PositionBrandAmbassador Position = "Brand Ambassador"
	PositionPushGirl        Position = "Push Girl"
)

var Positions = []Position{
	PositionCoordinator,
	PositionSampler,
	PositionHelper,
	PositionBrandAmbassador,
	PositionPushGirl,
}

type GovernmentIDType string

var GovernmentIDTypes = []GovernmentIDType{
	"SSS",
	"PhilHealth",
	"UMID",
	"PhilSys",
	"Driver's License",
	"Passport",
}

// RequestKind names one of the two self-service document requests a user can raise.
type RequestKind string

const (
	RequestLetter RequestKind = "letter"
	RequestID     RequestKind = "id"
)

type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash []byte
	Role         UserRole
	Verified     bool

	FirstName       string
	MiddleName      string
	LastName        string
	Gender          Gender
	Position        Position
	CompleteAddress string
	Birthdate       time.Time
	ProfileImage    string

	NBIClearance            string
	NBIRegistrationDate     time.Time
	NBIExpirationDate       time.Time
	FitToWork               string
	FitToWorkExpirationDate time.Time
	GovernmentID            string
	GovernmentIDType        GovernmentIDType

	GCashNumber string
	GCashName   string

	RequestLetterUntil *time.Time
	RequestIDUntil     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// RequestActive reports whether the request flag of the given kind is still
// raised at now. Flags lapse on their own once the deadline passes.
func (u User) RequestActive(kind RequestKind, now time.Time) bool {
	var until *time.Time
	switch kind {
	case RequestLetter:
		until = u.RequestLetterUntil
	case RequestID:
		until = u.RequestIDUntil
	}
	return until != nil && until.After(now)
}

func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleSuperAdmin
}

// FileURLs lists every stored document referenced by the user record.
func (u User) FileURLs() []string {
	urls := make([]string, 0, 4)
	for _, url := range []string{u.ProfileImage, u.NBIClearance, u.FitToWork, u.GovernmentID} {
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}
