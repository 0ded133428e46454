package handlers

import (
	"time"

	"workforce/internal/models"
)

const dateLayout = "2006-01-02"

type userResponse struct {
	ID                      string     `json:"id"`
	CompanyID               string     `json:"company_id"`
	Email                   string     `json:"email"`
	Role                    string     `json:"role"`
	Verified                bool       `json:"verified"`
	FirstName               string     `json:"firstName"`
	MiddleName              string     `json:"middleName"`
	LastName                string     `json:"lastName"`
	Gender                  string     `json:"gender"`
	Position                string     `json:"position"`
	CompleteAddress         string     `json:"completeAddress"`
	Birthdate               string     `json:"birthdate"`
	ProfileImage            string     `json:"profileImage"`
	NBIClearance            string     `json:"nbiClearance"`
	NBIRegistrationDate     string     `json:"nbiRegistrationDate"`
	NBIExpirationDate       string     `json:"nbiExpirationDate"`
	FitToWork               string     `json:"fitToWork"`
	FitToWorkExpirationDate string     `json:"fitToWorkExpirationDate"`
	GovernmentID            string     `json:"governmentId"`
	GovernmentIDType        string     `json:"governmentIdType"`
	GCashNumber             string     `json:"gcashNumber"`
	GCashName               string     `json:"gcashName"`
	RequestLetter           bool       `json:"requestLetter"`
	RequestID               bool       `json:"requestId"`
	RequestLetterUntil      *time.Time `json:"requestLetterUntil,omitempty"`
	RequestIDUntil          *time.Time `json:"requestIdUntil,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

func newUserResponse(u models.User, now time.Time) userResponse {
	resp := userResponse{
		ID:                      u.ID,
		CompanyID:               u.CompanyID,
		Email:                   u.Email,
		Role:                    string(u.Role),
		Verified:                u.Verified,
		FirstName:               u.FirstName,
		MiddleName:              u.MiddleName,
		LastName:                u.LastName,
		Gender:                  string(u.Gender),
		Position:                string(u.Position),
		CompleteAddress:         u.CompleteAddress,
		Birthdate:               formatDate(u.Birthdate),
		ProfileImage:            u.ProfileImage,
		NBIClearance:            u.NBIClearance,
		NBIRegistrationDate:     formatDate(u.NBIRegistrationDate),
		NBIExpirationDate:       formatDate(u.NBIExpirationDate),
		FitToWork:               u.FitToWork,
		FitToWorkExpirationDate: formatDate(u.FitToWorkExpirationDate),
		GovernmentID:            u.GovernmentID,
		GovernmentIDType:        string(u.GovernmentIDType),
		GCashNumber:             u.GCashNumber,
		GCashName:               u.GCashName,
		RequestLetter:           u.RequestActive(models.RequestLetter, now),
		RequestID:               u.RequestActive(models.RequestID, now),
		CreatedAt:               u.CreatedAt,
		UpdatedAt:               u.UpdatedAt,
	}
	if resp.RequestLetter {
		resp.RequestLetterUntil = u.RequestLetterUntil
	}
	if resp.RequestID {
		resp.RequestIDUntil = u.RequestIDUntil
	}
	return resp
}

func newUserResponses(users []models.User, now time.Time) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u, now))
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

type timestampResponse struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Type      string    `json:"type,omitempty"`
	Pictures  []string  `json:"pictures"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newTimestampResponse(ts models.Timestamp) timestampResponse {
	pictures := ts.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	return timestampResponse{
		ID:        ts.ID,
		User:      ts.UserID,
		Type:      string(ts.Direction),
		Pictures:  pictures,
		CreatedAt: ts.CreatedAt,
		ExpiresAt: ts.ExpiresAt,
	}
}

func newTimestampResponses(items []models.Timestamp) []timestampResponse {
	out := make([]timestampResponse, 0, len(items))
	for _, ts := range items {
		out = append(out, newTimestampResponse(ts))
	}
	return out
}

type letterUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type letterResponse struct {
	ID        string     `json:"id"`
	User      letterUser `json:"user"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	AdminNote string     `json:"adminNote,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func newLetterResponse(l models.Letter) letterResponse {
	return letterResponse{
		ID:        l.ID,
		User:      letterUser{ID: l.UserID, Name: l.UserName, Email: l.UserEmail},
		Type:      l.Type,
		Status:    string(l.Status),
		AdminNote: l.AdminNote,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

type emailResponse struct {
	Message string `json:"message"`
	EmailID string `json:"emailId,omitempty"`
	Status  string `json:"status,omitempty"`
}
