package models

import (
	"encoding/json"
	"time"
)

// AccountType selects one of the two independent account tables.
type AccountType string

const (
	Client     AccountType = "client"
	Freelancer AccountType = "freelancer"
)

// Account is a stored user of either type. Fields that do not apply to the
// account's type stay empty.
type Account struct {
	ID           int64
	Type         AccountType
	Email        string
	MobileNumber string
	PassHash     []byte

	FirstName   string
	LastName    string
	CompanyName string
	Address     string

	DateOfBirth string
	Skills      string
	Experiences json.RawMessage
	Languages   string
	Educations  json.RawMessage
	Description string
}

// Profile is the public view of an Account. It never carries the password hash.
type Profile struct {
	AccountType  AccountType     `json:"accountType,omitempty"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	CompanyName  string          `json:"companyName,omitempty"`
	Email        string          `json:"email"`
	MobileNumber string          `json:"mobileNumber"`
	Address      string          `json:"address"`
	DateOfBirth  string          `json:"dateOfBirth,omitempty"`
	Skills       string          `json:"skills,omitempty"`
	Experiences  json.RawMessage `json:"experiences,omitempty"`
	Languages    string          `json:"languages,omitempty"`
	Educations   json.RawMessage `json:"educations,omitempty"`
	Description  string          `json:"description,omitempty"`
}

func (a Account) Profile() Profile {
	return Profile{
		AccountType:  a.Type,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		CompanyName:  a.CompanyName,
		Email:        a.Email,
		MobileNumber: a.MobileNumber,
		Address:      a.Address,
		DateOfBirth:  a.DateOfBirth,
		Skills:       a.Skills,
		Experiences:  a.Experiences,
		Languages:    a.Languages,
		Educations:   a.Educations,
		Description:  a.Description,
	}
}

type Template struct {
	ID   int64  `json:"id"`
	Name string `json:"templateName"`
	Code string `json:"snippet"`
	Date string `json:"date"`
	Time string `json:"time"`
}

type Segment struct {
	ID          int64    `json:"id"`
	Name        string   `json:"segmentName"`
	Emails      []string `json:"emailList"`
	CreatedDate string   `json:"createdDate"`
	CreatedTime string   `json:"createdTime"`
}

type UploadedImage struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Message is an outgoing email. It is also the payload published to the
// mail queue and consumed by cmd/mail_sender.
type Message struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}
