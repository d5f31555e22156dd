package storage

import (
	"errors"
	"fmt"
	"strings"

	"freelance_service/internal/models"
)

var (
	ErrEmailExists      = errors.New("email already exists")
	ErrMobileExists     = errors.New("mobile number already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrUnknownType      = errors.New("unknown account type")
)

const (
	ClientsTable     = "clients_data"
	FreelancersTable = "freelance_users_data"
)

// Table returns the account table backing t.
func Table(t models.AccountType) (string, error) {
	switch t {
	case models.Client:
		return ClientsTable, nil
	case models.Freelancer:
		return FreelancersTable, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// SplitEmailList reverses the comma-joined form segments are stored in.
func SplitEmailList(s string) []string {
	emails := []string{}

	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}

	return emails
}
