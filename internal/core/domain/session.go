package domain

import "errors"

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-held record of an authenticated identity. The field
// set mirrors the eight keys the legacy frontend kept in browser storage.
//
// When IsLoggedIn is false every other field is meaningless and must not be
// trusted by callers.
type Session struct {
	ID          string `json:"-" redis:"-"`
	IsLoggedIn  bool   `json:"isLoggedIn" redis:"isLoggedIn"`
	Role        string `json:"userRole" redis:"userRole"`
	UserID      string `json:"userId" redis:"userId"`
	Email       string `json:"email" redis:"email"`
	UserName    string `json:"userName" redis:"userName"`
	Token       string `json:"token" redis:"token"`
	CustomerID  string `json:"customerId" redis:"customerId"`
	HasCustomer bool   `json:"hasCustomer" redis:"hasCustomer"`
}
