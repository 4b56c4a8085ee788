package models

import "time"

// Client is a registered API client. Username is the map key in the
// credential file and is never serialized inside the record.
type Client struct {
	Username         string     `json:"-"`
	PasswordHash     string     `json:"hashed_password"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Purpose          string     `json:"purpose"`
	Token            string     `json:"token"`
	RegisteredOn     time.Time  `json:"registered_on"`
	RegisteredFromIP string     `json:"registered_from_ip"`
	RegisteredDevice string     `json:"registered_device,omitempty"`
	LastLogin        *time.Time `json:"last_login"`
	LastLoginIP      *string    `json:"last_login_ip,omitempty"`
}

// Credentials is returned by registration and successful login.
type Credentials struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Origin describes where a registration or login came from.
type Origin struct {
	IP     string
	Device string
}
