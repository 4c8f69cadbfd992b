package api

import "github.com/agentmira/mira-go/internal/property"

// Filters are the structured search criteria attached to a chat turn.
// Every field is optional; the backend treats an absent field as "any".
type Filters struct {
	Location string `json:"location,omitempty"`
	Budget   string `json:"budget,omitempty"`
	Bedrooms string `json:"bedrooms,omitempty"`
}

// ChatRequest is the body of POST /chat/message.
type ChatRequest struct {
	Message string   `json:"message"`
	Filters *Filters `json:"filters,omitempty"`
}

// ChatResponse is the body of a successful chat turn. The assistant text
// arrives in Response or, from older backend builds, in Message.
type ChatResponse struct {
	Response   string            `json:"response"`
	Message    string            `json:"message"`
	Properties []property.Record `json:"properties"`
}

// User is the authenticated user's profile.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SaveRequest is the body of POST /user/save. PropertyData is best-effort
// context for the backend so it can persist a record it has not seen.
type SaveRequest struct {
	PropertyID   string         `json:"property_id"`
	PropertyData map[string]any `json:"property_data,omitempty"`
}

// SaveResponse is the body of a successful save.
type SaveResponse struct {
	AlreadySaved bool `json:"already_saved"`
}

type savedResponse struct {
	SavedProperties []property.Record `json:"saved_properties"`
}

type searchResponse struct {
	Properties []property.Record `json:"properties"`
}
