package chat

import (
	"time"

	"github.com/agentmira/mira-go/internal/api"
	"github.com/agentmira/mira-go/internal/property"
)

// Role is the origin of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry. Messages are immutable once
// appended; IDs are unique and monotonic in creation order.
type Message struct {
	ID         int64               `json:"id"`
	Role       Role                `json:"role"`
	Content    string              `json:"content"`
	CreatedAt  time.Time           `json:"created_at"`
	Filters    *api.Filters        `json:"filters,omitempty"`
	Properties []property.Property `json:"properties,omitempty"`
}
