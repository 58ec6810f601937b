package request

// LoginRequest is the request body for opening a session
type LoginRequest struct {
	Token     string `json:"token"`
	ContactID int64  `json:"contact_id,omitempty"`
}

// LinkRequest is the request body for linking an account to a clan role
type LinkRequest struct {
	ContactID int64  `json:"contact_id"`
	Handle    string `json:"handle"`
	Clan      string `json:"clan"`
	Role      string `json:"role"`
	AltOf     string `json:"alt_of,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
	Slug      string `json:"slug,omitempty"`
}

// SetRoleRequest is the request body for moving a player to another clan role
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SyncMember is one chat member and the chat role ids they hold
type SyncMember struct {
	ContactID int64   `json:"contact_id"`
	ChatRoles []int64 `json:"chat_roles"`
}

// SyncRequest is the request body for syncing clan roles from chat roles
type SyncRequest struct {
	Members []SyncMember `json:"members"`
}

// CommandRequest is a chat message holding one or more command lines
type CommandRequest struct {
	Text string `json:"text"`
}
