package niaxtu

import (
	"encoding/json"
	"time"

	"github.com/niaxtu/niaxtu-admin/internal/registry"
)

// User is the account record returned by the API. Permissions is the
// per-account set, which may diverge from the role's default mapping;
// it is authoritative for checks on every role except super_admin.
type User struct {
	ID          string                `json:"id"`
	Email       string                `json:"email"`
	FullName    string                `json:"fullName"`
	Role        registry.Role         `json:"role"`
	Permissions []registry.Permission `json:"permissions"`
	IsActive    bool                  `json:"isActive"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	LastLogin   *time.Time            `json:"lastLogin,omitempty"`
}

// HasPermission tests membership in the stored set. The super_admin
// bypass lives in the session manager, not here.
func (u *User) HasPermission(perm registry.Permission) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// LoginResult is the outcome of a successful authentication call.
type LoginResult struct {
	Token    string
	User     User
	UserJSON json.RawMessage
}

// NewAdmin is the payload for creating an administrator account.
type NewAdmin struct {
	Email       string                `json:"email"`
	Password    string                `json:"password"`
	FullName    string                `json:"fullName"`
	Role        registry.Role         `json:"role"`
	Permissions []registry.Permission `json:"permissions,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil pointers are
// omitted so the API applies a partial update.
type ProfileUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Complaint is a citizen complaint as listed in the console.
type Complaint struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	SectorID    string    `json:"sectorId"`
	StructureID string    `json:"structureId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	Status      string
	StructureID string
	SectorID    string
	Page        int
	PerPage     int
}

// Structure is a public body complaints get routed to.
type Structure struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SectorID string `json:"sectorId"`
	IsActive bool   `json:"isActive"`
}

// Sector groups structures by domain of competence.
type Sector struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// HistoryEntry is one line of the administrator action log.
type HistoryEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardStats backs the dashboard screen.
type DashboardStats struct {
	TotalComplaints    int            `json:"totalComplaints"`
	PendingComplaints  int            `json:"pendingComplaints"`
	ResolvedComplaints int            `json:"resolvedComplaints"`
	TotalUsers         int            `json:"totalUsers"`
	TotalStructures    int            `json:"totalStructures"`
	ComplaintsByStatus map[string]int `json:"complaintsByStatus"`
}

// envelope is the response wrapper every API endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
