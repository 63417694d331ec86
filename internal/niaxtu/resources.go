package niaxtu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListComplaints returns complaints matching the filter.
func (c *Client) ListComplaints(ctx context.Context, token string, filter ComplaintFilter) ([]Complaint, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.StructureID != "" {
		q.Set("structureId", filter.StructureID)
	}
	if filter.SectorID != "" {
		q.Set("sectorId", filter.SectorID)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(filter.PerPage))
	}
	path := "/complaints"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var complaints []Complaint
	if err := c.getData(ctx, path, token, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// GetComplaint fetches a single complaint.
func (c *Client) GetComplaint(ctx context.Context, token, id string) (Complaint, error) {
	var complaint Complaint
	if err := c.getData(ctx, "/complaints/"+url.PathEscape(id), token, &complaint); err != nil {
		return Complaint{}, err
	}
	return complaint, nil
}

// UpdateComplaintStatus moves a complaint to a new status.
func (c *Client) UpdateComplaintStatus(ctx context.Context, token, id, status string) error {
	payload := map[string]string{"status": status}
	env, code, err := c.call(ctx, http.MethodPut, "/complaints/"+url.PathEscape(id)+"/status", token, payload)
	if err != nil {
		return err
	}
	if !env.Success || code != http.StatusOK {
		return fmt.Errorf("niaxtu: update complaint status: %s (code %d)", env.Message, code)
	}
	return nil
}

// DeleteComplaint removes a complaint.
func (c *Client) DeleteComplaint(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/complaints/"+url.PathEscape(id), token)
}

// ListUsers returns the administrator accounts.
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.getData(ctx, "/users", token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single account.
func (c *Client) GetUser(ctx context.Context, token, id string) (User, error) {
	var user User
	if err := c.getData(ctx, "/users/"+url.PathEscape(id), token, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateUser applies a partial update to another account.
func (c *Client) UpdateUser(ctx context.Context, token, id string, fields map[string]any) (User, error) {
	env, code, err := c.call(ctx, http.MethodPut, "/users/"+url.PathEscape(id), token, fields)
	if err != nil {
		return User{}, err
	}
	if !env.Success || code != http.StatusOK {
		return User{}, fmt.Errorf("niaxtu: update user: %s (code %d)", env.Message, code)
	}
	var user User
	if err := json.Unmarshal(env.User, &user); err != nil {
		return User{}, fmt.Errorf("niaxtu: update user: decode user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/users/"+url.PathEscape(id), token)
}

// ListStructures returns the structures complaints get routed to.
func (c *Client) ListStructures(ctx context.Context, token string) ([]Structure, error) {
	var structures []Structure
	if err := c.getData(ctx, "/structures", token, &structures); err != nil {
		return nil, err
	}
	return structures, nil
}

// SaveStructure creates or updates a structure depending on whether an
// ID is present.
func (c *Client) SaveStructure(ctx context.Context, token string, structure Structure) (Structure, error) {
	method, path := http.MethodPost, "/structures"
	if structure.ID != "" {
		method, path = http.MethodPut, "/structures/"+url.PathEscape(structure.ID)
	}
	env, code, err := c.call(ctx, method, path, token, structure)
	if err != nil {
		return Structure{}, err
	}
	if !env.Success || (code != http.StatusOK && code != http.StatusCreated) {
		return Structure{}, fmt.Errorf("niaxtu: save structure: %s (code %d)", env.Message, code)
	}
	var saved Structure
	if err := json.Unmarshal(env.Data, &saved); err != nil {
		return Structure{}, fmt.Errorf("niaxtu: save structure: decode: %w", err)
	}
	return saved, nil
}

// ListSectors returns the sectors.
func (c *Client) ListSectors(ctx context.Context, token string) ([]Sector, error) {
	var sectors []Sector
	if err := c.getData(ctx, "/sectors", token, &sectors); err != nil {
		return nil, err
	}
	return sectors, nil
}

// SaveSector creates or updates a sector.
func (c *Client) SaveSector(ctx context.Context, token string, sector Sector) (Sector, error) {
	method, path := http.MethodPost, "/sectors"
	if sector.ID != "" {
		method, path = http.MethodPut, "/sectors/"+url.PathEscape(sector.ID)
	}
	env, code, err := c.call(ctx, method, path, token, sector)
	if err != nil {
		return Sector{}, err
	}
	if !env.Success || (code != http.StatusOK && code != http.StatusCreated) {
		return Sector{}, fmt.Errorf("niaxtu: save sector: %s (code %d)", env.Message, code)
	}
	var saved Sector
	if err := json.Unmarshal(env.Data, &saved); err != nil {
		return Sector{}, fmt.Errorf("niaxtu: save sector: decode: %w", err)
	}
	return saved, nil
}

// ListHistory returns the administrator action log.
func (c *Client) ListHistory(ctx context.Context, token string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.getData(ctx, "/admin/history", token, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetDashboardStats returns the aggregated dashboard counters.
func (c *Client) GetDashboardStats(ctx context.Context, token string) (DashboardStats, error) {
	var stats DashboardStats
	if err := c.getData(ctx, "/stats/dashboard", token, &stats); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

// getData fetches a path and decodes the envelope's data field.
func (c *Client) getData(ctx context.Context, path, token string, dest any) error {
	env, code, err := c.get(ctx, path, token)
	if err != nil {
		return err
	}
	if !env.Success || code != http.StatusOK {
		return fmt.Errorf("niaxtu: GET %s: %s (code %d)", path, env.Message, code)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("niaxtu: GET %s: decode: %w", path, err)
	}
	return nil
}

// delete removes a resource.
func (c *Client) delete(ctx context.Context, path, token string) error {
	env, code, err := c.call(ctx, http.MethodDelete, path, token, nil)
	if err != nil {
		return err
	}
	if code == http.StatusNoContent {
		return nil
	}
	if !env.Success || code != http.StatusOK {
		return fmt.Errorf("niaxtu: DELETE %s: %s (code %d)", path, env.Message, code)
	}
	return nil
}
