package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// GetUser fetches a single user by username.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	users, err := c.GetUsers(ctx, []string{username}, UserGetOptions{})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errs.New(errs.ErrNotFound, "user %q not found", username)
	}
	return &users[0], nil
}

// UserGetOptions controls user.get requests.
type UserGetOptions struct {
	Search           bool
	SelectUsergroups bool
	SortField        string
	SortOrder        string
	Limit            int
}

// GetUsers fetches users by usernames or IDs. The username field is
// version dependent ("alias" before 6.0).
func (c *Client) GetUsers(ctx context.Context, usernamesOrIDs []string, opts UserGetOptions) ([]User, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}

	params := Params{"output": "extend"}
	nameOrIDParams(params, usernamesOrIDs, traits.UserNameField, "userids", opts.Search)
	if opts.SelectUsergroups {
		params["selectUsrgrps"] = "extend"
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "user.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch users")
	}
	var users []User
	if err := bind(raw, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUserParams are the inputs to CreateUser.
type CreateUserParams struct {
	Username     string
	Password     string
	FirstName    string
	LastName     string
	RoleID       string
	UsergroupIDs []string
	// Autologin enables browser auto-login for the user.
	Autologin bool
	// Autologout is the session lifetime, e.g. "86400s". Empty keeps
	// the server default.
	Autologout string
}

// CreateUser creates a user and returns its ID.
func (c *Client) CreateUser(ctx context.Context, p CreateUserParams) (string, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return "", err
	}

	params := Params{
		traits.UserNameField: p.Username,
		"passwd":             p.Password,
	}
	if p.FirstName != "" {
		params["name"] = p.FirstName
	}
	if p.LastName != "" {
		params["surname"] = p.LastName
	}
	if p.RoleID != "" {
		params["roleid"] = p.RoleID
	}
	if len(p.UsergroupIDs) > 0 {
		params["usrgrps"] = idRefs("usrgrpid", p.UsergroupIDs)
	}
	if p.Autologin {
		params["autologin"] = "1"
	}
	if p.Autologout != "" {
		params["autologout"] = p.Autologout
	}

	raw, err := c.call(ctx, "user.create", params)
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create user %q", p.Username)
	}
	ids, err := returnedList(raw, "userids", "user.create")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "user.create returned no user IDs")
	}
	return ids[0], nil
}

// UpdateUser applies user.update parameters to a user.
func (c *Client) UpdateUser(ctx context.Context, user *User, changes Params) error {
	params := Params{"userid": user.UserID}
	for k, v := range changes {
		params[k] = v
	}
	if _, err := c.call(ctx, "user.update", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to update user %q", user.Username)
	}
	return nil
}

// DeleteUser deletes a user and returns its ID.
func (c *Client) DeleteUser(ctx context.Context, user *User) (string, error) {
	raw, err := c.call(ctx, "user.delete", []string{user.UserID})
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to delete user %q", user.Username)
	}
	ids, err := returnedList(raw, "userids", "user.delete")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "user.delete returned no user IDs")
	}
	return ids[0], nil
}

// GetRole fetches a single role by name or ID.
func (c *Client) GetRole(ctx context.Context, nameOrID string) (*Role, error) {
	roles, err := c.GetRoles(ctx, []string{nameOrID})
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, errs.New(errs.ErrNotFound, "role %q not found", nameOrID)
	}
	return &roles[0], nil
}

// GetRoles fetches roles by names or IDs.
func (c *Client) GetRoles(ctx context.Context, namesOrIDs []string) ([]Role, error) {
	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "name", "roleids", false)

	raw, err := c.call(ctx, "role.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch roles")
	}
	var roles []Role
	if err := bind(raw, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
