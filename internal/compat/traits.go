package compat

// Traits holds the spelling of every version-sensitive API parameter for
// one server version. Computed once at login and threaded through the
// client's operations.
type Traits struct {
	// LoginUserParam is the username parameter of user.login.
	LoginUserParam string
	// UserNameField is the username field of the user object.
	UserNameField string
	// ProxyNameField is the name field of the proxy object.
	ProxyNameField string
	// HostProxyIDField is the proxy id field of the host object.
	HostProxyIDField string
	// HostGroupsSelect is the host.get parameter for selecting groups.
	HostGroupsSelect string
	// HostAvailableField is the host availability field.
	HostAvailableField string
	// UsergroupRightsSelects are the usergroup.get parameters for
	// selecting permissions. One entry before 6.2, two from 6.2 on.
	UsergroupRightsSelects []string

	// AuthHeader is true when the auth token travels in an
	// Authorization: Bearer header rather than the request body.
	AuthHeader bool
	// SplitTemplateGroups is true when template groups are a distinct
	// entity with their own templategroup.* endpoints.
	SplitTemplateGroups bool
	// ProxyGroups is true when the server supports proxy groups.
	ProxyGroups bool
}

// TraitsFor computes the traits for a server version. All gates are
// release-only comparisons.
func TraitsFor(v Version) Traits {
	t := Traits{
		LoginUserParam:         "username",
		UserNameField:          "username",
		ProxyNameField:         "name",
		HostProxyIDField:       "proxyid",
		HostGroupsSelect:       "selectHostGroups",
		HostAvailableField:     "active_available",
		UsergroupRightsSelects: []string{"selectHostGroupRights", "selectTemplateGroupRights"},
		AuthHeader:             true,
		SplitTemplateGroups:    true,
		ProxyGroups:            true,
	}
	if !v.AtLeast(5, 4, 0) {
		t.LoginUserParam = "user"
	}
	if !v.AtLeast(6, 0, 0) {
		t.UserNameField = "alias"
	}
	if !v.AtLeast(6, 2, 0) {
		t.HostGroupsSelect = "selectGroups"
		t.UsergroupRightsSelects = []string{"selectRights"}
		t.SplitTemplateGroups = false
	}
	if !v.AtLeast(6, 4, 0) {
		t.HostAvailableField = "available"
		t.AuthHeader = false
	}
	if !v.AtLeast(7, 0, 0) {
		t.ProxyNameField = "host"
		t.HostProxyIDField = "proxy_hostid"
		t.ProxyGroups = false
	}
	return t
}
