package zabbix

import (
	"encoding/json"
	"strconv"
	"time"
)

// All Zabbix object IDs are numeric strings on the wire and stay strings
// here. Equality and set membership use IDs, never names.

// Host represents a Zabbix host.
type Host struct {
	HostID            string `json:"hostid"`
	Host              string `json:"host"`
	Name              string `json:"name,omitempty"`
	Description       string `json:"description,omitempty"`
	Status            string `json:"status,omitempty"`
	MaintenanceStatus string `json:"maintenance_status,omitempty"`
	// ProxyID is empty when the host has no proxy. The wire value "0"
	// (and the pre-7.0 proxy_hostid spelling) is normalized on decode.
	ProxyID      string          `json:"proxyid,omitempty"`
	ProxyGroupID string          `json:"proxy_groupid,omitempty"` // >= 7.0
	MonitoredBy  string          `json:"monitored_by,omitempty"`  // >= 7.0
	Groups       []HostGroup     `json:"groups,omitempty"`
	Templates    []Template      `json:"templates,omitempty"`
	Interfaces   []HostInterface `json:"interfaces,omitempty"`
	Macros       []Macro         `json:"macros,omitempty"`
	Inventory    map[string]any  `json:"inventory,omitempty"`
}

// UnmarshalJSON folds the version-dependent field spellings into one
// shape: hostgroups (>=6.2), parentTemplates, and proxy_hostid (<7.0).
// A proxy id of "0" means no proxy and becomes the empty string.
func (h *Host) UnmarshalJSON(data []byte) error {
	type hostAlias Host
	aux := struct {
		*hostAlias
		HostGroups      []HostGroup `json:"hostgroups"`
		ParentTemplates []Template  `json:"parentTemplates"`
		ProxyHostID     string      `json:"proxy_hostid"`
		Inventory       any         `json:"inventory"`
	}{hostAlias: (*hostAlias)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(h.Groups) == 0 && len(aux.HostGroups) > 0 {
		h.Groups = aux.HostGroups
	}
	if len(h.Templates) == 0 && len(aux.ParentTemplates) > 0 {
		h.Templates = aux.ParentTemplates
	}
	if h.ProxyID == "" && aux.ProxyHostID != "" {
		h.ProxyID = aux.ProxyHostID
	}
	if h.ProxyID == "0" {
		h.ProxyID = ""
	}
	// Zabbix returns inventory as [] when empty and as an object otherwise.
	if m, ok := aux.Inventory.(map[string]any); ok {
		h.Inventory = m
	}
	return nil
}

// HostGroup represents a Zabbix host group.
type HostGroup struct {
	GroupID string `json:"groupid"`
	Name    string `json:"name"`
	// Flags is "0" for plain and "4" for discovered groups.
	Flags     string     `json:"flags,omitempty"`
	Hosts     []Host     `json:"hosts,omitempty"`
	Templates []Template `json:"templates,omitempty"` // < 6.2 only
}

// TemplateGroup represents a Zabbix template group (distinct entity on
// >= 6.2; aliased to host groups before that).
type TemplateGroup struct {
	GroupID   string     `json:"groupid"`
	Name      string     `json:"name"`
	Templates []Template `json:"templates,omitempty"`
}

// Template represents a Zabbix template.
type Template struct {
	TemplateID string     `json:"templateid"`
	Host       string     `json:"host"`
	Name       string     `json:"name,omitempty"`
	Templates  []Template `json:"templates,omitempty"`
	Parents    []Template `json:"parentTemplates,omitempty"`
	Hosts      []Host     `json:"hosts,omitempty"`
}

// HostInterface represents a host interface.
type HostInterface struct {
	InterfaceID string `json:"interfaceid,omitempty"`
	HostID      string `json:"hostid,omitempty"`
	// Type is 1 agent, 2 SNMP, 3 IPMI, 4 JMX.
	Type  string `json:"type"`
	Main  string `json:"main"`
	UseIP string `json:"useip"`
	IP    string `json:"ip"`
	DNS   string `json:"dns"`
	Port  string `json:"port"`
	// Details holds the SNMP sub-record for SNMP interfaces.
	Details *SNMPDetails `json:"details,omitempty"`
}

// SNMPDetails is the SNMP sub-record of an interface.
type SNMPDetails struct {
	Version        string `json:"version"`
	Bulk           string `json:"bulk,omitempty"`
	Community      string `json:"community,omitempty"`
	SecurityName   string `json:"securityname,omitempty"`
	SecurityLevel  string `json:"securitylevel,omitempty"`
	AuthPassphrase string `json:"authpassphrase,omitempty"`
	PrivPassphrase string `json:"privpassphrase,omitempty"`
	AuthProtocol   string `json:"authprotocol,omitempty"`
	PrivProtocol   string `json:"privprotocol,omitempty"`
	ContextName    string `json:"contextname,omitempty"`
	MaxRepetitions string `json:"max_repetitions,omitempty"`
}

// Proxy represents a Zabbix proxy. The name field was "host" before 7.0;
// both spellings decode into Name.
type Proxy struct {
	ProxyID string `json:"proxyid"`
	Name    string `json:"name"`
	// Mode is "5" active / "6" passive before 7.0 and "0" active /
	// "1" passive from 7.0 on. Stored verbatim.
	Mode          string `json:"mode,omitempty"`
	Address       string `json:"address,omitempty"`
	Port          string `json:"port,omitempty"`
	Version       string `json:"version,omitempty"`       // >= 7.0
	Compatibility string `json:"compatibility,omitempty"` // >= 7.0
	ProxyGroupID  string `json:"proxy_groupid,omitempty"` // >= 7.0
	Hosts         []Host `json:"hosts,omitempty"`
}

func (p *Proxy) UnmarshalJSON(data []byte) error {
	type proxyAlias Proxy
	aux := struct {
		*proxyAlias
		Host      string `json:"host"`
		Operating string `json:"operating_mode"`
		Status    string `json:"status"`
	}{proxyAlias: (*proxyAlias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.Name == "" && aux.Host != "" {
		p.Name = aux.Host
	}
	if p.Mode == "" {
		if aux.Operating != "" {
			p.Mode = aux.Operating // >= 7.0
		} else if aux.Status != "" {
			p.Mode = aux.Status // < 7.0
		}
	}
	return nil
}

// ProxyGroup represents a Zabbix proxy group (>= 7.0).
type ProxyGroup struct {
	ProxyGroupID  string `json:"proxy_groupid"`
	Name          string `json:"name"`
	FailoverDelay string `json:"failover_delay,omitempty"`
	// MinOnline is 1-1000. The server may return a non-numeric string;
	// the client coerces invalid values to 1 with a logged warning.
	MinOnline MinOnline `json:"min_online,omitempty"`
	State     string    `json:"state,omitempty"`
	Proxies   []Proxy   `json:"proxies,omitempty"`
}

// MinOnline is the proxy group online threshold. Decodes from a numeric
// string or a bare number; anything else yields 0, which is outside the
// valid 1-1000 range and marks the value as invalid.
type MinOnline int

func (m *MinOnline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.Atoi(s)
		if err != nil {
			*m = 0
			return nil
		}
		*m = MinOnline(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*m = MinOnline(n)
		return nil
	}
	*m = 0
	return nil
}

func (m MinOnline) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(m)))
}

// User represents a Zabbix user. The username field was "alias" before
// 6.0; both spellings decode into Username.
type User struct {
	UserID     string      `json:"userid"`
	Username   string      `json:"username"`
	Name       string      `json:"name,omitempty"`
	Surname    string      `json:"surname,omitempty"`
	RoleID     string      `json:"roleid,omitempty"`
	Autologin  string      `json:"autologin,omitempty"`
	Autologout string      `json:"autologout,omitempty"`
	Usergroups []Usergroup `json:"usrgrps,omitempty"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type userAlias User
	aux := struct {
		*userAlias
		Alias string `json:"alias"`
	}{userAlias: (*userAlias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.Username == "" && aux.Alias != "" {
		u.Username = aux.Alias
	}
	return nil
}

// Usergroup represents a Zabbix user group. Before 6.2 the permissions
// live in Rights; from 6.2 they are split into HostGroupRights and
// TemplateGroupRights.
type Usergroup struct {
	UsergroupID string `json:"usrgrpid"`
	Name        string `json:"name"`
	GUIAccess   string `json:"gui_access,omitempty"`
	Status      string `json:"users_status,omitempty"`

	Rights              []Right `json:"rights,omitempty"`               // < 6.2
	HostGroupRights     []Right `json:"hostgroup_rights,omitempty"`     // >= 6.2
	TemplateGroupRights []Right `json:"templategroup_rights,omitempty"` // >= 6.2

	Users []User `json:"users,omitempty"`
}

// Right is one (group id, permission) pair. Permission is 0 deny,
// 2 read-only, 3 read-write.
type Right struct {
	ID         string `json:"id"`
	Permission int    `json:"permission"`
}

// Role represents a Zabbix user role (>= 5.2).
type Role struct {
	RoleID   string `json:"roleid"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Readonly string `json:"readonly,omitempty"`
}

// Macro represents a host-scoped user macro.
type Macro struct {
	HostMacroID string `json:"hostmacroid,omitempty"`
	HostID      string `json:"hostid,omitempty"`
	// Macro is the {$NAME} token.
	Macro       string `json:"macro"`
	Value       string `json:"value,omitempty"`
	Type        string `json:"type,omitempty"` // 0 text, 1 secret, 2 vault
	Description string `json:"description,omitempty"`
	Hosts       []Host `json:"hosts,omitempty"`
}

// GlobalMacro represents a global user macro.
type GlobalMacro struct {
	GlobalMacroID string `json:"globalmacroid,omitempty"`
	Macro         string `json:"macro"`
	Value         string `json:"value,omitempty"`
	Type          string `json:"type,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Maintenance represents a maintenance window.
type Maintenance struct {
	MaintenanceID string `json:"maintenanceid"`
	Name          string `json:"name"`
	// ActiveSince and ActiveTill are epoch seconds on the wire.
	ActiveSince UnixTime `json:"active_since"`
	ActiveTill  UnixTime `json:"active_till"`
	Description string   `json:"description,omitempty"`
	// MaintenanceType is "0" with data collection, "1" without.
	MaintenanceType string       `json:"maintenance_type,omitempty"`
	TimePeriods     []TimePeriod `json:"timeperiods,omitempty"`
	Hosts           []Host       `json:"hosts,omitempty"`
	HostGroups      []HostGroup  `json:"hostgroups,omitempty"`
}

func (m *Maintenance) UnmarshalJSON(data []byte) error {
	type maintAlias Maintenance
	aux := struct {
		*maintAlias
		Groups []HostGroup `json:"groups"` // < 6.2 spelling
	}{maintAlias: (*maintAlias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(m.HostGroups) == 0 && len(aux.Groups) > 0 {
		m.HostGroups = aux.Groups
	}
	return nil
}

// TimePeriod is one recurrence entry of a maintenance window.
type TimePeriod struct {
	TimePeriodType string `json:"timeperiod_type"`
	StartDate      string `json:"start_date,omitempty"`
	StartTime      string `json:"start_time,omitempty"`
	Period         string `json:"period"`
	Every          string `json:"every,omitempty"`
	DayOfWeek      string `json:"dayofweek,omitempty"`
	Day            string `json:"day,omitempty"`
	Month          string `json:"month,omitempty"`
}

// Event represents a Zabbix event.
type Event struct {
	EventID      string   `json:"eventid"`
	Source       string   `json:"source,omitempty"`
	Object       string   `json:"object,omitempty"`
	ObjectID     string   `json:"objectid"`
	Name         string   `json:"name,omitempty"`
	Severity     string   `json:"severity,omitempty"`
	Acknowledged string   `json:"acknowledged,omitempty"`
	Clock        UnixTime `json:"clock"`
	Value        string   `json:"value,omitempty"`
	Hosts        []Host   `json:"hosts,omitempty"`
}

// Trigger represents a Zabbix trigger.
type Trigger struct {
	TriggerID   string   `json:"triggerid"`
	Description string   `json:"description"`
	Expression  string   `json:"expression,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Status      string   `json:"status,omitempty"`
	Value       string   `json:"value,omitempty"`
	LastChange  UnixTime `json:"lastchange,omitempty"`
	Hosts       []Host   `json:"hosts,omitempty"`
}

// Item represents a Zabbix item.
type Item struct {
	ItemID    string `json:"itemid"`
	HostID    string `json:"hostid,omitempty"`
	Name      string `json:"name"`
	Key       string `json:"key_"`
	ValueType string `json:"value_type,omitempty"`
	LastValue string `json:"lastvalue,omitempty"`
	Hosts     []Host `json:"hosts,omitempty"`
}

// MediaType represents a Zabbix media type.
type MediaType struct {
	MediaTypeID string `json:"mediatypeid"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
}

// Image represents a Zabbix image.
type Image struct {
	ImageID string `json:"imageid"`
	Name    string `json:"name"`
	// Image is the base64-encoded payload, present only when selected.
	Image string `json:"image,omitempty"`
}

// Map represents a Zabbix map ("sysmap").
type Map struct {
	SysmapID string `json:"sysmapid"`
	Name     string `json:"name"`
	Width    string `json:"width,omitempty"`
	Height   string `json:"height,omitempty"`
}

// UnixTime decodes Zabbix epoch-second timestamps, which arrive as
// numeric strings, into instants.
type UnixTime struct {
	time.Time
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int64
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		t.Time = time.Unix(n, 0).UTC()
		return nil
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.Unix(n, 0).UTC()
	return nil
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("0")
	}
	return json.Marshal(strconv.FormatInt(t.Unix(), 10))
}

// APIResponse is the JSON-RPC 2.0 response envelope.
type APIResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
	ID      int64           `json:"id"`
}

// APIError is the error object of a JSON-RPC response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	if e.Data != "" {
		return e.Message + " " + e.Data
	}
	return e.Message
}
