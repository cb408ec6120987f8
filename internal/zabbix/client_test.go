package zabbix

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

func TestLoginWithTokenOnModernServer(t *testing.T) {
	var methods []string
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		methods = append(methods, req.Method)
		switch req.Method {
		case "apiinfo.version":
			return "6.4.0", nil
		case "host.get":
			if req.header.Get("Authorization") != "Bearer AAA" {
				return nil, &APIError{Code: -32602, Message: "Application error.", Data: "Not authorized."}
			}
			return []any{}, nil
		}
		return nil, &APIError{Code: -32601, Message: "Method not found.", Data: req.Method}
	})
	defer ts.Close()

	c := newTestClient(t, ts, "")
	c.auth = ""

	err := c.Login(context.Background(), LoginOptions{Token: "AAA"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !c.UsingAPIToken() || c.AuthToken() != "AAA" {
		t.Errorf("auth state = (%q, %v), want (AAA, true)", c.AuthToken(), c.UsingAPIToken())
	}
	// Version fetch, then the probe. No user.login.
	want := []string{"apiinfo.version", "host.get"}
	if len(methods) != len(want) {
		t.Fatalf("methods = %v, want %v", methods, want)
	}
	for i := range want {
		if methods[i] != want[i] {
			t.Errorf("methods = %v, want %v", methods, want)
		}
	}
}

func TestLoginPasswordOnLegacyServerUsesUserParam(t *testing.T) {
	var loginParams map[string]any
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		switch req.Method {
		case "apiinfo.version":
			return "5.2.0", nil
		case "user.login":
			if err := json.Unmarshal(req.Params, &loginParams); err != nil {
				t.Fatalf("decode login params: %v", err)
			}
			return "legacy-session", nil
		case "host.get":
			if req.Auth == nil || *req.Auth != "legacy-session" {
				return nil, &APIError{Code: -32602, Message: "Application error.", Data: "Not authorized."}
			}
			return []any{}, nil
		}
		return nil, &APIError{Code: -32601, Message: "Method not found.", Data: req.Method}
	})
	defer ts.Close()

	c := newTestClient(t, ts, "")
	c.auth = ""

	err := c.Login(context.Background(), LoginOptions{Username: "Admin", Password: "zabbix"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loginParams["user"] != "Admin" {
		t.Errorf(`login params = %v, want "user" key on < 5.4`, loginParams)
	}
	if _, ok := loginParams["username"]; ok {
		t.Error(`login params must not contain "username" on < 5.4`)
	}
	if c.AuthToken() != "legacy-session" {
		t.Errorf("auth = %q, want legacy-session", c.AuthToken())
	}
}

func TestLoginRevertsAuthOnProbeFailure(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		switch req.Method {
		case "apiinfo.version":
			return "7.0.0", nil
		case "host.get":
			return nil, &APIError{Code: -32602, Message: "Application error.", Data: "Not authorized."}
		}
		return nil, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "")
	c.auth = ""

	err := c.Login(context.Background(), LoginOptions{Token: "bad-token"})
	if err == nil {
		t.Fatal("expected probe failure")
	}
	if !errs.IsAuthError(err) {
		t.Errorf("probe rejection should be an auth error, got %v", err)
	}
	if c.AuthToken() != "" {
		t.Errorf("auth = %q after failed login, want empty", c.AuthToken())
	}
}

func TestLoginWithoutCredentials(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return "7.0.0", nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "")
	c.auth = ""

	err := c.Login(context.Background(), LoginOptions{})
	if !errs.IsAuthError(err) {
		t.Fatalf("expected login error, got %v", err)
	}
}

func TestLogoutWithAPITokenMakesNoServerCall(t *testing.T) {
	calls := 0
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		calls++
		return true, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	c.useAPIToken = true

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if calls != 0 {
		t.Errorf("logout with API token made %d server calls, want 0", calls)
	}
	if c.AuthToken() != "" || c.UsingAPIToken() {
		t.Error("auth state not cleared")
	}
}

func TestLogoutWithSessionCallsServer(t *testing.T) {
	var methods []string
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		methods = append(methods, req.Method)
		return true, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(methods) != 1 || methods[0] != "user.logout" {
		t.Errorf("methods = %v, want [user.logout]", methods)
	}
	if c.AuthToken() != "" {
		t.Error("auth not cleared after logout")
	}
}

func TestLogoutSwallowsExpiredToken(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return nil, &APIError{Code: -32602, Message: "Application error.", Data: "API token expired."}
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout with expired token should succeed, got %v", err)
	}
}

func TestGetHostGroupNotFound(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return []any{}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	_, err := c.GetHostGroup(context.Background(), "Absent", HostGroupGetOptions{})
	if !errs.KindIs(errKind(t, err), errs.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreateHostGroupReturnsID(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return map[string]any{"groupids": []string{"42"}}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	id, err := c.CreateHostGroup(context.Background(), "Linux servers")
	if err != nil {
		t.Fatalf("CreateHostGroup: %v", err)
	}
	if id != "42" {
		t.Errorf("id = %q, want 42", id)
	}
}

func TestBulkResponseMissingKey(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return map[string]any{"unexpected": true}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	_, err := c.CreateHostGroup(context.Background(), "X")
	if !errs.KindIs(errKind(t, err), errs.ErrAPICall) {
		t.Fatalf("expected APICall error for missing key, got %v", err)
	}
}

func TestGetHostsVersionAwareSelects(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"6.0.0", "selectGroups"},
		{"6.2.0", "selectHostGroups"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			var params map[string]json.RawMessage
			ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
				if err := json.Unmarshal(req.Params, &params); err != nil {
					t.Fatalf("decode params: %v", err)
				}
				return []any{}, nil
			})
			defer ts.Close()

			c := newTestClient(t, ts, tt.version)
			_, err := c.GetHosts(context.Background(), nil, HostGetOptions{SelectGroups: true})
			if err != nil {
				t.Fatalf("GetHosts: %v", err)
			}
			if _, ok := params[tt.want]; !ok {
				t.Errorf("params %v missing %s", keys(params), tt.want)
			}
		})
	}
}

func TestGetHostsNormalizesProxyID(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return []map[string]any{
			{"hostid": "1", "host": "a", "proxyid": "0"},
			{"hostid": "2", "host": "b", "proxyid": "10084"},
			{"hostid": "3", "host": "c", "proxy_hostid": "0"},
		}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	hosts, err := c.GetHosts(context.Background(), nil, HostGetOptions{})
	if err != nil {
		t.Fatalf("GetHosts: %v", err)
	}
	if hosts[0].ProxyID != "" {
		t.Errorf(`proxyid "0" not normalized: %q`, hosts[0].ProxyID)
	}
	if hosts[1].ProxyID != "10084" {
		t.Errorf("proxyid = %q, want 10084", hosts[1].ProxyID)
	}
	if hosts[2].ProxyID != "" {
		t.Errorf(`proxy_hostid "0" not normalized: %q`, hosts[2].ProxyID)
	}
}

func TestGetHostsSubstitutesEmptyName(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return []map[string]any{{"hostid": "10084", "host": ""}}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	hosts, err := c.GetHosts(context.Background(), nil, HostGetOptions{})
	if err != nil {
		t.Fatalf("GetHosts: %v", err)
	}
	if hosts[0].Host != "Unknown (ID: 10084)" {
		t.Errorf("host = %q, want placeholder", hosts[0].Host)
	}
}

func TestTemplateGroupRoutesByVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"6.0.0", "hostgroup.get"},
		{"6.2.0", "templategroup.get"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			var method string
			ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
				method = req.Method
				return []any{}, nil
			})
			defer ts.Close()

			c := newTestClient(t, ts, tt.version)
			if _, err := c.GetTemplateGroups(context.Background(), nil, TemplateGroupGetOptions{}); err != nil {
				t.Fatalf("GetTemplateGroups: %v", err)
			}
			if method != tt.want {
				t.Errorf("endpoint = %q, want %q", method, tt.want)
			}
		})
	}
}

func TestProxyGroupMinOnlineCoercion(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return []map[string]any{
			{"proxy_groupid": "1", "name": "pg1", "min_online": "3"},
			{"proxy_groupid": "2", "name": "pg2", "min_online": "garbage"},
		}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	groups, err := c.GetProxyGroups(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetProxyGroups: %v", err)
	}
	if groups[0].MinOnline != 3 {
		t.Errorf("MinOnline = %d, want 3", groups[0].MinOnline)
	}
	if groups[1].MinOnline != 1 {
		t.Errorf("invalid MinOnline coerced to %d, want 1", groups[1].MinOnline)
	}
}

func TestProxyGroupsRequireModernServer(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return []any{}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "6.4.0")
	_, err := c.GetProxyGroups(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for proxy groups on < 7.0")
	}
}

func TestUnlinkTemplatesClear(t *testing.T) {
	var params map[string]json.RawMessage
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		return map[string]any{"hostids": []string{"1"}}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	templates := []Template{{TemplateID: "100", Host: "tmpl"}}
	hosts := []Host{{HostID: "1", Host: "web"}}

	if err := c.UnlinkTemplatesFromHosts(context.Background(), templates, hosts, true); err != nil {
		t.Fatalf("UnlinkTemplatesFromHosts: %v", err)
	}
	if _, ok := params["templateids_clear"]; !ok {
		t.Errorf("params %v missing templateids_clear", keys(params))
	}

	if err := c.UnlinkTemplatesFromHosts(context.Background(), templates, hosts, false); err != nil {
		t.Fatalf("UnlinkTemplatesFromHosts: %v", err)
	}
	if _, ok := params["templateids"]; !ok {
		t.Errorf("params %v missing templateids", keys(params))
	}
}

func TestUsergroupRightsVersionAware(t *testing.T) {
	t.Run("split on 6.2", func(t *testing.T) {
		var updateParams map[string]json.RawMessage
		ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
			switch req.Method {
			case "usergroup.get":
				return []map[string]any{{
					"usrgrpid": "7",
					"name":     "ops",
					"hostgroup_rights": []map[string]any{
						{"id": "1", "permission": 2},
					},
				}}, nil
			case "usergroup.update":
				if err := json.Unmarshal(req.Params, &updateParams); err != nil {
					t.Fatalf("decode params: %v", err)
				}
				return map[string]any{"usrgrpids": []string{"7"}}, nil
			}
			return nil, nil
		})
		defer ts.Close()

		c := newTestClient(t, ts, "6.2.0")
		err := c.UpdateUsergroupRights(context.Background(), "ops", []string{"2"}, 3, HostGroupRights)
		if err != nil {
			t.Fatalf("UpdateUsergroupRights: %v", err)
		}

		var rights []Right
		if err := json.Unmarshal(updateParams["hostgroup_rights"], &rights); err != nil {
			t.Fatalf("decode rights: %v", err)
		}
		if len(rights) != 2 {
			t.Fatalf("rights = %v, want existing + new", rights)
		}
	})

	t.Run("legacy rights before 6.2", func(t *testing.T) {
		var updateParams map[string]json.RawMessage
		ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
			switch req.Method {
			case "usergroup.get":
				return []map[string]any{{"usrgrpid": "7", "name": "ops"}}, nil
			case "usergroup.update":
				if err := json.Unmarshal(req.Params, &updateParams); err != nil {
					t.Fatalf("decode params: %v", err)
				}
				return map[string]any{"usrgrpids": []string{"7"}}, nil
			}
			return nil, nil
		})
		defer ts.Close()

		c := newTestClient(t, ts, "6.0.0")
		err := c.UpdateUsergroupRights(context.Background(), "ops", []string{"2"}, 2, HostGroupRights)
		if err != nil {
			t.Fatalf("UpdateUsergroupRights: %v", err)
		}
		if _, ok := updateParams["rights"]; !ok {
			t.Errorf("params %v missing legacy rights key", keys(updateParams))
		}
	})
}

func TestAcknowledgeEventActionBits(t *testing.T) {
	var params map[string]any
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		return map[string]any{"eventids": []string{"55"}}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")

	ids, err := c.AcknowledgeEvent(context.Background(), []string{"55"}, "on it", true, "")
	if err != nil {
		t.Fatalf("AcknowledgeEvent: %v", err)
	}
	if len(ids) != 1 || ids[0] != "55" {
		t.Errorf("ids = %v, want [55]", ids)
	}
	// close(1) + ack(2) + message(4)
	if action, _ := params["action"].(float64); int(action) != 7 {
		t.Errorf("action = %v, want 7", params["action"])
	}
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
