package zabbix

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

func TestCreateUserVersionAwareNameField(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"5.2.0", "alias"},
		{"6.0.0", "username"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			var params map[string]any
			ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
				if err := json.Unmarshal(req.Params, &params); err != nil {
					t.Fatalf("decode params: %v", err)
				}
				return map[string]any{"userids": []string{"9"}}, nil
			})
			defer ts.Close()

			c := newTestClient(t, ts, tt.version)
			id, err := c.CreateUser(context.Background(), CreateUserParams{
				Username: "jdoe",
				Password: "secret",
				RoleID:   "1",
			})
			if err != nil {
				t.Fatalf("CreateUser: %v", err)
			}
			if id != "9" {
				t.Errorf("id = %q, want 9", id)
			}
			if params[tt.want] != "jdoe" {
				t.Errorf("params = %v, want %q field", params, tt.want)
			}
		})
	}
}

func TestCreateMaintenanceDefaultPeriod(t *testing.T) {
	var params map[string]json.RawMessage
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		return map[string]any{"maintenanceids": []string{"77"}}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	since := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	till := since.Add(2 * time.Hour)

	id, err := c.CreateMaintenance(context.Background(), CreateMaintenanceParams{
		Name:           "patch window",
		ActiveSince:    since,
		ActiveTill:     till,
		DataCollection: true,
		Hosts:          []Host{{HostID: "1", Host: "web"}},
	})
	if err != nil {
		t.Fatalf("CreateMaintenance: %v", err)
	}
	if id != "77" {
		t.Errorf("id = %q, want 77", id)
	}

	var sinceStr, typeStr string
	if err := json.Unmarshal(params["active_since"], &sinceStr); err != nil {
		t.Fatal(err)
	}
	if sinceStr != "1717243200" {
		t.Errorf("active_since = %q", sinceStr)
	}
	if err := json.Unmarshal(params["maintenance_type"], &typeStr); err != nil {
		t.Fatal(err)
	}
	if typeStr != "0" {
		t.Errorf("maintenance_type = %q, want 0 (with data collection)", typeStr)
	}

	var periods []TimePeriod
	if err := json.Unmarshal(params["timeperiods"], &periods); err != nil {
		t.Fatal(err)
	}
	if len(periods) != 1 || periods[0].Period != "7200" {
		t.Errorf("timeperiods = %+v, want one 7200s period", periods)
	}
}

func TestMacroRoundTrip(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		switch req.Method {
		case "usermacro.create":
			return map[string]any{"hostmacroids": []string{"300"}}, nil
		case "usermacro.get":
			return []map[string]any{{
				"hostmacroid": "300",
				"hostid":      "1",
				"macro":       "{$SITE}",
				"value":       "oslo",
			}}, nil
		case "usermacro.update":
			return map[string]any{"hostmacroids": []string{"300"}}, nil
		}
		return nil, &APIError{Code: -32601, Message: "Method not found.", Data: req.Method}
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	host := &Host{HostID: "1", Host: "web"}

	id, err := c.CreateMacro(context.Background(), host, "{$SITE}", "oslo")
	if err != nil {
		t.Fatalf("CreateMacro: %v", err)
	}
	if id != "300" {
		t.Errorf("id = %q", id)
	}

	macro, err := c.GetMacro(context.Background(), host, "{$SITE}")
	if err != nil {
		t.Fatalf("GetMacro: %v", err)
	}
	if macro.Value != "oslo" {
		t.Errorf("value = %q", macro.Value)
	}

	if _, err := c.UpdateMacro(context.Background(), macro.HostMacroID, "bergen"); err != nil {
		t.Fatalf("UpdateMacro: %v", err)
	}
}

func TestGetGlobalMacroNotFound(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return []any{}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	_, err := c.GetGlobalMacro(context.Background(), "{$ABSENT}")
	if !errs.KindIs(errKind(t, err), errs.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGetProxiesVersionAwareNameParam(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"6.0.0", "host"},
		{"7.0.0", "name"},
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
			if _, err := c.GetProxies(context.Background(), []string{"proxy-*"}, ProxyGetOptions{Search: true}); err != nil {
				t.Fatalf("GetProxies: %v", err)
			}

			var search map[string]json.RawMessage
			if err := json.Unmarshal(params["search"], &search); err != nil {
				t.Fatalf("decode search: %v", err)
			}
			if _, ok := search[tt.want]; !ok {
				t.Errorf("search keys = %v, want %q", keys(search), tt.want)
			}
		})
	}
}

func TestDeleteUserReturnsID(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		return map[string]any{"userids": []string{"9"}}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	id, err := c.DeleteUser(context.Background(), &User{UserID: "9", Username: "jdoe"})
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if id != "9" {
		t.Errorf("id = %q, want 9", id)
	}
}
