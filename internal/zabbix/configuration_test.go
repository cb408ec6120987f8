package zabbix

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kidoz/zabbix-cli-go/internal/compat"
)

func TestParseExportFormat(t *testing.T) {
	for in, want := range map[string]ExportFormat{
		"json": FormatJSON,
		"JSON": FormatJSON,
		"Yaml": FormatYAML,
		"xml":  FormatXML,
		"php":  FormatPHP,
	} {
		got, err := ParseExportFormat(in)
		if err != nil {
			t.Errorf("ParseExportFormat(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseExportFormat(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseExportFormat("toml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestImportableFormats(t *testing.T) {
	for f, want := range map[ExportFormat]bool{
		FormatJSON: true,
		FormatYAML: true,
		FormatXML:  true,
		FormatPHP:  false,
	} {
		if got := f.Importable(); got != want {
			t.Errorf("%s.Importable() = %v, want %v", f, got, want)
		}
	}
}

func TestExportConfigurationPretty(t *testing.T) {
	tests := []struct {
		name         string
		version      string
		format       ExportFormat
		wantPretty   bool
		wantWarnings int
	}{
		{"json on modern server", "6.4.0", FormatJSON, true, 0},
		{"xml downgrades", "6.4.0", FormatXML, false, 1},
		{"old server downgrades", "5.2.0", FormatJSON, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params map[string]json.RawMessage
			ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
				if err := json.Unmarshal(req.Params, &params); err != nil {
					t.Fatalf("decode params: %v", err)
				}
				return "exported-payload", nil
			})
			defer ts.Close()

			c := newTestClient(t, ts, tt.version)
			payload, warnings, err := c.ExportConfiguration(context.Background(), ExportOptions{
				HostGroupIDs: []string{"2"},
				Format:       tt.format,
				Pretty:       true,
			})
			if err != nil {
				t.Fatalf("ExportConfiguration: %v", err)
			}
			if payload != "exported-payload" {
				t.Errorf("payload = %q", payload)
			}
			_, hasPretty := params["prettyprint"]
			if hasPretty != tt.wantPretty {
				t.Errorf("prettyprint sent = %v, want %v", hasPretty, tt.wantPretty)
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", warnings, tt.wantWarnings)
			}
		})
	}
}

func TestExportConfigurationOptions(t *testing.T) {
	var params map[string]json.RawMessage
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		return "x", nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	_, _, err := c.ExportConfiguration(context.Background(), ExportOptions{
		HostIDs:      []string{"1"},
		TemplateIDs:  []string{"2"},
		MediaTypeIDs: []string{"3"},
		Format:       FormatJSON,
	})
	if err != nil {
		t.Fatalf("ExportConfiguration: %v", err)
	}

	var options map[string][]string
	if err := json.Unmarshal(params["options"], &options); err != nil {
		t.Fatalf("decode options: %v", err)
	}
	for key, want := range map[string]string{"hosts": "1", "templates": "2", "mediaTypes": "3"} {
		if len(options[key]) != 1 || options[key][0] != want {
			t.Errorf("options[%s] = %v, want [%s]", key, options[key], want)
		}
	}
}

func TestImportConfigurationRejectsPHP(t *testing.T) {
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		t.Error("no request expected for php import")
		return nil, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "7.0.0")
	err := c.ImportConfiguration(context.Background(), FormatPHP, "<?php", ImportDirectives{})
	if err == nil {
		t.Fatal("expected error for php import")
	}
}

func TestBuildImportRules(t *testing.T) {
	d := ImportDirectives{CreateMissing: true, UpdateExisting: true, DeleteMissing: false}

	t.Run("modern server", func(t *testing.T) {
		rules := buildImportRules(compat.MustParseVersion("7.0.0"), d)

		for _, class := range []string{"hosts", "httptests", "images", "mediaTypes", "maps", "templates", "host_groups", "template_groups"} {
			rule, ok := rules[class].(Params)
			if !ok {
				t.Fatalf("missing class %s", class)
			}
			if rule["createMissing"] != true || rule["updateExisting"] != true {
				t.Errorf("%s rule = %v", class, rule)
			}
			if _, ok := rule["deleteMissing"]; ok {
				t.Errorf("%s must not carry deleteMissing", class)
			}
		}

		linkage, _ := rules["templateLinkage"].(Params)
		if _, ok := linkage["updateExisting"]; ok {
			t.Error("templateLinkage must not carry updateExisting")
		}
		if linkage["createMissing"] != true || linkage["deleteMissing"] != false {
			t.Errorf("templateLinkage rule = %v", linkage)
		}

		for _, class := range []string{"discoveryRules", "graphs", "items", "triggers", "valueMaps", "templateDashboards"} {
			rule, _ := rules[class].(Params)
			if len(rule) != 3 {
				t.Errorf("%s should carry all three flags, got %v", class, rule)
			}
		}

		for _, class := range []string{"groups", "applications", "screens", "templateScreens"} {
			if _, ok := rules[class]; ok {
				t.Errorf("class %s must not appear on modern servers", class)
			}
		}
	})

	t.Run("pre-6.2 groups", func(t *testing.T) {
		rules := buildImportRules(compat.MustParseVersion("6.0.0"), d)
		groups, ok := rules["groups"].(Params)
		if !ok {
			t.Fatal("missing groups class on < 6.2")
		}
		if len(groups) != 1 || groups["createMissing"] != true {
			t.Errorf("groups rule = %v, want createMissing only", groups)
		}
		if _, ok := rules["host_groups"]; ok {
			t.Error("host_groups must not appear on < 6.2")
		}
	})

	t.Run("pre-6.0 screens", func(t *testing.T) {
		rules := buildImportRules(compat.MustParseVersion("5.2.0"), d)
		for _, class := range []string{"applications", "screens", "templateScreens"} {
			if _, ok := rules[class]; !ok {
				t.Errorf("missing class %s on < 6.0", class)
			}
		}
	})
}

func TestCachePopulate(t *testing.T) {
	methods := map[string]int{}
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		methods[req.Method]++
		switch req.Method {
		case "hostgroup.get":
			return []map[string]any{{"groupid": "1", "name": "Linux servers"}}, nil
		case "templategroup.get":
			return []map[string]any{{"groupid": "10", "name": "Templates/OS"}}, nil
		}
		return nil, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "6.4.0")
	if err := c.Cache().Populate(context.Background()); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if methods["hostgroup.get"] != 1 || methods["templategroup.get"] != 1 {
		t.Errorf("methods = %v, want one call each", methods)
	}

	if id, ok := c.Cache().HostGroupID("Linux servers"); !ok || id != "1" {
		t.Errorf("HostGroupID = %q, %v", id, ok)
	}
	if name, ok := c.Cache().HostGroupName("1"); !ok || name != "Linux servers" {
		t.Errorf("HostGroupName = %q, %v", name, ok)
	}
	if id, ok := c.Cache().TemplateGroupID("Templates/OS"); !ok || id != "10" {
		t.Errorf("TemplateGroupID = %q, %v", id, ok)
	}

	// Lookups never hit the network.
	before := methods["hostgroup.get"]
	c.Cache().HostGroupID("anything")
	if methods["hostgroup.get"] != before {
		t.Error("cache lookup made a network call")
	}

	c.Cache().Invalidate()
	if _, ok := c.Cache().HostGroupID("Linux servers"); ok {
		t.Error("cache should be empty after Invalidate")
	}
}

func TestCachePopulateSkipsTemplateGroupsOnLegacy(t *testing.T) {
	methods := map[string]int{}
	ts := newTestServer(t, func(req rpcRequest) (interface{}, *APIError) {
		methods[req.Method]++
		return []any{}, nil
	})
	defer ts.Close()

	c := newTestClient(t, ts, "6.0.0")
	if err := c.Cache().Populate(context.Background()); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if methods["templategroup.get"] != 0 {
		t.Error("templategroup.get must not be called on < 6.2")
	}
}
