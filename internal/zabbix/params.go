package zabbix

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// Params is the params object of a JSON-RPC request.
type Params map[string]any

// isNumeric reports whether s consists solely of ASCII digits, which is
// how name-or-id arguments are classified: numeric strings are IDs.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// appendParam appends value to a list under key, converting an existing
// scalar to a list first.
func appendParam(p Params, key string, value any) {
	switch existing := p[key].(type) {
	case nil:
		p[key] = []any{value}
	case []any:
		p[key] = append(existing, value)
	default:
		p[key] = []any{existing, value}
	}
}

// nameOrIDParams classifies names-or-ids into the right request
// parameters: numeric arguments become entries under idParam, everything
// else becomes a search (wildcards enabled, union matching) or filter
// under nameParam. The wildcard "*" clears both.
func nameOrIDParams(p Params, namesOrIDs []string, nameParam, idParam string, search bool) {
	for _, v := range namesOrIDs {
		if v == "*" {
			return
		}
	}

	searchParams := Params{}
	for _, nameOrID := range namesOrIDs {
		nameOrID = strings.TrimSpace(nameOrID)
		if nameOrID == "" {
			continue
		}
		if isNumeric(nameOrID) {
			appendParam(p, idParam, nameOrID)
		} else if search {
			appendParam(searchParams, nameParam, nameOrID)
		} else {
			p["filter"] = Params{nameParam: nameOrID}
		}
	}
	if len(searchParams) > 0 {
		p["search"] = searchParams
		p["searchWildcardsEnabled"] = true
		p["searchByAny"] = true
	}
}

// commonParams adds the common get-method parameters.
func commonParams(p Params, sortField, sortOrder string, limit int) {
	if sortField != "" {
		p["sortfield"] = sortField
	}
	if sortOrder != "" {
		p["sortorder"] = sortOrder
	}
	if limit > 0 {
		p["limit"] = limit
	}
}

// returnedList extracts the list of IDs under key from a bulk endpoint
// response. A missing key or a non-list value is an API call error.
func returnedList(result json.RawMessage, key, endpoint string) ([]string, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(result, &body); err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "expected %s to return an object", endpoint)
	}
	raw, ok := body[key]
	if !ok {
		return nil, errs.New(errs.ErrAPICall, "%s response did not contain %q", endpoint, key)
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errs.New(errs.ErrAPICall, "%s response key %q is not a list", endpoint, key)
	}
	ids := make([]string, 0, len(list))
	for _, v := range list {
		switch id := v.(type) {
		case string:
			ids = append(ids, id)
		case float64:
			ids = append(ids, strconv.FormatFloat(id, 'f', -1, 64))
		default:
			return nil, errs.New(errs.ErrAPICall, "%s response key %q contains a non-id value", endpoint, key)
		}
	}
	return ids, nil
}

// bind unmarshals a raw result into v.
func bind(result json.RawMessage, v any) error {
	if err := json.Unmarshal(result, v); err != nil {
		return errs.Wrap(errs.ErrResponseParsing, err, "failed to decode API result")
	}
	return nil
}

// idRefs converts a list of IDs to the [{key: id}, ...] shape many
// write endpoints expect.
func idRefs(key string, ids []string) []Params {
	refs := make([]Params, len(ids))
	for i, id := range ids {
		refs[i] = Params{key: id}
	}
	return refs
}
