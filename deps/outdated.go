package deps

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/randalmurphal/vrt/version"
)

// Outdated is one entry of `npm outdated --json`.
type Outdated struct {
	Current  string `json:"current"`
	Wanted   string `json:"wanted"`
	Latest   string `json:"latest"`
	Location string `json:"location"`
}

// ParseOutdated parses the output of `npm outdated --all --json`. With
// --all a package installed in several places maps to an array; the
// top-level install is preferred. Empty output means nothing is outdated.
func ParseOutdated(data []byte) (map[string]Outdated, error) {
	if strings.TrimSpace(string(data)) == "" {
		return map[string]Outdated{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse npm outdated output: %w", err)
	}

	out := make(map[string]Outdated, len(raw))
	for name, msg := range raw {
		entry, err := decodeEntry(name, msg)
		if err != nil {
			return nil, fmt.Errorf("parse npm outdated entry %q: %w", name, err)
		}
		out[name] = entry
	}
	return out, nil
}

func decodeEntry(name string, msg json.RawMessage) (Outdated, error) {
	trimmed := strings.TrimSpace(string(msg))
	if !strings.HasPrefix(trimmed, "[") {
		var o Outdated
		err := json.Unmarshal(msg, &o)
		return o, err
	}

	var list []Outdated
	if err := json.Unmarshal(msg, &list); err != nil {
		return Outdated{}, err
	}
	if len(list) == 0 {
		return Outdated{}, fmt.Errorf("empty entry list")
	}
	for _, o := range list {
		if o.Location == "node_modules/"+name {
			return o, nil
		}
	}
	return list[0], nil
}

// rangePrefixes are the range operators kept when a spec is upgraded.
var rangePrefixes = []string{"^", "~"}

// UpgradeSpec rewrites a dependency spec to latest, keeping a leading ^
// or ~. Specs that are not a plain version after the operator (tags,
// file:, git+, workspace:, ranges) are left alone, as are specs already at
// or ahead of latest.
func UpgradeSpec(spec, latest string) (string, bool) {
	target, err := version.Parse(latest)
	if err != nil {
		return spec, false
	}

	prefix, rest := "", spec
	for _, p := range rangePrefixes {
		if strings.HasPrefix(spec, p) {
			prefix, rest = p, spec[len(p):]
			break
		}
	}

	current, err := version.Parse(rest)
	if err != nil {
		return spec, false
	}
	if current.Compare(target) >= 0 {
		return spec, false
	}
	return prefix + target.String(), true
}
