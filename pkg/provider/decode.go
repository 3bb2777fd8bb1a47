package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// keyAliases maps the spellings models tend to use onto the decoder's keys.
var keyAliases = map[string]string{
	"question":      "promptText",
	"prompt":        "promptText",
	"prompt_text":   "promptText",
	"prompttext":    "promptText",
	"clue":          "promptText",
	"answer":        "revealedText",
	"response":      "revealedText",
	"revealed_text": "revealedText",
	"revealedtext":  "revealedText",
	"category":      "title",
	"name":          "title",
	"clues":         "cells",
	"questions":     "cells",
	"categories":    "sections",
	"is_bonus":      "bonus",
	"isbonus":       "bonus",
	"daily_double":  "bonus",
	"dailydouble":   "bonus",
}

// Decode extracts the JSON payload from raw and coerces it into the shape the
// scope expects. Markdown fences and prose around the payload are ignored.
// Anything that cannot be coerced is a *domain.MalformedResponseError.
func Decode(scope domain.Scope, raw string) (domain.ProviderResult, error) {
	malformed := func(format string, args ...any) error {
		return &domain.MalformedResponseError{Scope: scope, Reason: fmt.Sprintf(format, args...), Raw: raw}
	}

	payload, ok := extractJSON(raw)
	if !ok {
		return domain.ProviderResult{}, malformed("no JSON object or array found")
	}

	var tree any
	if err := json.Unmarshal([]byte(payload), &tree); err != nil {
		return domain.ProviderResult{}, malformed("invalid JSON: %v", err)
	}
	tree = normalize(tree)

	var res domain.ProviderResult
	switch scope.Kind {
	case domain.ScopeBoard, domain.ScopeRefresh:
		var sections []domain.SectionContent
		if err := decodeInto(field(tree, "sections"), &sections); err != nil {
			return res, malformed("sections: %v", err)
		}
		if len(sections) == 0 {
			return res, malformed("no sections")
		}
		res.Sections = sections

	case domain.ScopeSection:
		node := field(tree, "cells")
		if m, ok := tree.(map[string]any); ok && m["cells"] == nil {
			// A whole-board shaped answer for a single section: take the first.
			if secs, ok := m["sections"].([]any); ok && len(secs) > 0 {
				node = field(secs[0], "cells")
			}
		}
		var cells []domain.CellContent
		if err := decodeInto(node, &cells); err != nil {
			return res, malformed("cells: %v", err)
		}
		if len(cells) == 0 {
			return res, malformed("no cells")
		}
		res.Cells = cells

	case domain.ScopeCell:
		node := tree
		if list, ok := node.([]any); ok {
			if len(list) == 0 {
				return res, malformed("empty cell list")
			}
			node = list[0]
		}
		if m, ok := node.(map[string]any); ok && m["cell"] != nil {
			node = m["cell"]
		}
		var cell domain.CellContent
		if err := decodeInto(node, &cell); err != nil {
			return res, malformed("cell: %v", err)
		}
		if strings.TrimSpace(cell.PromptText) == "" {
			return res, malformed("cell has no prompt")
		}
		res.Cell = &cell

	default:
		return res, malformed("unknown scope kind %q", scope.Kind)
	}
	return res, nil
}

// field returns node[key] for objects and node itself for arrays, so both
// {"sections":[...]} and a bare [...] decode the same way.
func field(node any, key string) any {
	if m, ok := node.(map[string]any); ok {
		return m[key]
	}
	return node
}

func decodeInto(input, out any) error {
	if input == nil {
		return fmt.Errorf("missing")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// normalize rewrites known key aliases recursively.
func normalize(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			key := k
			if alias, ok := keyAliases[strings.ToLower(k)]; ok {
				key = alias
			}
			out[key] = normalize(val)
		}
		return out
	case []any:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	default:
		return v
	}
}

// extractJSON strips markdown fences and returns the text between the first
// opening bracket and its matching outermost closer.
func extractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		body := s[i+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		s = body
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
