// Package parser separates the metadata header of a content file from its
// Markdown body and normalises the metadata values.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// headerLineRe matches a "Key: value" metadata line. The colon must be
// followed by whitespace or end the line, so "http://..." is not a key.
var headerLineRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*):(?:\s+(.*))?$`)

// Result holds the output of parsing a content file.
type Result struct {
	Metadata map[string]any
	Body     string
}

// Parse extracts the metadata header and the body from raw file bytes.
//
// Two header styles are recognised: YAML front matter fenced by "---" lines,
// and a leading block of "Key: value" lines terminated by a blank line.
// Files with neither header return empty metadata and the whole input as
// body. Metadata keys are lower-cased.
func Parse(data []byte) (*Result, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	if bytes.HasPrefix(trimmed, []byte("---")) {
		fm, body, ok, err := splitFrontmatter(trimmed)
		if err != nil {
			return nil, err
		}
		if ok {
			return &Result{Metadata: lowerKeys(fm), Body: body}, nil
		}
	}

	if meta, body, ok := splitHeaderBlock(trimmed); ok {
		return &Result{Metadata: meta, Body: body}, nil
	}

	return &Result{Metadata: map[string]any{}, Body: string(data)}, nil
}

// splitFrontmatter separates YAML front matter from the body. ok is false when
// there is no closing delimiter.
func splitFrontmatter(data []byte) (map[string]any, string, bool, error) {
	const delim = "---"

	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", false, nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	fm := map[string]any{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", false, fmt.Errorf("parser: invalid front matter: %w", err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, body, true, nil
}

// splitHeaderBlock reads leading "Key: value" lines up to the first blank
// line. ok is false when the first line is not a header line. Offsets are
// taken from the raw lines so CRLF input splits at the same place as LF.
func splitHeaderBlock(data []byte) (map[string]any, string, bool) {
	meta := map[string]any{}
	consumed := 0
	for _, raw := range bytes.SplitAfter(data, []byte("\n")) {
		line := strings.TrimRight(string(raw), "\r\n")
		if strings.TrimSpace(line) == "" {
			consumed += len(raw)
			break
		}
		m := headerLineRe.FindStringSubmatch(line)
		if m == nil {
			if len(meta) == 0 {
				return nil, "", false
			}
			// First non-header line ends the block and belongs to the body.
			break
		}
		consumed += len(raw)
		meta[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	if len(meta) == 0 {
		return nil, "", false
	}
	body := strings.TrimLeft(string(data[consumed:]), "\n\r")
	return meta, body, true
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
