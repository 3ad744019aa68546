package oracle

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// parseLabeled extracts "LABEL: value" fields from free-form model output.
// Labels match case-insensitively, values run until the next known label, and
// unknown text between labels is ignored. Missing labels yield empty strings.
func parseLabeled(content string, labels ...string) map[string]string {
	fields := make(map[string]string, len(labels))
	known := make(map[string]string, len(labels))
	for _, l := range labels {
		known[strings.ToUpper(l)] = l
	}

	var current string
	var value strings.Builder
	flush := func() {
		if current != "" {
			fields[current] = strings.TrimSpace(value.String())
		}
		value.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if label, rest, ok := matchLabel(trimmed, known); ok {
			flush()
			current = label
			value.WriteString(rest)
			continue
		}
		if current != "" {
			value.WriteString("\n")
			value.WriteString(line)
		}
	}
	flush()
	return fields
}

func matchLabel(line string, known map[string]string) (label, rest string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	head := strings.ToUpper(strings.TrimSpace(strings.Trim(line[:idx], "*# ")))
	canonical, found := known[head]
	if !found {
		return "", "", false
	}
	return canonical, strings.TrimSpace(line[idx+1:]), true
}

// parseSection returns the non-empty lines under "HEADER:" up to the next
// known header.
func parseSection(content, header string, allHeaders ...string) []string {
	fields := parseLabeled(content, allHeaders...)
	block, ok := fields[header]
	if !ok {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// coerceHopConfidence maps free-text confidence onto the two-valued enum.
// Anything that is not recognizably "sufficient" means more evidence.
func coerceHopConfidence(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sufficient", "sufficient.", "yes", "enough":
		return "sufficient"
	default:
		return "needs_more"
	}
}

// coerceFinalConfidence maps free-text confidence onto high/medium/low,
// defaulting to the conservative end.
func coerceFinalConfidence(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(strings.Trim(raw, ".!")))
	switch {
	case strings.HasPrefix(normalized, "high"):
		return "high"
	case strings.HasPrefix(normalized, "med"):
		return "medium"
	case strings.HasPrefix(normalized, "low"):
		return "low"
	default:
		return "unknown"
	}
}

type validationPayload struct {
	IsSupported        any    `json:"is_supported"`
	SupportingEvidence string `json:"supporting_evidence"`
}

// parseValidation accepts strict JSON, repairable JSON, or labeled lines, in
// that order. Unparseable output reports unsupported rather than failing.
func parseValidation(content string) (supported bool, evidence string) {
	raw := extractJSONObject(content)
	var payload validationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &payload) != nil {
			fields := parseLabeled(content, "IS_SUPPORTED", "SUPPORTING_EVIDENCE")
			return parseYesNo(fields["IS_SUPPORTED"]), fields["SUPPORTING_EVIDENCE"]
		}
	}
	switch v := payload.IsSupported.(type) {
	case bool:
		supported = v
	case string:
		supported = parseYesNo(v)
	}
	return supported, payload.SupportingEvidence
}

func parseYesNo(raw string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(strings.Trim(raw, ".!\"")))
	return normalized == "YES" || normalized == "TRUE"
}

// extractJSONObject trims prose and code fences around the outermost object.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
