package tcc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatEntries renders entries as "table" (the default) or "json".
func FormatEntries(entries []Entry, format string) (string, error) {
	switch format {
	case "json":
		if entries == nil {
			entries = []Entry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "table", "":
		var b strings.Builder
		fmt.Fprintf(&b, "%-26s | %-26s | %-8s | %s\n", "Service", "Client", "Auth", "Modified")
		b.WriteString(strings.Repeat("-", 27) + "|" + strings.Repeat("-", 28) + "|" + strings.Repeat("-", 10) + "|" + strings.Repeat("-", 20) + "\n")

		for _, e := range entries {
			modified := ""
			if !e.LastModified.IsZero() {
				modified = e.LastModified.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(&b, "%-26s | %-26s | %-8s | %s\n",
				truncate(Describe(e.Service), 26), truncate(shortClient(e.Client), 26), e.AuthString(), modified)
		}
		return b.String(), nil

	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// shortClient reduces an app path to its bundle name and a bundle id to its
// last component.
func shortClient(client string) string {
	if strings.Contains(client, ".app") {
		for _, part := range strings.Split(client, "/") {
			if strings.HasSuffix(part, ".app") {
				return strings.TrimSuffix(part, ".app")
			}
		}
	}
	if strings.Contains(client, ".") && !strings.Contains(client, "/") {
		parts := strings.Split(client, ".")
		return parts[len(parts)-1]
	}
	return client
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
