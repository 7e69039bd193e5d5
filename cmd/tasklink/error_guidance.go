package main

import (
	"context"
	"errors"
	"net"

	"tasklink/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized", "forbidden":
			lines = append(lines, "hint: verify TASKLINK_API_TOKEN and TASKLINK_ADMIN_TOKEN configuration.")
		case "transition_blocked":
			for _, b := range apiErr.Blockers {
				lines = append(lines, formatBlockerLine(b))
			}
			lines = append(lines, "hint: finish the blocking tasks or remove the relationship with: tasklink rel rm")
		case "system_type":
			lines = append(lines, "hint: built-in relationship types cannot be deleted or renamed.")
		case "relationship_type_in_use":
			lines = append(lines, "hint: list remaining edges with: tasklink rel list --type <name>")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify TASKLINK_API_URL points to a tasklink server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase TASKLINK_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a tasklink server is running at TASKLINK_API_URL.",
			"hint: start local server manually with: tasklink srv",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
