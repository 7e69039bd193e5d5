package server

import (
	"fmt"
	"regexp"
	"strings"

	"tasklink/internal/models"
)

var idRegex = regexp.MustCompile(`^[a-z]{2}-[0-9a-z]{4}$`)

func validateID(id string) bool {
	return idRegex.MatchString(id)
}

func normalizeStatus(value string) (models.TaskStatus, error) {
	status, err := models.ParseTaskStatus(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidStatus)
	}
	return status, nil
}

func normalizeStatuses(values []string) ([]models.TaskStatus, error) {
	out := make([]models.TaskStatus, 0, len(values))
	for _, value := range values {
		status, err := normalizeStatus(value)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}

// statusSet converts request strings into a StatusSet. A nil slice stays nil
// so an absent field means "no set".
func statusSet(values []string) (models.StatusSet, error) {
	if values == nil {
		return nil, nil
	}
	set, err := models.NewStatusSet(values)
	if err != nil {
		return nil, badRequestCode(err, ErrCodeInvalidStatus)
	}
	return set, nil
}

func normalizePrefix(prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) != 2 {
		return "", fmt.Errorf("project prefix must be 2 letters")
	}
	for _, r := range prefix {
		if r < 'a' || r > 'z' {
			return "", fmt.Errorf("project prefix must be lowercase letters")
		}
	}
	return prefix, nil
}
