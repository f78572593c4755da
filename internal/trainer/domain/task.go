package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var namePattern = regexp.MustCompile(`^[\w\-.]+$`)

// ValidName reports whether s is usable as an owner, task or run directory name.
func ValidName(s string) bool {
	return s != "." && s != ".." && namePattern.MatchString(s)
}

// TaskKey builds the key identifying an owner's task.
func TaskKey(owner, task string) string {
	return owner + "/" + task
}

// SplitTaskKey is the inverse of TaskKey.
func SplitTaskKey(key string) (owner, task string, err error) {
	owner, task, ok := strings.Cut(key, "/")
	if !ok || !ValidName(owner) || !ValidName(task) {
		return "", "", fmt.Errorf("invalid task key %q, expected owner/task", key)
	}
	return owner, task, nil
}
