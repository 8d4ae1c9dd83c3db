package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"coursebot/internal/domain"
)

// Telegram rejects inline buttons whose callback data exceeds this many bytes
const maxCallbackData = 64

const (
	tagPath           = "p"
	tagUniversity     = "u"
	tagSpecialization = "s"
	tagFile           = "f"
	tagBack           = "b"
	sep               = "|"
)

var errCallbackTooLong = errors.New("callback data too long")

// EncodeAction serializes a navigation action for an inline button.
// Trailing unselected levels of a path are omitted.
func EncodeAction(a domain.NavAction) (string, error) {
	var parts []string
	switch v := a.(type) {
	case domain.PathChoice:
		parts = []string{tagPath, string(v.Path)}
	case domain.UniversityPath:
		parts = append([]string{tagUniversity}, pathParts(v.University, v.Semester, v.Module, v.Resource)...)
	case domain.SpecializationPath:
		parts = append([]string{tagSpecialization}, pathParts(v.Specialization, v.Semester, v.Module, v.Resource)...)
	case domain.FileSelection:
		branch := tagUniversity
		if v.Specialization {
			branch = tagSpecialization
		}
		parts = []string{tagFile, branch, v.Scope, v.Semester, strconv.Itoa(v.Module), v.Resource, v.File}
	case domain.BackAction:
		parts = []string{tagBack, string(v.Target)}
	default:
		return "", fmt.Errorf("unsupported action %T", a)
	}

	for _, p := range parts[1:] {
		if strings.Contains(p, sep) {
			return "", fmt.Errorf("%w: field %q contains separator", domain.ErrUnknownCallback, p)
		}
	}

	data := strings.Join(parts, sep)
	if len(data) > maxCallbackData {
		return "", fmt.Errorf("%w: %d bytes", errCallbackTooLong, len(data))
	}
	return data, nil
}

func pathParts(scope, semester string, module int, resource string) []string {
	if scope == "" {
		return nil
	}
	parts := []string{scope}
	if semester == "" {
		return parts
	}
	parts = append(parts, semester)
	if module < 0 {
		return parts
	}
	parts = append(parts, strconv.Itoa(module))
	if resource == "" {
		return parts
	}
	return append(parts, resource)
}

// DecodeAction parses callback data produced by EncodeAction.
// Anything else yields domain.ErrUnknownCallback.
func DecodeAction(data string) (domain.NavAction, error) {
	parts := strings.Split(cleanCallbackData(data), sep)

	switch parts[0] {
	case tagPath:
		if len(parts) != 2 {
			break
		}
		switch p := domain.PathKind(parts[1]); p {
		case domain.PathTroncCommun, domain.PathSpecialite:
			return domain.PathChoice{Path: p}, nil
		}

	case tagUniversity:
		scope, semester, module, resource, ok := parsePath(parts[1:])
		if !ok {
			break
		}
		return domain.UniversityPath{University: scope, Semester: semester, Module: module, Resource: resource}, nil

	case tagSpecialization:
		scope, semester, module, resource, ok := parsePath(parts[1:])
		if !ok {
			break
		}
		return domain.SpecializationPath{Specialization: scope, Semester: semester, Module: module, Resource: resource}, nil

	case tagFile:
		if len(parts) != 7 || (parts[1] != tagUniversity && parts[1] != tagSpecialization) {
			break
		}
		module, err := strconv.Atoi(parts[4])
		if err != nil || module < 0 {
			break
		}
		if !isFileKey(parts[6]) {
			break
		}
		if parts[2] == "" || parts[3] == "" || parts[5] == "" {
			break
		}
		return domain.FileSelection{
			Specialization: parts[1] == tagSpecialization,
			Scope:          parts[2],
			Semester:       parts[3],
			Module:         module,
			Resource:       parts[5],
			File:           parts[6],
		}, nil

	case tagBack:
		if len(parts) != 2 {
			break
		}
		switch v := domain.View(parts[1]); v {
		case domain.ViewMainMenu, domain.ViewUniversities, domain.ViewSpecializations:
			return domain.BackAction{Target: v}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCallback, data)
}

func isFileKey(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func parsePath(fields []string) (scope, semester string, module int, resource string, ok bool) {
	module = -1
	if len(fields) > 4 {
		return "", "", -1, "", false
	}
	for _, f := range fields {
		if f == "" {
			return "", "", -1, "", false
		}
	}
	if len(fields) > 0 {
		scope = fields[0]
	}
	if len(fields) > 1 {
		semester = fields[1]
	}
	if len(fields) > 2 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 0 {
			return "", "", -1, "", false
		}
		module = n
	}
	if len(fields) > 3 {
		resource = fields[3]
	}
	return scope, semester, module, resource, true
}
