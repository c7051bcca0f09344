// Copyright 2025.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes failures so callers can decide how to surface them.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindIO            ErrorKind = "io"
	KindCorruptStore  ErrorKind = "corrupt_store"
	KindDuplicateID   ErrorKind = "duplicate_id"
	KindNotFound      ErrorKind = "not_found"
	KindKeyUnreadable ErrorKind = "key_unreadable"
	KindNoKeyFound    ErrorKind = "no_key_found"
	KindLaunchFailed  ErrorKind = "launch_failed"
)

// Error is a categorized error with an optional underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(err error, kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err, or anything it wraps, carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	if err == nil {
		return false
	}
	var de *Error
	if errors.As(err, &de) && de.Kind == kind {
		return true
	}
	switch kind {
	case KindValidation:
		var ve *ValidationError
		return errors.As(err, &ve)
	case KindLaunchFailed:
		var le *LaunchFailedError
		return errors.As(err, &le)
	}
	return false
}

// Form field names shared by validation and the form views.
const (
	FieldName        = "name"
	FieldHost        = "host"
	FieldPort        = "port"
	FieldUser        = "user"
	FieldAuth        = "auth"
	FieldKeyPath     = "key_path"
	FieldPasswordRef = "password_ref"

	FieldKeySearchPaths = "key_search_paths"
	FieldDefaultPort    = "default_port"
	FieldTheme          = "theme"
	FieldSSHCommand     = "ssh_command"
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field-level problems of a draft.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// For returns the message for field, or "" if the field is fine.
func (e *ValidationError) For(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// LaunchFailedError reports an abnormal end of the external ssh process.
// ExitStatus is -1 when the process never started.
type LaunchFailedError struct {
	ExitStatus int
	Cause      error
}

func (e *LaunchFailedError) Error() string {
	if e.ExitStatus < 0 {
		return fmt.Sprintf("ssh could not be started: %v", e.Cause)
	}
	return fmt.Sprintf("ssh exited with status %d", e.ExitStatus)
}

func (e *LaunchFailedError) Unwrap() error {
	return e.Cause
}
