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

package appstate

import (
	"time"

	"github.com/Adembc/sshdock/internal/core/domain"
)

// Intent is a user action, already decoded from a key press by the UI.
type Intent int

const (
	IntentUp Intent = iota
	IntentDown
	IntentConnect
	IntentEdit
	IntentDelete
	IntentTest
	IntentDuplicate
	IntentAdd
	IntentSettings
	IntentNextField
	IntentPrevField
	IntentConfirm
	IntentCancel
	IntentQuit
	IntentCopy
	IntentFilter
	IntentHelp
)

var intentNames = map[Intent]string{
	IntentUp:        "up",
	IntentDown:      "down",
	IntentConnect:   "connect",
	IntentEdit:      "edit",
	IntentDelete:    "delete",
	IntentTest:      "test",
	IntentDuplicate: "duplicate",
	IntentAdd:       "add",
	IntentSettings:  "settings",
	IntentNextField: "next-field",
	IntentPrevField: "prev-field",
	IntentConfirm:   "confirm",
	IntentCancel:    "cancel",
	IntentQuit:      "quit",
	IntentCopy:      "copy",
	IntentFilter:    "filter",
	IntentHelp:      "help",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// Event is anything State.Handle consumes.
type Event interface {
	isEvent()
}

type KeyIntent struct {
	Intent Intent
}

// FieldChanged carries the new text of an input owned by the current view.
// Field is one of the domain field names, FieldPassword or FieldFilter.
type FieldChanged struct {
	Field string
	Value string
}

// ProbeCompleted is posted by the probe engine through the inbound queue.
type ProbeCompleted struct {
	ProfileID  string
	Generation uint64
	Outcome    domain.ProbeOutcome
	At         time.Time
}

// LaunchFinished is fed back by the UI loop once the ssh process has exited.
type LaunchFinished struct {
	ProfileID string
	Err       error
}

// CopyFinished reports the outcome of writing to the clipboard.
type CopyFinished struct {
	Err error
}

func (KeyIntent) isEvent()      {}
func (FieldChanged) isEvent()   {}
func (ProbeCompleted) isEvent() {}
func (LaunchFinished) isEvent() {}
func (CopyFinished) isEvent()   {}

const (
	FieldPassword = "password"
	FieldFilter   = "filter"
)

type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdLaunch
	CmdQuit
	CmdCopy
)

// Command is work that State cannot do itself and hands back to the UI loop.
type Command struct {
	Kind    CommandKind
	Profile domain.Profile
	Auth    domain.ResolvedAuth
	Text    string
}

var none = Command{Kind: CmdNone}

type View int

const (
	ViewList View = iota
	ViewForm
	ViewSettings
	ViewConfirmDelete
	ViewPasswordPrompt
	ViewHelp
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewForm:
		return "form"
	case ViewSettings:
		return "settings"
	case ViewConfirmDelete:
		return "confirm-delete"
	case ViewPasswordPrompt:
		return "password-prompt"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Notice is a modal message. It blocks every intent except confirm and cancel.
type Notice struct {
	Title   string
	Message string
	Kind    domain.ErrorKind
}
