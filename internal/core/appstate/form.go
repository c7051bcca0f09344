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
	"strconv"
	"strings"

	"github.com/Adembc/sshdock/internal/core/domain"
)

type FormMode int

const (
	FormAdd FormMode = iota
	FormEdit
)

func (m FormMode) String() string {
	if m == FormEdit {
		return "Edit"
	}
	return "Add"
}

// FieldKeyChoice picks KeyPath from the discovered keys.
const FieldKeyChoice = "key_choice"

// Form buttons follow the fields in tab order.
const (
	ButtonSave   = "save"
	ButtonCancel = "cancel"
)

var FormButtons = []string{ButtonSave, ButtonCancel}

// ProfileFormFields is the tab order of the profile form.
var ProfileFormFields = []string{
	domain.FieldName,
	domain.FieldHost,
	domain.FieldPort,
	domain.FieldUser,
	domain.FieldAuth,
	domain.FieldKeyPath,
	FieldKeyChoice,
	domain.FieldPasswordRef,
}

// SettingsFormFields is the tab order of the settings form.
var SettingsFormFields = []string{
	domain.FieldKeySearchPaths,
	domain.FieldDefaultPort,
	domain.FieldTheme,
	domain.FieldSSHCommand,
}

// FormDraft is the text the user is editing. Nothing reaches the store until confirm.
type FormDraft struct {
	Mode        FormMode
	ProfileID   string
	Name        string
	Host        string
	Port        string
	User        string
	Auth        string
	KeyPath     string
	PasswordRef string
	// KeyChoices are the discovered keys offered next to the free-text key path.
	KeyChoices []string

	ActiveField int
	Errors      map[string]string
}

func newAddDraft(settings domain.Settings) *FormDraft {
	return &FormDraft{
		Mode:   FormAdd,
		Port:   strconv.Itoa(settings.DefaultPort),
		Auth:   string(domain.AuthAutoKey),
		Errors: map[string]string{},
	}
}

func newEditDraft(p domain.Profile) *FormDraft {
	return &FormDraft{
		Mode:        FormEdit,
		ProfileID:   p.ID,
		Name:        p.Name,
		Host:        p.Host,
		Port:        strconv.Itoa(p.Port),
		User:        p.User,
		Auth:        string(p.Auth.Kind),
		KeyPath:     p.Auth.KeyPath,
		PasswordRef: p.PasswordRef,
		Errors:      map[string]string{},
	}
}

// Field returns the name of the focused field or button.
func (d *FormDraft) Field() string {
	return focusName(ProfileFormFields, d.ActiveField)
}

func (d *FormDraft) Value(field string) string {
	switch field {
	case domain.FieldName:
		return d.Name
	case domain.FieldHost:
		return d.Host
	case domain.FieldPort:
		return d.Port
	case domain.FieldUser:
		return d.User
	case domain.FieldAuth:
		return d.Auth
	case domain.FieldKeyPath:
		return d.KeyPath
	case FieldKeyChoice:
		for _, k := range d.KeyChoices {
			if k == d.KeyPath {
				return k
			}
		}
	case domain.FieldPasswordRef:
		return d.PasswordRef
	}
	return ""
}

// Set updates one field and clears its annotation. It reports whether the field exists.
func (d *FormDraft) Set(field, value string) bool {
	switch field {
	case domain.FieldName:
		d.Name = value
	case domain.FieldHost:
		d.Host = value
	case domain.FieldPort:
		d.Port = value
	case domain.FieldUser:
		d.User = value
	case domain.FieldAuth:
		d.Auth = value
	case domain.FieldKeyPath:
		d.KeyPath = value
	case FieldKeyChoice:
		if value == "" {
			return true
		}
		d.KeyPath = value
		d.Auth = string(domain.AuthKeyFile)
		delete(d.Errors, domain.FieldKeyPath)
		delete(d.Errors, domain.FieldAuth)
	case domain.FieldPasswordRef:
		d.PasswordRef = value
	default:
		return false
	}
	delete(d.Errors, field)
	return true
}

// apply copies the draft onto base. An unparsable port becomes 0 so validation
// reports it against the port field.
func (d *FormDraft) apply(base domain.Profile) domain.Profile {
	base.Name = strings.TrimSpace(d.Name)
	base.Host = strings.TrimSpace(d.Host)
	base.User = strings.TrimSpace(d.User)
	base.Port = parsePort(d.Port)
	base.PasswordRef = strings.TrimSpace(d.PasswordRef)

	kind := domain.AuthKind(strings.TrimSpace(d.Auth))
	base.Auth = domain.Auth{Kind: kind}
	if kind == domain.AuthKeyFile {
		base.Auth.KeyPath = strings.TrimSpace(d.KeyPath)
	}
	return base
}

func (d *FormDraft) annotate(err *domain.ValidationError) {
	d.Errors = map[string]string{}
	for _, f := range err.Fields {
		if _, seen := d.Errors[f.Field]; !seen {
			d.Errors[f.Field] = f.Message
		}
	}
	for i, field := range ProfileFormFields {
		if _, bad := d.Errors[field]; bad {
			d.ActiveField = i
			return
		}
	}
}

func (d *FormDraft) clone() *FormDraft {
	out := *d
	out.Errors = make(map[string]string, len(d.Errors))
	for k, v := range d.Errors {
		out.Errors[k] = v
	}
	out.KeyChoices = append([]string(nil), d.KeyChoices...)
	return &out
}

// SettingsDraft mirrors FormDraft for the settings view.
// KeySearchPaths is a comma separated list.
type SettingsDraft struct {
	KeySearchPaths string
	DefaultPort    string
	Theme          string
	SSHCommand     string

	ActiveField int
	Errors      map[string]string
}

func newSettingsDraft(s domain.Settings) *SettingsDraft {
	return &SettingsDraft{
		KeySearchPaths: strings.Join(s.KeySearchPaths, ", "),
		DefaultPort:    strconv.Itoa(s.DefaultPort),
		Theme:          s.Theme,
		SSHCommand:     s.SSHCommand,
		Errors:         map[string]string{},
	}
}

func (d *SettingsDraft) Field() string {
	return focusName(SettingsFormFields, d.ActiveField)
}

func (d *SettingsDraft) Value(field string) string {
	switch field {
	case domain.FieldKeySearchPaths:
		return d.KeySearchPaths
	case domain.FieldDefaultPort:
		return d.DefaultPort
	case domain.FieldTheme:
		return d.Theme
	case domain.FieldSSHCommand:
		return d.SSHCommand
	}
	return ""
}

func (d *SettingsDraft) Set(field, value string) bool {
	switch field {
	case domain.FieldKeySearchPaths:
		d.KeySearchPaths = value
	case domain.FieldDefaultPort:
		d.DefaultPort = value
	case domain.FieldTheme:
		d.Theme = value
	case domain.FieldSSHCommand:
		d.SSHCommand = value
	default:
		return false
	}
	delete(d.Errors, field)
	return true
}

func (d *SettingsDraft) settings() domain.Settings {
	var paths []string
	for _, p := range strings.Split(d.KeySearchPaths, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return domain.Settings{
		KeySearchPaths: paths,
		DefaultPort:    parsePort(d.DefaultPort),
		Theme:          strings.TrimSpace(d.Theme),
		SSHCommand:     strings.TrimSpace(d.SSHCommand),
	}
}

func (d *SettingsDraft) annotate(err *domain.ValidationError) {
	d.Errors = map[string]string{}
	for _, f := range err.Fields {
		if _, seen := d.Errors[f.Field]; !seen {
			d.Errors[f.Field] = f.Message
		}
	}
	for i, field := range SettingsFormFields {
		if _, bad := d.Errors[field]; bad {
			d.ActiveField = i
			return
		}
	}
}

func (d *SettingsDraft) clone() *SettingsDraft {
	out := *d
	out.Errors = make(map[string]string, len(d.Errors))
	for k, v := range d.Errors {
		out.Errors[k] = v
	}
	return &out
}

func parsePort(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func cycle(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

// focusStops is how many tab stops a form with fields has.
func focusStops(fields []string) int {
	return len(fields) + len(FormButtons)
}

func focusName(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return FormButtons[i-len(fields)]
}
