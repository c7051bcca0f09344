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

package ui

import (
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adembc/sshdock/internal/core/appstate"
	"github.com/Adembc/sshdock/internal/core/domain"
)

func defNames(defs []fieldDef) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.name
	}
	return names
}

func TestFieldDefsFollowTabOrder(t *testing.T) {
	assert.Equal(t, appstate.ProfileFormFields, defNames(profileFieldDefs))
	assert.Equal(t, appstate.SettingsFormFields, defNames(settingsFieldDefs))
}

func TestKeyOptions(t *testing.T) {
	opts := keyOptions([]string{"/k/a", "/k/b"})
	require.Len(t, opts, 3)
	assert.Equal(t, 0, optionIndex(opts, ""))
	assert.Equal(t, 2, optionIndex(opts, "/k/b"))
	assert.Equal(t, -1, optionIndex(opts, "/k/c"))
}

func TestDraftFormSyncShowsDraftValues(t *testing.T) {
	draft := &appstate.FormDraft{
		Name:       "web",
		Port:       "22",
		Auth:       string(domain.AuthAutoKey),
		KeyChoices: []string{"/home/u/.ssh/id_ed25519", "/home/u/keys/work.pem"},
		Errors:     map[string]string{},
	}
	var changes []string
	form := newProfileForm(draft, func(field, _ string) { changes = append(changes, field) }, func() {}, func() {})

	keyPath := form.form.GetFormItem(5).(*tview.InputField)
	auth := form.form.GetFormItem(4).(*tview.DropDown)
	choice := form.form.GetFormItem(6).(*tview.DropDown)
	current, _ := choice.GetCurrentOption()
	assert.Equal(t, 0, current)

	draft.KeyPath = "/home/u/keys/work.pem"
	draft.Auth = string(domain.AuthKeyFile)
	draft.Errors[domain.FieldHost] = "host is required"
	form.Sync(draft.Errors, len(appstate.ProfileFormFields))

	assert.Equal(t, "/home/u/keys/work.pem", keyPath.GetText())
	current, _ = choice.GetCurrentOption()
	assert.Equal(t, 2, current)
	current, _ = auth.GetCurrentOption()
	assert.Equal(t, optionIndex(authOptions, string(domain.AuthKeyFile)), current)
	assert.Contains(t, form.errors.GetText(true), "host is required")
	assert.Empty(t, changes, "syncing must not echo edits back")
}
