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
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Adembc/sshdock/internal/core/appstate"
	"github.com/Adembc/sshdock/internal/core/domain"
)

type option struct {
	value string
	label string
}

// fieldDef describes one form row. A row with options is a drop-down.
type fieldDef struct {
	name    string
	label   string
	width   int
	options []option
}

var authOptions = []option{
	{string(domain.AuthAutoKey), "auto-discovered key"},
	{string(domain.AuthKeyFile), "key file"},
	{string(domain.AuthPassword), "password"},
}

var profileFieldDefs = []fieldDef{
	{name: domain.FieldName, label: "Name", width: 40},
	{name: domain.FieldHost, label: "Host", width: 40},
	{name: domain.FieldPort, label: "Port", width: 8},
	{name: domain.FieldUser, label: "User", width: 30},
	{name: domain.FieldAuth, label: "Auth", options: authOptions},
	{name: domain.FieldKeyPath, label: "Key file", width: 50},
	{name: appstate.FieldKeyChoice, label: "Discovered key", options: keyOptions(nil)},
	{name: domain.FieldPasswordRef, label: "Password from (env:NAME / file:PATH)", width: 40},
}

var settingsFieldDefs = []fieldDef{
	{name: domain.FieldKeySearchPaths, label: "Key directories or files (comma)", width: 50},
	{name: domain.FieldDefaultPort, label: "Default port", width: 8},
	{name: domain.FieldTheme, label: "Theme", options: themeOptions()},
	{name: domain.FieldSSHCommand, label: "ssh command", width: 40},
}

// keyOptions offers the discovered keys; the empty first entry keeps the typed path.
func keyOptions(keys []string) []option {
	opts := []option{{value: "", label: "(typed above)"}}
	for _, k := range keys {
		opts = append(opts, option{value: k, label: k})
	}
	return opts
}

func optionIndex(opts []option, value string) int {
	for i, o := range opts {
		if o.value == value {
			return i
		}
	}
	return -1
}

func themeOptions() []option {
	opts := make([]option, 0, len(domain.Themes))
	for _, t := range domain.Themes {
		opts = append(opts, option{value: t, label: t})
	}
	return opts
}

// DraftForm renders a FormDraft or SettingsDraft. The draft stays in State;
// the widget only reports edits.
type DraftForm struct {
	*tview.Flex
	form     *tview.Form
	errors   *tview.TextView
	defs     []fieldDef
	value    func(field string) string
	building bool
}

func NewDraftForm(
	title string,
	defs []fieldDef,
	value func(field string) string,
	onChange func(field, value string),
	onSave, onCancel func(),
) *DraftForm {
	df := &DraftForm{
		Flex:   tview.NewFlex().SetDirection(tview.FlexRow),
		form:   tview.NewForm(),
		errors: tview.NewTextView().SetDynamicColors(true),
		defs:   defs,
		value:  value,
	}
	df.building = true
	defer func() { df.building = false }()

	for _, def := range defs {
		if def.options != nil {
			labels := make([]string, len(def.options))
			for i, o := range def.options {
				labels[i] = o.label
			}
			current := max(optionIndex(def.options, value(def.name)), 0)
			df.form.AddDropDown(def.label, labels, current, func(_ string, index int) {
				if !df.building && index >= 0 {
					onChange(def.name, def.options[index].value)
				}
			})
			continue
		}
		df.form.AddInputField(def.label, value(def.name), def.width, nil, func(text string) {
			if !df.building {
				onChange(def.name, text)
			}
		})
	}
	df.form.AddButton("Save", onSave)
	df.form.AddButton("Cancel", onCancel)
	df.form.SetBorder(true).
		SetTitle(" " + title + " ").
		SetTitleAlign(tview.AlignLeft)
	df.form.SetButtonsAlign(tview.AlignLeft)

	df.errors.SetBorderPadding(0, 0, 1, 1)
	hint := tview.NewTextView().SetDynamicColors(true).
		SetText("[#8A8A8A]Tab/Shift+Tab[-] move  [#8A8A8A]Ctrl+S[-] save  [#8A8A8A]Esc[-] cancel")
	hint.SetBorderPadding(0, 0, 1, 1)

	df.Flex.AddItem(df.form, 0, 1, true).
		AddItem(df.errors, len(defs)+1, 0, false).
		AddItem(hint, 1, 0, false)
	return df
}

// Sync shows the field values and annotations of the draft and moves focus to
// the active field or button.
func (df *DraftForm) Sync(errors map[string]string, active int) {
	df.building = true
	defer func() { df.building = false }()

	var text strings.Builder
	for _, def := range df.defs {
		if msg, ok := errors[def.name]; ok {
			text.WriteString(fmt.Sprintf("[red]%s:[-] %s\n", def.label, tview.Escape(msg)))
		}
	}
	df.errors.SetText(text.String())

	for i, def := range df.defs {
		label := def.label
		if _, bad := errors[def.name]; bad {
			label = "[red]" + label + " ![-]"
		}
		switch item := df.form.GetFormItem(i).(type) {
		case *tview.InputField:
			item.SetLabel(label)
			if v := df.value(def.name); item.GetText() != v {
				item.SetText(v)
			}
		case *tview.DropDown:
			item.SetLabel(label)
			current, _ := item.GetCurrentOption()
			if want := optionIndex(def.options, df.value(def.name)); want >= 0 && want != current {
				item.SetCurrentOption(want)
			}
		}
	}
	df.form.SetFocus(active)
}

// FocusedInput reports whether a text input has focus.
func (df *DraftForm) FocusedInput() bool {
	index, _ := df.form.GetFocusedItemIndex()
	if index < 0 {
		return false
	}
	_, ok := df.form.GetFormItem(index).(*tview.InputField)
	return ok
}

func newProfileForm(d *appstate.FormDraft, onChange func(field, value string), onSave, onCancel func()) *DraftForm {
	title := d.Mode.String() + " profile"
	if d.Mode == appstate.FormEdit {
		title += ": " + d.Name
	}
	defs := make([]fieldDef, len(profileFieldDefs))
	copy(defs, profileFieldDefs)
	for i := range defs {
		if defs[i].name == appstate.FieldKeyChoice {
			defs[i].options = keyOptions(d.KeyChoices)
		}
	}
	return NewDraftForm(title, defs, d.Value, onChange, onSave, onCancel)
}

func newSettingsForm(d *appstate.SettingsDraft, onChange func(field, value string), onSave, onCancel func()) *DraftForm {
	return NewDraftForm("Settings", settingsFieldDefs, d.Value, onChange, onSave, onCancel)
}

func newPasswordPrompt(p domain.Profile, onChange func(string), onConfirm, onCancel func()) *tview.Form {
	form := tview.NewForm()
	form.AddPasswordField("Password", "", 40, '*', onChange)
	form.AddButton("Test", onConfirm)
	form.AddButton("Cancel", onCancel)
	form.SetBorder(true).
		SetTitle(fmt.Sprintf(" Password for %s (empty: check reachability only) ", tview.Escape(p.Destination()))).
		SetTitleAlign(tview.AlignLeft)
	form.SetFieldBackgroundColor(tcell.ColorDarkSlateGray)
	return form
}
