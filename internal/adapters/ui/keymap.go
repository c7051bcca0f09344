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
	"github.com/gdamore/tcell/v2"

	"github.com/Adembc/sshdock/internal/core/appstate"
)

// keyContext is what the key mapping needs to know about the screen.
type keyContext struct {
	view      appstate.View
	filtering bool
	notice    bool
	// onInput is true when a text input has focus, so Enter advances the form.
	onInput bool
}

var listRunes = map[rune]appstate.Intent{
	'q': appstate.IntentQuit,
	'a': appstate.IntentAdd,
	'e': appstate.IntentEdit,
	'd': appstate.IntentDelete,
	't': appstate.IntentTest,
	'y': appstate.IntentDuplicate,
	's': appstate.IntentSettings,
	'c': appstate.IntentCopy,
	'/': appstate.IntentFilter,
	'?': appstate.IntentHelp,
	'k': appstate.IntentUp,
	'j': appstate.IntentDown,
}

// intentForKey maps a key press to an intent. ok is false when the key belongs
// to the focused widget instead.
func intentForKey(ctx keyContext, event *tcell.EventKey) (appstate.Intent, bool) {
	if ctx.notice {
		switch {
		case event.Key() == tcell.KeyEnter:
			return appstate.IntentConfirm, true
		case event.Key() == tcell.KeyEscape:
			return appstate.IntentCancel, true
		case event.Key() == tcell.KeyRune && event.Rune() == 'q':
			return appstate.IntentQuit, true
		}
		return 0, false
	}

	switch ctx.view {
	case appstate.ViewList:
		return listIntent(ctx, event)
	case appstate.ViewForm, appstate.ViewSettings:
		switch event.Key() {
		case tcell.KeyTab:
			return appstate.IntentNextField, true
		case tcell.KeyBacktab:
			return appstate.IntentPrevField, true
		case tcell.KeyCtrlS:
			return appstate.IntentConfirm, true
		case tcell.KeyEscape:
			return appstate.IntentCancel, true
		case tcell.KeyEnter:
			if ctx.onInput {
				return appstate.IntentNextField, true
			}
		}
	case appstate.ViewPasswordPrompt:
		switch event.Key() {
		case tcell.KeyEnter:
			return appstate.IntentConfirm, true
		case tcell.KeyEscape:
			return appstate.IntentCancel, true
		}
	case appstate.ViewConfirmDelete:
		if event.Key() == tcell.KeyEscape {
			return appstate.IntentCancel, true
		}
	case appstate.ViewHelp:
		switch {
		case event.Key() == tcell.KeyEnter, event.Key() == tcell.KeyEscape:
			return appstate.IntentCancel, true
		case event.Key() == tcell.KeyRune && (event.Rune() == '?' || event.Rune() == 'q'):
			return appstate.IntentCancel, true
		}
	}
	return 0, false
}

func listIntent(ctx keyContext, event *tcell.EventKey) (appstate.Intent, bool) {
	switch event.Key() {
	case tcell.KeyUp:
		return appstate.IntentUp, true
	case tcell.KeyDown:
		return appstate.IntentDown, true
	case tcell.KeyEscape:
		return appstate.IntentCancel, true
	case tcell.KeyEnter:
		if ctx.filtering {
			return appstate.IntentConfirm, true
		}
		return appstate.IntentConnect, true
	case tcell.KeyRune:
		if ctx.filtering {
			return 0, false
		}
		intent, ok := listRunes[event.Rune()]
		return intent, ok
	}
	return 0, false
}
