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

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Adembc/sshdock/internal/core/appstate"
	"github.com/Adembc/sshdock/internal/core/domain"
)

// =============================================================================
// Event Handlers (turn input into State events)
// =============================================================================

func (t *tui) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	_, noticeShown := t.state.Notice()
	ctx := keyContext{
		view:      t.state.View(),
		filtering: t.state.Filtering(),
		notice:    noticeShown,
		onInput:   t.form != nil && t.form.FocusedInput(),
	}

	intent, ok := intentForKey(ctx, event)
	if !ok {
		if noticeShown {
			return nil
		}
		return event
	}
	t.dispatch(appstate.KeyIntent{Intent: intent})
	return nil
}

func (t *tui) handleFieldChanged(field, value string) {
	if t.rendering {
		return
	}
	t.dispatch(appstate.FieldChanged{Field: field, Value: value})
}

func (t *tui) handleFilterInput(query string) {
	t.handleFieldChanged(appstate.FieldFilter, query)
}

func (t *tui) handlePasswordInput(password string) {
	t.handleFieldChanged(appstate.FieldPassword, password)
}

func (t *tui) handleConfirm() {
	t.dispatch(appstate.KeyIntent{Intent: appstate.IntentConfirm})
}

func (t *tui) handleCancel() {
	t.dispatch(appstate.KeyIntent{Intent: appstate.IntentCancel})
}

// dispatch is the only way State changes. It must run on the UI goroutine.
func (t *tui) dispatch(ev appstate.Event) {
	t.execute(t.state.Handle(ev))
	if !t.stopped {
		t.render()
	}
}

func (t *tui) execute(cmd appstate.Command) {
	switch cmd.Kind {
	case appstate.CmdLaunch:
		var err error
		// Suspend leaves the alternate screen and raw mode for the ssh session
		// and restores both afterwards.
		t.app.Suspend(func() {
			err = t.launcher.Launch(cmd.Profile, cmd.Auth)
		})
		t.execute(t.state.Handle(appstate.LaunchFinished{ProfileID: cmd.Profile.ID, Err: err}))
	case appstate.CmdCopy:
		err := t.copy(cmd.Text)
		if err != nil {
			t.logger.Warnw("clipboard write failed", "error", err)
		}
		t.execute(t.state.Handle(appstate.CopyFinished{Err: err}))
	case appstate.CmdQuit:
		t.stopped = true
		t.app.Stop()
	}
}

// =============================================================================
// UI Display Functions (build the primitive for the active view)
// =============================================================================

func (t *tui) showProfileForm() tview.Primitive {
	draft, _ := t.state.Form()
	t.form = newProfileForm(draft, t.handleFieldChanged, t.handleConfirm, t.handleCancel)
	return centered(t.form, 80, len(profileFieldDefs)*2+len(profileFieldDefs)+6)
}

func (t *tui) showSettingsForm() tview.Primitive {
	draft, _ := t.state.SettingsDraft()
	t.form = newSettingsForm(draft, t.handleFieldChanged, t.handleConfirm, t.handleCancel)
	return centered(t.form, 80, len(settingsFieldDefs)*2+len(settingsFieldDefs)+6)
}

func (t *tui) showPasswordPrompt() tview.Primitive {
	t.prompt = newPasswordPrompt(t.state.PromptTarget(), t.handlePasswordInput, t.handleConfirm, t.handleCancel)
	return centered(t.prompt, 70, 7)
}

func (t *tui) showDeleteConfirmModal() tview.Primitive {
	p := t.state.DeleteTarget()
	msg := fmt.Sprintf("Delete profile %s (%s:%d)?\n\nThis action cannot be undone.",
		p.Name, p.Destination(), p.Port)

	return tview.NewModal().
		SetText(msg).
		AddButtons([]string{"Cancel", "Delete"}).
		SetDoneFunc(func(buttonIndex int, _ string) {
			if buttonIndex == 1 {
				t.handleConfirm()
				return
			}
			t.handleCancel()
		})
}

func (t *tui) showHelpModal() tview.Primitive {
	text := "Keyboard shortcuts:\n\n" +
		"  ↑/↓ or k/j     Navigate\n" +
		"  Enter          SSH connect\n" +
		"  t              Test connection\n" +
		"  c              Copy SSH command\n" +
		"  a              Add profile\n" +
		"  e              Edit profile\n" +
		"  y              Duplicate profile\n" +
		"  d              Delete profile\n" +
		"  /              Filter (Esc clears)\n" +
		"  s              Settings\n" +
		"  q              Quit\n" +
		"  ?              Help\n\n" +
		"In forms: Tab/Shift+Tab move, Ctrl+S save, Esc cancel"

	return tview.NewModal().
		SetText(text).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(int, string) { t.handleCancel() })
}

func (t *tui) showNoticeModal(n appstate.Notice) *tview.Modal {
	text := n.Title + "\n\n" + n.Message
	if n.Kind == domain.KindCorruptStore || n.Kind == domain.KindIO {
		text += "\n\nDetails are in the log file."
	}
	return tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { t.handleConfirm() })
}

// centered wraps p in a fixed-size box in the middle of the screen.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
