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

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/Adembc/sshdock/internal/core/appstate"
	"github.com/Adembc/sshdock/internal/core/ports"
)

const AppName = "sshdock"

const (
	pageMain   = "main"
	pageView   = "view"
	pageNotice = "notice"
)

type tui struct {
	logger   *zap.SugaredLogger
	app      *tview.Application
	state    *appstate.State
	launcher ports.SessionLauncher
	inbox    <-chan appstate.Event
	copy     func(string) error

	version string
	commit  string
	theme   string

	pages     *tview.Pages
	root      *tview.Flex
	left      *tview.Flex
	header    *tview.TextView
	list      *ProfileList
	details   *ProfileDetails
	filterBar *tview.InputField
	statusBar *tview.TextView

	form        *DraftForm
	prompt      *tview.Form
	modal       tview.Primitive
	shownView   appstate.View
	viewShown   bool
	shownNotice *appstate.Notice
	noticeModal *tview.Modal

	rendering bool
	stopped   bool
}

// NewTUI wires the terminal UI around state. Events arriving on inbox are
// applied on the UI goroutine.
func NewTUI(
	logger *zap.SugaredLogger,
	state *appstate.State,
	launcher ports.SessionLauncher,
	inbox <-chan appstate.Event,
	version, commit string,
) *tui {
	return &tui{
		logger:   logger,
		state:    state,
		launcher: launcher,
		inbox:    inbox,
		copy:     clipboard.WriteAll,
		version:  version,
		commit:   commit,
	}
}

func (t *tui) Run() error {
	t.app = tview.NewApplication()
	t.theme = t.state.Settings().Theme
	t.buildLayout()
	t.app.SetInputCapture(t.handleGlobalKeys)

	done := make(chan struct{})
	defer close(done)
	go t.pump(done)

	t.render()
	t.logger.Infow("tui started", "version", t.version)
	if err := t.app.Run(); err != nil {
		t.logger.Errorw("tui exited with error", "error", err)
		return err
	}
	return nil
}

// pump forwards background events to the UI goroutine in arrival order.
func (t *tui) pump(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-t.inbox:
			if !ok {
				return
			}
			t.app.QueueUpdateDraw(func() {
				if !t.stopped {
					t.dispatch(ev)
				}
			})
		}
	}
}

func (t *tui) buildLayout() {
	applyTheme(t.theme)

	t.header = tview.NewTextView().SetDynamicColors(true)
	t.header.SetText(fmt.Sprintf(" [::b]%s[-:-:-] [#8A8A8A]%s (%s)[-]", AppName, t.version, t.commit))

	t.list = NewProfileList()
	t.details = NewProfileDetails()
	t.filterBar = tview.NewInputField().
		SetLabel(" / ").
		SetFieldBackgroundColor(tcell.ColorDefault).
		SetText(t.state.Filter()).
		SetChangedFunc(t.handleFilterInput)
	t.statusBar = tview.NewTextView().SetDynamicColors(true)

	t.left = tview.NewFlex().SetDirection(tview.FlexRow)
	body := tview.NewFlex().
		AddItem(t.left, 0, 3, true).
		AddItem(t.details, 0, 2, false)
	t.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.header, 1, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(t.statusBar, 1, 0, false)

	t.pages = tview.NewPages().AddPage(pageMain, t.root, true, true)
	t.viewShown = false
	t.shownNotice = nil
	t.app.SetRoot(t.pages, true)
}

// render brings every widget in line with State.
func (t *tui) render() {
	t.rendering = true
	defer func() { t.rendering = false }()

	if theme := t.state.Settings().Theme; theme != t.theme {
		t.theme = theme
		t.buildLayout()
	}

	t.renderMain()
	t.renderView()
	t.renderNotice()
}

func (t *tui) renderMain() {
	profiles := t.state.Profiles()
	t.list.Update(profiles, t.state.Cursor(), t.state.Result)
	t.list.SetFilterTitle(t.state.Filter(), len(profiles), t.state.Total())

	if p, ok := t.state.Selected(); ok {
		r, tested := t.state.Result(p.ID)
		t.details.UpdateProfile(p, r, tested)
	} else {
		t.details.ShowEmpty(t.state.Filter() != "")
	}

	t.left.Clear()
	if t.state.Filtering() || t.state.Filter() != "" {
		if t.filterBar.GetText() != t.state.Filter() {
			t.filterBar.SetText(t.state.Filter())
		}
		t.left.AddItem(t.filterBar, 1, 0, t.state.Filtering())
	}
	t.left.AddItem(t.list, 0, 1, !t.state.Filtering())

	if status := t.state.Status(); status != "" {
		t.statusBar.SetText("[#A0FFA0]" + tview.Escape(status) + "[-]")
	} else {
		t.statusBar.SetText(DefaultStatusText())
	}
}

func (t *tui) renderView() {
	view := t.state.View()
	if !t.viewShown || view != t.shownView {
		t.pages.RemovePage(pageView)
		t.form, t.prompt, t.modal = nil, nil, nil

		var page tview.Primitive
		switch view {
		case appstate.ViewForm:
			page = t.showProfileForm()
		case appstate.ViewSettings:
			page = t.showSettingsForm()
		case appstate.ViewPasswordPrompt:
			page = t.showPasswordPrompt()
		case appstate.ViewConfirmDelete:
			t.modal = t.showDeleteConfirmModal()
			page = t.modal
		case appstate.ViewHelp:
			t.modal = t.showHelpModal()
			page = t.modal
		}
		if page != nil {
			t.pages.AddPage(pageView, page, true, true)
		}
		t.shownView = view
		t.viewShown = true
	}

	switch view {
	case appstate.ViewForm:
		if d, ok := t.state.Form(); ok {
			t.form.Sync(d.Errors, d.ActiveField)
		}
		t.app.SetFocus(t.form)
	case appstate.ViewSettings:
		if d, ok := t.state.SettingsDraft(); ok {
			t.form.Sync(d.Errors, d.ActiveField)
		}
		t.app.SetFocus(t.form)
	case appstate.ViewPasswordPrompt:
		t.app.SetFocus(t.prompt)
	case appstate.ViewConfirmDelete, appstate.ViewHelp:
		t.app.SetFocus(t.modal)
	default:
		if t.state.Filtering() {
			t.app.SetFocus(t.filterBar)
		} else {
			t.app.SetFocus(t.list)
		}
	}
}

func (t *tui) renderNotice() {
	n, ok := t.state.Notice()
	if !ok {
		if t.shownNotice != nil {
			t.pages.RemovePage(pageNotice)
			t.shownNotice = nil
		}
		return
	}
	if t.shownNotice == nil || *t.shownNotice != n {
		t.pages.RemovePage(pageNotice)
		modal := t.showNoticeModal(n)
		t.pages.AddPage(pageNotice, modal, true, true)
		t.shownNotice = &n
		t.noticeModal = modal
	}
	t.app.SetFocus(t.noticeModal)
}
