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
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
)

// State is the whole interactive application. It is owned by the UI goroutine;
// nothing else may call Handle.
type State struct {
	store    ports.ProfileService
	vault    ports.CredentialVault
	probes   ports.ProbeDispatcher
	launcher ports.SessionLauncher
	logger   *zap.SugaredLogger

	view      View
	cursor    int
	filter    string
	filtering bool
	status    string
	notice    *Notice

	form     *FormDraft
	editBase domain.Profile
	settings *SettingsDraft

	deleteTarget domain.Profile
	promptTarget domain.Profile
	promptInput  string

	generations map[string]uint64
	results     map[string]domain.ProbeResult
	nextGen     uint64
	quitArmed   bool
}

// New returns a State in the list view. store must already be loaded.
func New(
	logger *zap.SugaredLogger,
	store ports.ProfileService,
	vault ports.CredentialVault,
	probes ports.ProbeDispatcher,
	launcher ports.SessionLauncher,
) *State {
	return &State{
		store:       store,
		vault:       vault,
		probes:      probes,
		launcher:    launcher,
		logger:      logger,
		view:        ViewList,
		generations: make(map[string]uint64),
		results:     make(map[string]domain.ProbeResult),
	}
}

// Handle applies one event and returns the command the UI loop must run, if any.
func (s *State) Handle(ev Event) Command {
	switch ev := ev.(type) {
	case KeyIntent:
		return s.handleIntent(ev.Intent)
	case FieldChanged:
		s.handleFieldChanged(ev)
	case ProbeCompleted:
		s.handleProbeCompleted(ev)
	case LaunchFinished:
		s.handleLaunchFinished(ev)
	case CopyFinished:
		if ev.Err != nil {
			s.showError("Copy failed", ev.Err)
		} else {
			s.status = "ssh command copied to clipboard"
		}
	default:
		s.logger.Warnw("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
	return none
}

func (s *State) handleIntent(intent Intent) Command {
	if intent == IntentQuit && s.quitArmed {
		return s.quit()
	}
	if s.notice != nil {
		if intent == IntentConfirm || intent == IntentCancel {
			s.notice = nil
		}
		return none
	}

	switch s.view {
	case ViewList:
		return s.handleListIntent(intent)
	case ViewForm:
		s.handleFormIntent(intent)
	case ViewSettings:
		s.handleSettingsIntent(intent)
	case ViewConfirmDelete:
		s.handleConfirmDeleteIntent(intent)
	case ViewPasswordPrompt:
		s.handlePasswordPromptIntent(intent)
	case ViewHelp:
		if intent == IntentConfirm || intent == IntentCancel || intent == IntentHelp {
			s.view = ViewList
		}
	}
	return none
}

func (s *State) handleListIntent(intent Intent) Command {
	s.status = ""
	switch intent {
	case IntentUp:
		s.moveCursor(-1)
	case IntentDown:
		s.moveCursor(1)
	case IntentAdd:
		s.form = newAddDraft(s.store.Settings())
		s.form.KeyChoices = s.vault.KeyCandidates()
		s.editBase = domain.Profile{}
		s.view = ViewForm
	case IntentSettings:
		s.settings = newSettingsDraft(s.store.Settings())
		s.view = ViewSettings
	case IntentHelp:
		s.view = ViewHelp
	case IntentFilter:
		s.filtering = true
	case IntentConfirm:
		if s.filtering {
			s.filtering = false
			return none
		}
		return s.connect()
	case IntentCancel:
		s.filtering = false
		s.setFilter("")
	case IntentQuit:
		return s.quit()
	}

	p, ok := s.Selected()
	if !ok {
		return none
	}
	switch intent {
	case IntentConnect:
		return s.connect()
	case IntentEdit:
		s.form = newEditDraft(p)
		s.form.KeyChoices = s.vault.KeyCandidates()
		s.editBase = p
		s.view = ViewForm
	case IntentDelete:
		s.deleteTarget = p
		s.view = ViewConfirmDelete
	case IntentTest:
		s.test(p)
	case IntentDuplicate:
		s.duplicate(p)
	case IntentCopy:
		return s.copyCommand(p)
	}
	return none
}

func (s *State) connect() Command {
	p, ok := s.Selected()
	if !ok {
		return none
	}
	auth, err := s.vault.ResolveAuth(p)
	if err != nil {
		s.showError("Cannot connect", err)
		return none
	}
	s.status = "connecting to " + p.Name
	s.logger.Infow("launch requested", "profile", p.ID, "auth", string(auth.Kind))
	return Command{Kind: CmdLaunch, Profile: p, Auth: auth}
}

func (s *State) copyCommand(p domain.Profile) Command {
	auth, err := s.vault.ResolveAuth(p)
	if err != nil {
		// The command is still useful with the configured key path.
		auth = domain.ResolvedAuth{Kind: p.Auth.Kind, KeyPath: p.Auth.KeyPath}
	}
	auth.Password = ""
	return Command{Kind: CmdCopy, Profile: p, Text: s.launcher.Command(p, auth)}
}

// test resolves auth and dispatches a probe. A password profile without a known
// secret asks for one first.
func (s *State) test(p domain.Profile) {
	auth, err := s.vault.ResolveAuth(p)
	if err != nil {
		s.showError("Cannot test "+p.Name, err)
		return
	}
	if auth.PromptRequired && !auth.HasSecret() {
		s.promptTarget = p
		s.promptInput = ""
		s.view = ViewPasswordPrompt
		return
	}
	s.dispatchProbe(p, auth)
}

func (s *State) dispatchProbe(p domain.Profile, auth domain.ResolvedAuth) {
	s.nextGen++
	gen := s.nextGen
	s.generations[p.ID] = gen
	s.results[p.ID] = domain.ProbeResult{ProfileID: p.ID, Generation: gen, Outcome: domain.Pending(), At: time.Now()}
	s.probes.Dispatch(domain.ProbeRequest{
		ProfileID:  p.ID,
		Generation: gen,
		Target:     domain.ProbeTarget{Address: p.Address(), User: p.User, Auth: auth},
	})
	s.status = "testing " + p.Name
}

func (s *State) duplicate(p domain.Profile) {
	dup, err := s.store.Duplicate(p.ID)
	if err != nil {
		s.showError("Duplicate failed", err)
		return
	}
	s.selectID(dup.ID)
	s.status = "duplicated as " + dup.Name
}

func (s *State) quit() Command {
	if !s.quitArmed {
		if err := s.store.Flush(); err != nil {
			s.quitArmed = true
			s.showError("Save failed", fmt.Errorf("%w (press q again to quit without saving)", err))
			return none
		}
	}
	s.vault.Clear()
	s.logger.Infow("quit")
	return Command{Kind: CmdQuit}
}

func (s *State) handleFormIntent(intent Intent) {
	switch intent {
	case IntentNextField:
		s.form.ActiveField = cycle(s.form.ActiveField, 1, focusStops(ProfileFormFields))
	case IntentPrevField:
		s.form.ActiveField = cycle(s.form.ActiveField, -1, focusStops(ProfileFormFields))
	case IntentCancel:
		s.form = nil
		s.editBase = domain.Profile{}
		s.view = ViewList
	case IntentConfirm:
		s.submitForm()
	}
}

func (s *State) submitForm() {
	p := s.form.apply(s.editBase)

	var err error
	if s.form.Mode == FormAdd {
		p.ID = ""
		err = s.store.Add(p)
	} else {
		err = s.store.Update(p)
	}
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.form.annotate(verr)
			return
		}
		s.showError("Save failed", err)
		return
	}

	if s.form.Mode == FormAdd {
		profiles := s.store.List()
		p = profiles[len(profiles)-1]
		s.status = "added " + p.Name
	} else {
		s.forgetProbe(p.ID)
		s.status = "saved " + p.Name
	}
	s.form = nil
	s.editBase = domain.Profile{}
	s.view = ViewList
	s.selectID(p.ID)
}

func (s *State) handleSettingsIntent(intent Intent) {
	switch intent {
	case IntentNextField:
		s.settings.ActiveField = cycle(s.settings.ActiveField, 1, focusStops(SettingsFormFields))
	case IntentPrevField:
		s.settings.ActiveField = cycle(s.settings.ActiveField, -1, focusStops(SettingsFormFields))
	case IntentCancel:
		s.settings = nil
		s.view = ViewList
	case IntentConfirm:
		if err := s.store.UpdateSettings(s.settings.settings()); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				s.settings.annotate(verr)
				return
			}
			s.showError("Save failed", err)
			return
		}
		s.settings = nil
		s.view = ViewList
		s.status = "settings saved"
	}
}

func (s *State) handleConfirmDeleteIntent(intent Intent) {
	switch intent {
	case IntentCancel:
		s.deleteTarget = domain.Profile{}
		s.view = ViewList
	case IntentConfirm:
		target := s.deleteTarget
		s.deleteTarget = domain.Profile{}
		s.view = ViewList
		if err := s.store.Remove(target.ID); err != nil {
			s.showError("Delete failed", err)
			return
		}
		s.forgetProbe(target.ID)
		s.vault.Forget(target.ID)
		s.clampCursor()
		s.status = "deleted " + target.Name
	}
}

func (s *State) handlePasswordPromptIntent(intent Intent) {
	switch intent {
	case IntentCancel:
		s.promptTarget = domain.Profile{}
		s.promptInput = ""
		s.view = ViewList
	case IntentConfirm:
		target := s.promptTarget
		password := s.promptInput
		s.promptTarget = domain.Profile{}
		s.promptInput = ""
		s.view = ViewList

		// An empty answer still checks reachability and the handshake.
		if password != "" {
			s.vault.Remember(target.ID, password)
		}
		auth, err := s.vault.ResolveAuth(target)
		if err != nil {
			s.showError("Cannot test "+target.Name, err)
			return
		}
		if password != "" {
			auth.Password = password
		}
		s.dispatchProbe(target, auth)
	}
}

func (s *State) handleFieldChanged(ev FieldChanged) {
	switch {
	case ev.Field == FieldFilter:
		s.setFilter(ev.Value)
	case s.view == ViewForm && s.form != nil:
		if !s.form.Set(ev.Field, ev.Value) {
			s.logger.Warnw("unknown form field", "field", ev.Field)
		}
	case s.view == ViewSettings && s.settings != nil:
		if !s.settings.Set(ev.Field, ev.Value) {
			s.logger.Warnw("unknown settings field", "field", ev.Field)
		}
	case s.view == ViewPasswordPrompt && ev.Field == FieldPassword:
		s.promptInput = ev.Value
	}
}

// handleProbeCompleted keeps only the result of the latest probe per profile.
func (s *State) handleProbeCompleted(ev ProbeCompleted) {
	if cur, ok := s.generations[ev.ProfileID]; !ok || cur != ev.Generation {
		s.logger.Debugw("stale probe result dropped",
			"profile", ev.ProfileID, "generation", ev.Generation, "current", s.generations[ev.ProfileID])
		return
	}
	s.results[ev.ProfileID] = domain.ProbeResult{
		ProfileID:  ev.ProfileID,
		Generation: ev.Generation,
		Outcome:    ev.Outcome,
		At:         ev.At,
	}
}

func (s *State) handleLaunchFinished(ev LaunchFinished) {
	if ev.Err != nil {
		s.status = ""
		s.showError("Connection failed", ev.Err)
		return
	}
	if err := s.store.RecordConnect(ev.ProfileID); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			s.logger.Warnw("launched profile disappeared", "profile", ev.ProfileID)
			return
		}
		s.showError("Save failed", err)
		return
	}
	if p, ok := s.store.Get(ev.ProfileID); ok {
		s.status = "session with " + p.Name + " ended"
	}
}

func (s *State) forgetProbe(id string) {
	delete(s.results, id)
	delete(s.generations, id)
}

func (s *State) showError(title string, err error) {
	n := &Notice{Title: title, Message: err.Error()}
	var de *domain.Error
	var le *domain.LaunchFailedError
	switch {
	case errors.As(err, &de):
		n.Kind = de.Kind
	case errors.As(err, &le):
		n.Kind = domain.KindLaunchFailed
	}
	s.logger.Errorw(title, "error", err, "kind", string(n.Kind))
	s.notice = n
}

func (s *State) setFilter(query string) {
	id := ""
	if p, ok := s.Selected(); ok {
		id = p.ID
	}
	s.filter = query
	s.cursor = 0
	if id != "" {
		s.selectID(id)
	}
}

func (s *State) moveCursor(delta int) {
	s.cursor += delta
	s.clampCursor()
}

func (s *State) clampCursor() {
	n := len(s.Profiles())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *State) selectID(id string) {
	for i, p := range s.Profiles() {
		if p.ID == id {
			s.cursor = i
			return
		}
	}
	s.clampCursor()
}

// View returns the active view.
func (s *State) View() View { return s.view }

// Profiles returns the visible profiles, filtered when a filter is set.
func (s *State) Profiles() []domain.Profile {
	return filterProfiles(s.store.List(), s.filter)
}

// Total counts every stored profile, filtered or not.
func (s *State) Total() int { return len(s.store.List()) }

func (s *State) Cursor() int { return s.cursor }

// Selected returns the profile under the cursor.
func (s *State) Selected() (domain.Profile, bool) {
	profiles := s.Profiles()
	if s.cursor < 0 || s.cursor >= len(profiles) {
		return domain.Profile{}, false
	}
	return profiles[s.cursor], true
}

func (s *State) Filter() string  { return s.filter }
func (s *State) Filtering() bool { return s.filtering }
func (s *State) Status() string  { return s.status }

// Notice returns the modal notice, if one is showing.
func (s *State) Notice() (Notice, bool) {
	if s.notice == nil {
		return Notice{}, false
	}
	return *s.notice, true
}

// Form returns a copy of the live profile draft.
func (s *State) Form() (*FormDraft, bool) {
	if s.form == nil {
		return nil, false
	}
	return s.form.clone(), true
}

// SettingsDraft returns a copy of the live settings draft.
func (s *State) SettingsDraft() (*SettingsDraft, bool) {
	if s.settings == nil {
		return nil, false
	}
	return s.settings.clone(), true
}

func (s *State) Settings() domain.Settings { return s.store.Settings() }

func (s *State) DeleteTarget() domain.Profile { return s.deleteTarget }

func (s *State) PromptTarget() domain.Profile { return s.promptTarget }

// Result returns the latest probe result for a profile.
func (s *State) Result(id string) (domain.ProbeResult, bool) {
	r, ok := s.results[id]
	return r, ok
}

// Generation returns the generation of the latest probe dispatched for id.
func (s *State) Generation(id string) uint64 { return s.generations[id] }
