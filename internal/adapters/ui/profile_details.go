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

	"github.com/Adembc/sshdock/internal/core/domain"
)

type ProfileDetails struct {
	*tview.TextView
}

func NewProfileDetails() *ProfileDetails {
	details := &ProfileDetails{
		TextView: tview.NewTextView(),
	}
	details.build()
	return details
}

func (pd *ProfileDetails) build() {
	pd.TextView.SetDynamicColors(true).
		SetWrap(true).
		SetBorder(true).
		SetTitle(" Details ").
		SetTitleAlign(tview.AlignLeft).
		SetBorderColor(tcell.Color238).
		SetTitleColor(tcell.Color250)
}

func (pd *ProfileDetails) UpdateProfile(p domain.Profile, r domain.ProbeResult, tested bool) {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("[::b]%s[-:-:-]\n\n", tview.Escape(p.Name)))

	text.WriteString(fmt.Sprintf("Host: [white]%s[-]\n", tview.Escape(p.Host)))
	text.WriteString(fmt.Sprintf("Port: [white]%d[-]\n", p.Port))
	text.WriteString(fmt.Sprintf("User: [white]%s[-]\n", tview.Escape(p.User)))
	text.WriteString(fmt.Sprintf("Auth: [white]%s[-]\n", tview.Escape(p.Auth.String())))
	if p.PasswordRef != "" {
		text.WriteString(fmt.Sprintf("Password from: [white]%s[-]\n", tview.Escape(p.PasswordRef)))
	}

	text.WriteString(fmt.Sprintf("\nStatus: %s\n", probeText(r, tested)))
	text.WriteString(fmt.Sprintf("Last SSH: [white]%s[-]\nSSH Count: [white]%d[-]\n", humanizeTime(p.LastConnectedAt), p.ConnectCount))
	text.WriteString(fmt.Sprintf("Created: [#8A8A8A]%s[-]\nUpdated: [#8A8A8A]%s[-]\n\n",
		humanizeTime(p.CreatedAt), humanizeTime(p.UpdatedAt)))

	text.WriteString("[::b]Commands:[-:-:-]\n")
	text.WriteString("  Enter: SSH connect\n  t: Test connection\n  c: Copy SSH command\n  e: Edit\n  y: Duplicate\n  d: Delete")

	pd.TextView.SetText(text.String())
	pd.TextView.ScrollToBeginning()
}

func (pd *ProfileDetails) ShowEmpty(filtered bool) {
	if filtered {
		pd.TextView.SetText("No profiles match the current filter.")
		return
	}
	pd.TextView.SetText("No profiles yet.\n\nPress [::b]a[-:-:-] to add one.")
}
