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

	"github.com/Adembc/sshdock/internal/core/domain"
)

// ProfileList draws the visible profiles. Selection is driven from State, never
// from the widget's own key handling.
type ProfileList struct {
	*tview.List
}

func NewProfileList() *ProfileList {
	list := &ProfileList{List: tview.NewList()}
	list.build()
	return list
}

func (pl *ProfileList) build() {
	pl.List.ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetWrapAround(false).
		SetBorder(true).
		SetTitle(" Profiles ").
		SetTitleAlign(tview.AlignLeft).
		SetBorderPadding(0, 0, 1, 1)
	pl.List.SetInputCapture(func(*tcell.EventKey) *tcell.EventKey { return nil })
}

// Update redraws every row and moves the highlight to cursor.
func (pl *ProfileList) Update(profiles []domain.Profile, cursor int, result func(string) (domain.ProbeResult, bool)) {
	pl.List.Clear()
	for _, p := range profiles {
		r, ok := result(p.ID)
		pl.List.AddItem(formatProfileLine(p, r, ok), "", 0, nil)
	}
	if len(profiles) > 0 {
		pl.List.SetCurrentItem(cursor)
	}
}

// SetFilterTitle shows the active filter in the border.
func (pl *ProfileList) SetFilterTitle(filter string, shown, total int) {
	if filter == "" {
		pl.List.SetTitle(fmt.Sprintf(" Profiles (%d) ", total))
		return
	}
	pl.List.SetTitle(fmt.Sprintf(" Profiles (%d/%d) filter: %s ", shown, total, tview.Escape(filter)))
}
