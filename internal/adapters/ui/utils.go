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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/Adembc/sshdock/internal/core/domain"
)

const (
	nameColumnWidth = 22
	hostColumnWidth = 28
)

// cellPad pads a string with spaces so its display width is at least `width` cells.
// Longer strings are truncated with an ellipsis so columns stay aligned.
func cellPad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w > width {
		return runewidth.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}

func humanizeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// probeBadge is the short coloured marker shown in front of each list row.
func probeBadge(r domain.ProbeResult, ok bool) string {
	if !ok {
		return "[#8A8A8A]·[-]"
	}
	switch r.Outcome.Status {
	case domain.ProbePending:
		return "[yellow]…[-]"
	case domain.ProbeSuccess:
		if !r.Outcome.AuthVerified {
			return "[#87D7FF]○[-]"
		}
		return "[green]●[-]"
	case domain.ProbeAuthFailed:
		return "[orange]✗[-]"
	default:
		return "[red]✗[-]"
	}
}

// probeText is the long form of a probe result for the details pane.
func probeText(r domain.ProbeResult, ok bool) string {
	if !ok {
		return "[#8A8A8A]not tested[-]"
	}
	color := "red"
	switch r.Outcome.Status {
	case domain.ProbePending:
		return "[yellow]testing…[-]"
	case domain.ProbeSuccess:
		color = "green"
	case domain.ProbeAuthFailed:
		color = "orange"
	}
	return fmt.Sprintf("[%s]%s[-] [#8A8A8A](%s)[-]", color, tview.Escape(r.Outcome.String()), humanizeTime(r.At))
}

func formatProfileLine(p domain.Profile, r domain.ProbeResult, ok bool) string {
	return fmt.Sprintf("%s %s %s %s",
		probeBadge(r, ok),
		tview.Escape(cellPad(p.Name, nameColumnWidth)),
		tview.Escape(cellPad(p.Destination(), hostColumnWidth)),
		humanizeTime(p.LastConnectedAt))
}

func DefaultStatusText() string {
	return "[#8A8A8A]Enter[-] connect  [#8A8A8A]t[-] test  [#8A8A8A]a[-] add  [#8A8A8A]e[-] edit  " +
		"[#8A8A8A]d[-] delete  [#8A8A8A]y[-] duplicate  [#8A8A8A]c[-] copy  [#8A8A8A]/[-] filter  " +
		"[#8A8A8A]s[-] settings  [#8A8A8A]?[-] help  [#8A8A8A]q[-] quit"
}
