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
	"github.com/rivo/tview"

	"github.com/Adembc/sshdock/internal/core/domain"
)

// applyTheme sets tview's global styles. Widgets read them when created, so the
// layout must be rebuilt afterwards.
func applyTheme(name string) {
	switch name {
	case domain.ThemeDark:
		tview.Styles = tview.Theme{
			PrimitiveBackgroundColor:    tcell.NewRGBColor(0x1c, 0x1c, 0x1c),
			ContrastBackgroundColor:     tcell.NewRGBColor(0x30, 0x30, 0x30),
			MoreContrastBackgroundColor: tcell.NewRGBColor(0x44, 0x44, 0x44),
			BorderColor:                 tcell.Color238,
			TitleColor:                  tcell.Color250,
			GraphicsColor:               tcell.Color238,
			PrimaryTextColor:            tcell.Color252,
			SecondaryTextColor:          tcell.ColorGold,
			TertiaryTextColor:           tcell.ColorMediumSeaGreen,
			InverseTextColor:            tcell.ColorBlack,
			ContrastSecondaryTextColor:  tcell.ColorLightSkyBlue,
		}
	case domain.ThemeLight:
		tview.Styles = tview.Theme{
			PrimitiveBackgroundColor:    tcell.ColorWhite,
			ContrastBackgroundColor:     tcell.NewRGBColor(0xdd, 0xe6, 0xf0),
			MoreContrastBackgroundColor: tcell.NewRGBColor(0xb0, 0xc4, 0xde),
			BorderColor:                 tcell.ColorGray,
			TitleColor:                  tcell.ColorNavy,
			GraphicsColor:               tcell.ColorGray,
			PrimaryTextColor:            tcell.ColorBlack,
			SecondaryTextColor:          tcell.ColorDarkBlue,
			TertiaryTextColor:           tcell.ColorDarkGreen,
			InverseTextColor:            tcell.ColorWhite,
			ContrastSecondaryTextColor:  tcell.ColorDarkRed,
		}
	default:
		tview.Styles = defaultStyles
	}
}

var defaultStyles = tview.Styles
