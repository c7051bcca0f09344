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
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/Adembc/sshdock/internal/core/domain"
)

type profileSource []domain.Profile

func (s profileSource) String(i int) string {
	p := s[i]
	return strings.Join([]string{p.Name, p.Host, p.User}, " ")
}

func (s profileSource) Len() int { return len(s) }

// filterProfiles keeps the profiles matching query, in their stored order.
func filterProfiles(profiles []domain.Profile, query string) []domain.Profile {
	query = strings.TrimSpace(query)
	if query == "" {
		return profiles
	}
	matches := fuzzy.FindFrom(query, profileSource(profiles))
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	sort.Ints(idx)

	out := make([]domain.Profile, 0, len(idx))
	for _, i := range idx {
		out = append(out, profiles[i])
	}
	return out
}
