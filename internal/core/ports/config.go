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

package ports

import "time"

type ConfigProvider interface {
	HomeDir() string
	ConfigDir() string
	ConfigPath(elems ...string) string
	LogPath(filename string) string
	ExpandHome(path string) string
}

type FlagsProvider interface {
	IsDebug() bool
	GetFlag(name string) string
	GetBool(name string) bool
	GetDuration(name string) time.Duration
	Changed(name string) bool
}
