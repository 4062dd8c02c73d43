/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in> 
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// pkg/zfs/command/constants.go

package command

import "time"

const (
	// Base commands
	// TODO: Make these configurable?
	BinZFS   = "/usr/local/sbin/zfs"
	BinZpool = "/usr/local/sbin/zpool"

	maxCommandArgs = 64

	// Default timeout for command execution
	DefaultTimeout = 30 * time.Second
)

// Dangerous characters that could enable command injection
var dangerousChars = "&|><$`\\[];{}"

// Commands that support JSON output. Narrowed to the two read commands
// VolumeManager actually issues through Execute (ListPools, ListDatasets,
// ListSnapshots, HasDataset all go through "zfs list"/"zpool list");
// "zfs send"/"zfs receive" stream stdout directly via exec.CommandContext
// and never pass through here.
var JSONSupportedCommands = map[string]bool{
	"zfs list":   true,
	"zpool list": true,
}

// Commands that require sudo. Narrowed to the two mutating commands
// VolumeManager issues through Execute (CreateSnapshot, DeleteSnapshot).
var SudoRequiredCommands = map[string]bool{
	"zfs snapshot": true,
	"zfs destroy":  true,
}
