// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import "net/http"

// DomainBackupPlan covers the backup-plan reasoning engine: the snapshot
// entity model, the chain builder, the planner, and the target grouper.
const DomainBackupPlan Domain = "BACKUPPLAN"

const (
	// Backup-plan errors (9000-9099)
	//
	// These map onto the six error kinds of the planner design: a snapshot
	// name that doesn't decode under the managed naming scheme, a path
	// lookup miss, an attempt to add a duplicate/mismatched child, a
	// violated structural invariant, a restore that can't be satisfied by
	// any candidate source, and a conflicting destination state.
	BackupPlanParseError     = 9000 + iota // snapshot name does not match the managed naming scheme
	BackupPlanResolveError                 // a pool/dataset/snapshot/zfs_path lookup missed
	BackupPlanAddError                     // duplicate identity, or pool/dataset mismatch, on add
	BackupPlanInvariantError               // missing creation_time, name-mismatched merge, cycle
	BackupPlanPlanningError                // restore needs a snapshot no candidate source has
	BackupPlanConflictError                // local/remote state makes an operation destructive
)

func init() {
	errorDefinitions[BackupPlanParseError] = struct {
		message    string
		domain     Domain
		httpStatus int
	}{"Snapshot name does not match the managed naming scheme", DomainBackupPlan, http.StatusBadRequest}

	errorDefinitions[BackupPlanResolveError] = struct {
		message    string
		domain     Domain
		httpStatus int
	}{"Lookup did not resolve to a known entity", DomainBackupPlan, http.StatusNotFound}

	errorDefinitions[BackupPlanAddError] = struct {
		message    string
		domain     Domain
		httpStatus int
	}{"Cannot add child: identity conflict or container mismatch", DomainBackupPlan, http.StatusConflict}

	errorDefinitions[BackupPlanInvariantError] = struct {
		message    string
		domain     Domain
		httpStatus int
	}{"Entity-model invariant violated", DomainBackupPlan, http.StatusInternalServerError}

	errorDefinitions[BackupPlanPlanningError] = struct {
		message    string
		domain     Domain
		httpStatus int
	}{"Plan cannot be satisfied by any candidate source", DomainBackupPlan, http.StatusUnprocessableEntity}

	errorDefinitions[BackupPlanConflictError] = struct {
		message    string
		domain     Domain
		httpStatus int
	}{"Operation would be destructive or infeasible given current state", DomainBackupPlan, http.StatusConflict}
}
