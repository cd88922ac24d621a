// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by syncbin tests: a controllable
// clock for polling and countdown code, process-environment helpers
// (MustSetenv, MustChdir, IsolateHome) and file fixtures (MustWriteFile).
//
// The recording subprocess runner lives in the fakerunner subpackage.
package testutil
