// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown
// remediation help for the failures syncbin users hit most often: unknown
// setups, a held update lock, broken config, missing tools.
package issue
