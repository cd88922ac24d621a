// SPDX-License-Identifier: MPL-2.0

package main

import cmd "syncbin-cli/cmd/syncbin"

func main() {
	cmd.Execute()
}
