// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/Crystalnix/BitPop-sub015/cmd/extctl"

func main() {
	cmd.Execute()
}
