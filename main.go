// Command md-check-link checks links and anchors in Markdown files.
package main

import "github.com/JakeFAU/md-check-link/cmd"

func main() {
	cmd.Execute()
}
