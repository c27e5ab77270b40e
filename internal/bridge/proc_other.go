//go:build !unix

package bridge

import "os/exec"

// configureProcess keeps the default CommandContext behaviour, which kills
// the direct child only.
func configureProcess(_ *exec.Cmd) {}
