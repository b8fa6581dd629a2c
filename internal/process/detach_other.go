//go:build !unix && !windows

package process

import "os/exec"

func detach(c *exec.Cmd) {}
