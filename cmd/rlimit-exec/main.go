// Command rlimit-exec is a standalone resource limiter helper for hosts that
// cannot call rlimit.Init themselves. Point limiterHelperPath at it.
package main

import (
	"fmt"
	"os"

	"multicompile/internal/compile/rlimit"
)

func main() {
	rlimit.Init()
	if !rlimit.Supported() {
		fmt.Fprintln(os.Stderr, "rlimit-exec: resource limits are not supported on this platform")
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, "rlimit-exec: not meant to be run directly, it is started by the multicompile resource limiter")
	os.Exit(2)
}
