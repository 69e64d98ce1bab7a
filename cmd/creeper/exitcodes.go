package main

import "os"

// Exit codes, letting scripts distinguish failure modes without
// parsing stderr.
const (
	ExitSuccess         = 0
	ExitGeneral         = 1
	ExitUsage           = 2
	ExitInstanceInvalid = 3
	ExitRegistryError   = 4
	ExitNetwork         = 5
	ExitDependencyError = 6
	ExitCancelled       = 130
)

func exitWithCode(code int) {
	os.Exit(code)
}
