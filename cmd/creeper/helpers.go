package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creeperpm/creeper/internal/app"
	"github.com/creeperpm/creeper/internal/config"
	"github.com/creeperpm/creeper/internal/errmsg"
	"github.com/creeperpm/creeper/internal/instance"
	"github.com/creeperpm/creeper/internal/log"
)

// newApp wires an App rooted at cfg's data/cache directories, using
// CREEPER_REGISTRY (falling back to "<data>/registry") as the package
// registry tree.
func newApp(cfg *config.Config) (*app.App, error) {
	registryRoot := os.Getenv("CREEPER_REGISTRY")
	if registryRoot == "" {
		registryRoot = filepath.Join(cfg.DataDir, "registry")
	}
	return app.New(cfg, registryRoot, log.Default())
}

// loadInstanceOrFail loads the instance rooted at dir (or the nearest
// ancestor containing creeper.toml if dir is ""), exiting with
// ExitInstanceInvalid on failure.
func loadInstanceOrFail(dir string) *instance.Instance {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}
		found, ok := instance.FindDir(cwd)
		if !ok {
			fmt.Fprintln(os.Stderr, "no creeper.toml found in this directory or any parent")
			exitWithCode(ExitInstanceInvalid)
		}
		dir = found
	}

	inst, err := instance.Load(dir)
	if err != nil {
		printError(err)
		exitWithCode(ExitInstanceInvalid)
	}
	return inst
}

// parseRequirements turns CLI arguments of the form "id" or
// "id@requirement" into the map[string]string that app.Resolve wants.
// A bare "id" means "any version" ("*").
func parseRequirements(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		idPart, req, found := strings.Cut(a, "@")
		if !found {
			req = "*"
		}
		if idPart == "" {
			return nil, fmt.Errorf("malformed package requirement %q", a)
		}
		out[idPart] = req
	}
	return out, nil
}

// printError prints an error to stderr, enriched with actionable
// suggestions via internal/errmsg.
func printError(err error) {
	fmt.Fprintln(os.Stderr, errmsg.Format(err, nil))
}

func printInfo(a ...any) {
	if !quietFlag {
		fmt.Println(a...)
	}
}

func printInfof(format string, a ...any) {
	if !quietFlag {
		fmt.Printf(format, a...)
	}
}
