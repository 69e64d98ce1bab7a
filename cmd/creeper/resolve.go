package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/creeperpm/creeper/internal/config"
	"github.com/creeperpm/creeper/internal/id"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <pkg[@requirement]>...",
	Short: "Resolve a set of package requirements to concrete versions",
	Long: `resolve runs the dependency solver against one or more root package
requirements (e.g. "fabric@^0.15.0" or a bare "vanilla" for any version)
and prints the chosen version for every reachable package.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, err := parseRequirements(args)
		if err != nil {
			printError(err)
			exitWithCode(ExitUsage)
		}

		cfg, err := config.DefaultConfig()
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}

		a, err := newApp(cfg)
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}
		defer a.Close()

		resolved, err := a.Resolve(root)
		if err != nil {
			printError(err)
			exitWithCode(ExitDependencyError)
		}

		pkgs := make([]id.Id, 0, len(resolved))
		for pkg := range resolved {
			pkgs = append(pkgs, pkg)
		}
		sort.Slice(pkgs, func(i, j int) bool { return pkgs[i] < pkgs[j] })
		for _, pkg := range pkgs {
			printInfof("%s %s\n", pkg, resolved[pkg].String())
		}
	},
}
