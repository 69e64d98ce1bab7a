package main

import (
	"github.com/spf13/cobra"

	"github.com/creeperpm/creeper/internal/config"
)

var planCmd = &cobra.Command{
	Use:   "plan <pkg[@requirement]>...",
	Short: "Resolve and install a package set, printing the deployment plan",
	Long: `plan runs resolution, installs every selected package (downloading
and verifying artifacts through the content-addressed store as needed),
and prints the resulting deployment list: every artifact's relative
path inside an instance directory.`,
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

		deployments, flags, err := a.Plan(globalCtx, root)
		if err != nil {
			printError(err)
			exitWithCode(ExitDependencyError)
		}

		for _, d := range deployments {
			printInfof("%s  %s\n", d.Path, d.Artifact.BLAKE3)
		}
		if len(flags) > 0 {
			printInfo("flags:", flags)
		}
	},
}
