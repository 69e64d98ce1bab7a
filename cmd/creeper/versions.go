package main

import (
	"github.com/spf13/cobra"

	"github.com/creeperpm/creeper/internal/config"
	"github.com/creeperpm/creeper/internal/id"
)

var versionsCmd = &cobra.Command{
	Use:   "versions <pkg>",
	Short: "List a package's available versions in the registry",
	Long: `versions lists every version of a package published to the registry,
oldest first, with the latest revision of each.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pkg, err := id.Parse(args[0])
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

		versions, err := a.Registry.GetVersions(pkg)
		if err != nil {
			printError(err)
			exitWithCode(ExitRegistryError)
		}

		for _, v := range versions {
			revs, err := a.Registry.Revisions(pkg, v)
			if err != nil {
				printError(err)
				exitWithCode(ExitRegistryError)
			}
			if len(revs) > 0 && revs[0] != 0 {
				printInfof("%s (rev %d)\n", v, revs[0])
				continue
			}
			printInfof("%s\n", v)
		}
	},
}
