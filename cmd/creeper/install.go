package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/creeperpm/creeper/internal/config"
)

var installDir string

var installCmd = &cobra.Command{
	Use:   "install <pkg[@requirement]>...",
	Short: "Resolve, install, and deploy a package set into an instance",
	Long: `install runs the full pipeline (resolve, install through the CAS,
build the deployment plan) and materializes every artifact at its
planned relative path inside the target instance directory (the
current directory's nearest creeper.toml, or the one named by --dir).`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, err := parseRequirements(args)
		if err != nil {
			printError(err)
			exitWithCode(ExitUsage)
		}

		inst := loadInstanceOrFail(installDir)

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

		deployments, _, err := a.Plan(globalCtx, root)
		if err != nil {
			printError(err)
			exitWithCode(ExitDependencyError)
		}

		for _, d := range deployments {
			src, err := a.Store.Retrieve(globalCtx, d.Artifact)
			if err != nil {
				printError(err)
				exitWithCode(ExitGeneral)
			}
			dest := filepath.Join(inst.Dir, d.Path)
			if err := linkOrCopy(src, dest); err != nil {
				printError(err)
				exitWithCode(ExitGeneral)
			}
			printInfof("%s -> %s\n", d.Path, dest)
		}
	},
}

func init() {
	installCmd.Flags().StringVar(&installDir, "dir", "", "instance directory (default: nearest creeper.toml)")
}

// linkOrCopy materializes src at dest, trying a hard link first (the
// CAS store and the instance share a filesystem in the common case)
// and falling back to a copy across devices.
func linkOrCopy(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	os.Remove(dest)
	if err := os.Link(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
