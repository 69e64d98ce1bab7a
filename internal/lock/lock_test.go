package lock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creeperpm/creeper/internal/cas"
	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/install"
)

func TestBuild_RequiresMcJar(t *testing.T) {
	_, _, err := Build(install.Install{
		McAssetIndex:  &cas.Artifact{BLAKE3: "idx"},
		JavaMainClass: "net.minecraft.client.main.Main",
	})
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "mc_jar", nf.Key)
}

func TestBuild_RequiresAssetIndex(t *testing.T) {
	_, _, err := Build(install.Install{
		McJar:         &cas.Artifact{BLAKE3: "jar"},
		JavaMainClass: "net.minecraft.client.main.Main",
	})
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "mc_asset_index", nf.Key)
}

func TestBuild_RequiresMainClass(t *testing.T) {
	_, _, err := Build(install.Install{
		McJar:        &cas.Artifact{BLAKE3: "jar"},
		McAssetIndex: &cas.Artifact{BLAKE3: "idx"},
	})
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "java_main_class", nf.Key)
}

func TestBuild_FullDeployment(t *testing.T) {
	in := install.Install{
		JavaLib:       []cas.Artifact{{BLAKE3: "lib0"}, {BLAKE3: "lib1"}},
		JavaMainClass: "net.minecraft.client.main.Main",
		Native:        map[string]cas.Artifact{"liblwjgl.so": {BLAKE3: "native0"}},
		McJar:         &cas.Artifact{BLAKE3: "jar"},
		McFlag:        []string{"--width", "854"},
		McAssetIndex:  &cas.Artifact{BLAKE3: "abc123"},
		McMod:         []cas.Artifact{{BLAKE3: "mod0"}},
	}

	deployments, flags, err := Build(in)
	require.NoError(t, err)

	byPath := map[string]string{}
	for _, d := range deployments {
		byPath[d.Path] = d.Artifact.BLAKE3
	}

	require.Equal(t, "lib0", byPath["libraries/0"])
	require.Equal(t, "lib1", byPath["libraries/1"])
	require.Equal(t, "native0", byPath["liblwjgl.so"])
	require.Equal(t, "jar", byPath["minecraft.jar"])
	require.Equal(t, "mod0", byPath["mods/0"])
	require.Equal(t, "abc123", byPath["assets/indexes/abc123.json"])

	require.Equal(t, []string{"--width", "854", "--assetIndex", "abc123"}, flags)
}

func TestBuild_Pure(t *testing.T) {
	in := install.Install{
		JavaMainClass: "net.minecraft.client.main.Main",
		McJar:         &cas.Artifact{BLAKE3: "jar"},
		McAssetIndex:  &cas.Artifact{BLAKE3: "idx"},
	}

	d1, f1, err1 := Build(in)
	require.NoError(t, err1)
	d2, f2, err2 := Build(in)
	require.NoError(t, err2)

	require.Equal(t, d1, d2)
	require.Equal(t, f1, f2)
}
