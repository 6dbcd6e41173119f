package integration_tests

import (
	"testing"

	"github.com/specialistvlad/vuldesign/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppLoader_LoadsProjectTree(t *testing.T) {
	// --- Act ---
	result := testutil.RunDesignTest(t, testutil.ValidProject, "order")

	// --- Assert ---
	require.NoError(t, result.Err, "The application run should not produce an error")
	require.NotNil(t, result.App.Design(), "Design should be loaded")

	assert.Equal(t, []string{"DEPTH", "SPARE", "WIDTH"}, result.App.Design().Configs.Names())
	assert.Equal(t, []string{"leaf", "top"}, result.App.Design().Modules.Names())
	assert.Contains(t, result.Output, "Project loaded.")
	assert.Contains(t, result.Output, "configs: SPARE, WIDTH, DEPTH\nbundles: word\nmodules: leaf, top\n")
}

func TestAppLoader_RecordsSourceLocations(t *testing.T) {
	result := testutil.RunDesignTest(t, testutil.ValidProject, "config", "DEPTH")

	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "DEPTH = 4 (WIDTH / 8)\n")
	assert.Contains(t, result.Output, "configs.hcl:6\n")

	leaf, err := result.App.Design().Modules.Get("leaf")
	require.NoError(t, err)
	require.NotNil(t, leaf.Source)
	assert.Contains(t, leaf.Source.String(), "leaf.hcl:1")
}

func TestAppLoader_AppliesProjectSettings(t *testing.T) {
	files := testutil.WithFile(testutil.ValidProject, "vuldesign.yaml", "default_tag: core\n")
	files = testutil.WithFile(files, "flags.hcl", `bundle "flag" {
  member "on" { type = "bool" }
}
`)

	result := testutil.RunDesignTest(t, files, "bundle", "flag")

	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "struct flag [core]\n  on: bool\n")
	assert.Equal(t, "core", result.App.Settings().DefaultTag)

	tags, err := result.App.Design().Bundles.Tags("word")
	require.NoError(t, err)
	assert.Equal(t, []string{"bus"}, tags, "explicit tags are kept")
}

func TestAppLoader_RejectsBadSettings(t *testing.T) {
	files := testutil.WithFile(testutil.ValidProject, "vuldesign.yaml", "colour: blue\n")

	result := testutil.RunDesignTest(t, files, "order")

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to decode settings")
	assert.Nil(t, result.App)
}
