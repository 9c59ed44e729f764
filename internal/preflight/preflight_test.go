package preflight

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.22", "1.22", 0},
		{"1.22", "1.22.0", 0},
		{"1.22.3", "1.22", 1},
		{"1.21.9", "1.22", -1},
		{"0.39.0", "0.34.2", 1},
		{"8.0.2.0", "7.0", 1},
		{"6.7", "7.0", -1},
		{"1.22rc1", "1.22", 0},
		{"1.23rc2", "1.22.3", 1},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, compareVersions(tc.a, tc.b), "compare %s vs %s", tc.a, tc.b)
	}
}

func TestCheckPassesInThisEnvironment(t *testing.T) {
	// The test binary is built with the toolchain and govmomi release the
	// module requires, so every gate must pass. Test binaries carry no
	// dependency list in their build info, which the govmomi gate must
	// tolerate.
	require.NoError(t, Check())
}

func buildInfoWithGovmomi(version string) *debug.BuildInfo {
	return &debug.BuildInfo{
		Main: debug.Module{Path: "vmattr"},
		Deps: []*debug.Module{
			{Path: "github.com/pkg/errors", Version: "v0.9.1"},
			{Path: govmomiModule, Version: version},
		},
	}
}

func TestCheckGovmomiBuildInfo(t *testing.T) {
	require.NoError(t, checkGovmomiBuildInfo(buildInfoWithGovmomi(MinGovmomiVersion)))
	require.NoError(t, checkGovmomiBuildInfo(buildInfoWithGovmomi("v0.40.0")))
	require.NoError(t, checkGovmomiBuildInfo(buildInfoWithGovmomi("(devel)")))

	err := checkGovmomiBuildInfo(buildInfoWithGovmomi("v0.34.2"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "v0.34.2")
	require.Contains(t, err.Error(), MinGovmomiVersion)
}

func TestCheckGovmomiBuildInfoHonorsReplacement(t *testing.T) {
	info := buildInfoWithGovmomi("v0.39.0")
	info.Deps[1].Replace = &debug.Module{Path: govmomiModule, Version: "v0.30.0"}

	err := checkGovmomiBuildInfo(info)
	require.Error(t, err)
	require.Contains(t, err.Error(), "v0.30.0")
}

func TestCheckGovmomiBuildInfoWithoutDependencyList(t *testing.T) {
	// Test binaries report an empty Deps slice; the gate passes and
	// leaves enforcement to go.mod.
	info := &debug.BuildInfo{Main: debug.Module{Path: "vmattr"}}
	require.NoError(t, checkGovmomiBuildInfo(info))
}

func TestCheckGovmomiBuildInfoMissingFromDependencyList(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "vmattr"},
		Deps: []*debug.Module{{Path: "github.com/pkg/errors", Version: "v0.9.1"}},
	}
	err := checkGovmomiBuildInfo(info)
	require.Error(t, err)
	require.Contains(t, err.Error(), govmomiModule)
}

func TestCheckAPIVersion(t *testing.T) {
	require.NoError(t, checkAPIVersion())
}
