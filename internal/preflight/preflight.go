// Package preflight gates a run on the tooling versions it was written
// against. Every check fails with a found-vs-required message so an
// operator can fix the environment without reading source.
package preflight

import (
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/vim25"
)

const (
	// MinGoVersion is the oldest Go runtime the tool is built for.
	MinGoVersion = "go1.24"

	// MinGovmomiVersion is the oldest govmomi release with the
	// CustomFieldsManager surface this tool relies on.
	MinGovmomiVersion = "v0.39.0"

	// MinAPIVersion is the oldest vSphere API level the bundled vim25
	// client may negotiate.
	MinAPIVersion = "7.0"

	govmomiModule = "github.com/vmware/govmomi"
)

// Check runs every prerequisite check and returns the first failure.
func Check() error {
	if err := checkRuntime(); err != nil {
		return err
	}
	if err := checkGovmomiModule(); err != nil {
		return err
	}
	return checkAPIVersion()
}

func checkRuntime() error {
	found := runtime.Version()
	if !strings.HasPrefix(found, "go") {
		// Development toolchains report e.g. "devel +abcdef"; let them through.
		return nil
	}
	if compareVersions(strings.TrimPrefix(found, "go"), strings.TrimPrefix(MinGoVersion, "go")) < 0 {
		return errors.Errorf("Go runtime %s is too old, %s or newer is required", found, MinGoVersion)
	}
	return nil
}

func checkGovmomiModule() error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("build info unavailable, cannot verify govmomi version")
	}
	return checkGovmomiBuildInfo(info)
}

func checkGovmomiBuildInfo(info *debug.BuildInfo) error {
	for _, dep := range info.Deps {
		if dep.Path != govmomiModule {
			continue
		}
		found := dep.Version
		if dep.Replace != nil {
			found = dep.Replace.Version
		}
		if found == "(devel)" {
			return nil
		}
		if compareVersions(strings.TrimPrefix(found, "v"), strings.TrimPrefix(MinGovmomiVersion, "v")) < 0 {
			return errors.Errorf("govmomi %s is too old, %s or newer is required", found, MinGovmomiVersion)
		}
		return nil
	}
	if len(info.Deps) == 0 {
		// Test binaries and tool builds carry no dependency list; go.mod
		// still pins the govmomi requirement for those builds.
		return nil
	}
	return errors.Errorf("module %s not present in build info", govmomiModule)
}

func checkAPIVersion() error {
	if compareVersions(vim25.Version, MinAPIVersion) < 0 {
		return errors.Errorf("vSphere API client version %s is too old, %s or newer is required", vim25.Version, MinAPIVersion)
	}
	return nil
}

// compareVersions compares dotted numeric versions, returning -1, 0 or 1.
// Missing segments count as zero, so "7.0" equals "7.0.0".
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av = numericPrefix(as[i])
		}
		if i < len(bs) {
			bv = numericPrefix(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// numericPrefix parses the leading digits of a segment, so "2rc1" is 2.
func numericPrefix(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
