package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time:
//
//	go build -ldflags "-X github.com/rmitchellscott/palettedither/internal/version.Version=1.2.0"
var (
	Version   = "0.1.0"
	BuildTime = "development"
	GitCommit = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string
	BuildTime string
	GitCommit string
	GoVersion string
}

func Get() Info {
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

// String is the short form, e.g. "v0.1.0"
func String() string {
	return "v" + Version
}

// Long is the -version output
func Long() string {
	i := Get()
	return fmt.Sprintf("palettedither v%s (commit %s, built %s, %s)", i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}
