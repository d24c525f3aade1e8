package version

import "runtime/debug"

// Version can be set at build time:
// go build -ldflags "-X github.com/organforge/pipework/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, with -dirty
// appended for modified trees.
var Hash = revision(debug.ReadBuildInfo())

// VersionOrHash is Version, or Hash when no version was set, or "dev".
var VersionOrHash = func() string {
	switch {
	case Version != "":
		return Version
	case Hash != "":
		return Hash
	}
	return "dev"
}()

func revision(info *debug.BuildInfo, ok bool) string {
	if !ok {
		return ""
	}
	var rev string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && modified {
		rev += "-dirty"
	}
	return rev
}
