package version

import (
	"encoding/json"
	"log"
	"runtime/debug"
)

type info struct {
	Commit string `json:"commit"`
	Time   string `json:"time"`
}

var build = func() info {
	v := info{Commit: "dev"}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" {
				v.Commit = setting.Value
			}
			if setting.Key == "vcs.time" {
				v.Time = setting.Value
			}
		}
	}
	return v
}()

var Version = func() string {
	b, err := json.Marshal(&build)
	if err != nil {
		log.Fatal(err)
	}
	return string(b)
}()

// Commit returns the short vcs revision or "dev" for untracked builds.
func Commit() string {
	if len(build.Commit) > 7 {
		return build.Commit[:7]
	}
	return build.Commit
}
