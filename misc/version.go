// Package misc holds build time program identification.
package misc

// Values below are set by the linker at build time, for example:
//
//	go build -ldflags "-X lectern/misc.version=1.2.0 -X lectern/misc.gitHash=abcdef0"
var (
	appName = "lectern"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
