// Package version reports which iterkit build is linked into the binary.
//
// The version is read from the module build info. It can be pinned at
// compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/iterkit/version.Version=v1.2.0"
package version
