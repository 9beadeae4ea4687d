// Package version reports build information.
//
// Version, commit and build time are set with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/modelgate/version.Version=1.0.0" ./cmd/modelgate
package version
