package pbpack

// Version is the semantic version of the pbpack library.
// It can be overridden at build time using:
//
//	go build -ldflags "-X github.com/Mearman/PebbleOS/pkg/pbpack.Version=1.1.0"
//
// Default value follows SemVer.
var Version = "1.0.0"
