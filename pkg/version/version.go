package version

// Version of the build, overridden at build time with
// -ldflags "-X github.com/projectdiscovery/hostsweep/pkg/version.Version=..."
var Version = "v0.1.0"
