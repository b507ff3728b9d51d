package version

// Set at build time with -ldflags "-X github.com/sadopc/curlcap/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
