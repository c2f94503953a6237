package avsinfo

const (
	AppName = "go-avsinfo"
	AppURL  = "https://github.com/avstools/go-avsinfo"
)

var AppVersion = "dev"

func SetAppVersion(version string) {
	if version != "" {
		AppVersion = version
	}
}

func FormatVersion(version string) string {
	if version == "" {
		return "dev"
	}
	return "v" + version
}
