package cli

import (
	"fmt"
	"io"

	"github.com/avstools/go-avsinfo/internal/avsinfo"
)

var appVersion = "dev"

func SetVersion(version string) {
	if version != "" {
		appVersion = version
	}
}

func Version(stdout io.Writer) {
	fmt.Fprintf(stdout, "go-avsinfo, %s\n", avsinfo.FormatVersion(appVersion))
}
