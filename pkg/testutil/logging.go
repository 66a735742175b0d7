package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevelEnv selects the log level shown during tests, e.g. ESCROW_TEST_LOG=debug.
const LogLevelEnv = "ESCROW_TEST_LOG"

// Logs written while testing are discarded unless the test binary runs with
// -v or LogLevelEnv is set.
func init() {
	if level, err := logrus.ParseLevel(os.Getenv(LogLevelEnv)); err == nil {
		logrus.SetLevel(level)
		return
	}

	logrus.SetLevel(logrus.TraceLevel)
	if !isVerbose(os.Args) {
		logrus.StandardLogger().SetOutput(io.Discard)
	}
}

func isVerbose(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "-test.v", arg == "-test.v=true", arg == "-test.v=test2json":
			return true
		case strings.HasPrefix(arg, "-test.v="):
			return false
		}
	}
	return false
}
