package config

import "os"

func IsDebug() bool {
	return os.Getenv("RAGWAY_DEBUG") == "1"
}
