package util

import "os"

// dockerEnvFile is created by the docker runtime in every container
var dockerEnvFile = "/.dockerenv"

func IsRunningInDocker() bool {
	_, err := os.Stat(dockerEnvFile)
	return err == nil
}
