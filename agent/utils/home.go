package utils

import (
	"os"
	"os/user"
)

// BaseDir returns the home directory of the user. The default wallet and
// connection store live under it.
func BaseDir() string {
	if v := os.Getenv("HOME"); v != "" {
		return v
	}
	currentUser, err := user.Current()
	if err != nil {
		return "."
	}
	return currentUser.HomeDir
}
