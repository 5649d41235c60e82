package utils

// Version is the version of the module. The release build overwrites it.
var Version = "0.1.0"
