// Package main provides the entry point for the mipsize CLI.
//
// mipsize reads the model name out of log files named "<model>-init.csv"
// and reports the model's variable count from the MIPLIB catalog.
//
// Usage:
//
//	mipsize resolve /data/logs/markshare_4_0-init.csv
//	mipsize serve --addr localhost:8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
