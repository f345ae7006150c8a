package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

var (
	version   string = "v0"    // api version
	sha1ver   string = "-"     // sha1 revision used to build the program
	buildTime string = "devTS" // when the executable was built
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}
