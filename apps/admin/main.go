package main

import (
	"log"
	"os"

	"github.com/katikolakarthik/el-frontend/core"
	apisvc "github.com/katikolakarthik/el-frontend/services/api"
)

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// start CLI
	cli := commandLine{
		api: apisvc.NewClient(conf.API.BaseURL, conf.API.Timeout),
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
