package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	apisvc "github.com/katikolakarthik/el-frontend/services/api"
	exportsvc "github.com/katikolakarthik/el-frontend/services/export"
)

var (
	readPasswordFunc  = term.ReadPassword       // mockable
	writeStudentsFunc = exportsvc.WriteStudents // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api *apisvc.Client
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -name NAME - check credentials against the API")
	fmt.Fprintln(cli.out, "  export-students -o FILE - write the students roster as a spreadsheet")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginName := loginCmd.String("name", "", "The user's name. The password will be prompted next.")

	exportCmd := flag.NewFlagSet("export-students", flag.ExitOnError)
	exportPath := exportCmd.String("o", "", "Output file, e.g. students.xlsx")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginName == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginName, string(pwd))
	case "export-students":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportPath == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportStudents(*exportPath)
	default:
		cli.printUsage()
		return errHelp
	}
}
