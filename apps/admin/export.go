package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func (cli *commandLine) exportStudents(path string) error {
	students, err := cli.api.ListStudents(context.Background())
	if err != nil {
		return errors.Wrap(err, "listing students")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = writeStudentsFunc(f, students); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return errors.Wrap(err, "writing students")
	}
	if err = f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d students written to %s\n", len(students), path)
	return nil
}
