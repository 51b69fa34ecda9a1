package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
)

func (cli *commandLine) login(name, pwd string) error {
	id, err := cli.api.Authenticate(context.Background(), name, pwd)
	if err != nil {
		return errors.New(core.UserMessage(err, "Login failed"))
	}
	if err = id.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "id: %s\nname: %s\nrole: %s\nlanding: %s\n", id.ID, id.Name, id.Role, id.Role.Landing())
	return nil
}
