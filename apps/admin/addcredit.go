package main

import (
	"context"
	"errors"

	"github.com/convenientedu/portal/core/user"
)

var errNotAParent = errors.New("user is not a parent")

// addCredit tops up a parent's prepaid support session balance.
func (cli *commandLine) addCredit(parent string, amount int) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, parent)
	if err != nil {
		return err
	}
	if usr.Role != user.RoleParent {
		return errNotAParent
	}
	return cli.creditSvc.Credit(ctx, usr.ID, amount)
}
