package main

import (
	"context"
	"fmt"
)

// addUser creates an active user.User, or reactivates the one owning email with a new password.
func (cli *commandLine) addUser(name, email, pwd string) error {
	usr, err := cli.usrSvc.AddOrUpdate(context.Background(), name, email, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("user %d <%s> is active\n", usr.ID, usr.Email)
	return nil
}
