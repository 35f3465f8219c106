package main

import (
	"github.com/pressly/goose/v3"

	"github.com/mentormatch/mentormatch/storage/database"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if err := database.SetUpGoose(cli.engine); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db.DB, database.MigrationsDir(cli.engine), args[1:]...)
}
