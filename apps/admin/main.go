package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/FAHMIDA-78/copo/core"
	"github.com/FAHMIDA-78/copo/core/user"
	"github.com/FAHMIDA-78/copo/storage/database"
	sqlxrepos "github.com/FAHMIDA-78/copo/storage/database/sqlx"
)

var logger *log.Logger

type commandLine struct {
	conf    *core.Config
	db      *sqlx.DB
	usrSvc  *user.Service
	usrRepo user.Repository
}

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	usrRepo := sqlxrepos.NewUserRepository(db)
	cli := &commandLine{
		conf:    conf,
		db:      db,
		usrRepo: usrRepo,
		usrSvc:  user.NewService(usrRepo),
	}

	if err := rootCmd(cli).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the attainment service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		migrateCmd(cli),
		addUserCmd(cli),
		resetPasswordCmd(cli),
		sendReportsCmd(cli),
	)
	return root
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
