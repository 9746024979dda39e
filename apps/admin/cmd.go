package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	usrSvc    *user.Service
	creditSvc *credit.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run a database migration command (up, down, status, ...)")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-role ROLE] - update or create a user; the password is prompted next")
	fmt.Println("  addcredit -parent USERNAME|EMAIL -amount N - add prepaid support sessions to a parent's balance")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", string(user.RoleAdmin), "The user's role.")

	addCreditCmd := flag.NewFlagSet("addcredit", flag.ExitOnError)
	addCreditParent := addCreditCmd.String("parent", "", "The sponsoring parent's username or email.")
	addCreditAmount := addCreditCmd.Int("amount", 0, "The number of prepaid sessions to add.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, string(pwd), user.Role(*addUserRole))
	case "addcredit":
		if err := addCreditCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addCreditParent == "" || *addCreditAmount <= 0 {
			addCreditCmd.Usage()
			return errHelp
		}
		return cli.addCredit(*addCreditParent, *addCreditAmount)
	default:
		cli.printUsage()
		return errHelp
	}
}
