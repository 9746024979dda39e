package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/user"
	dummydb "github.com/convenientedu/portal/storage/database/dummy"
)

func setup(t *testing.T) (*commandLine, *dummydb.DB) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	cli := &commandLine{
		usrSvc:    user.NewService(dummydb.NewUserRepository(db)),
		creditSvc: credit.NewService(dummydb.NewCreditRepository(db)),
	}
	return cli, db
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "jdoe", "-email", "jdoe@test.cd"}, wantErr: errHelp},
		{name: "bad role", args: []string{"adduser", "-username", "jdoe", "-email", "jdoe@test.cd", "-role", "OVERLORD"},
			extra: extra{pwd: "s3cr3t"}, wantErr: user.ErrUnknownRole},
		{name: "create admin", args: []string{"adduser", "-username", "jdoe", "-email", "jdoe@test.cd"}, extra: extra{pwd: "s3cr3t"}},
		{name: "update keeps one record", args: []string{"adduser", "-username", "jdoe", "-email", "jdoe@test.cd", "-role", "MANAGER"},
			extra: extra{pwd: "n3w-s3cr3t"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := cli.usrSvc.GetByUsernameOrEmail(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("GetByUsernameOrEmail() failed: %v", err)
	}
	if usr.Role != user.RoleManager {
		t.Errorf("role = %s, want %s", usr.Role, user.RoleManager)
	}
	if err := usr.CheckPassword([]byte("n3w-s3cr3t")); err != nil {
		t.Error("failed to update the password")
	}
}

func Test_commandLine_addCredit(t *testing.T) {
	cli, db := setup(t)
	ctx := context.Background()

	parent, err := cli.usrSvc.Create(ctx, user.User{
		Name: "Mrs Hassan", Username: "hassan", Email: "hassan@test.cd", Role: user.RoleParent, IsActive: true,
	})
	if err != nil {
		t.Fatalf("creating parent failed: %v", err)
	}
	teacher, err := cli.usrSvc.Create(ctx, user.User{
		Name: "Mr Otieno", Username: "otieno", Email: "otieno@test.cd", Role: user.RoleTeacher, IsActive: true,
	})
	if err != nil {
		t.Fatalf("creating teacher failed: %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"addcredit"}, wantErr: errHelp},
		{name: "missing amount", args: []string{"addcredit", "-parent", parent.Username}, wantErr: errHelp},
		{name: "negative amount", args: []string{"addcredit", "-parent", parent.Username, "-amount", "-1"}, wantErr: errHelp},
		{name: "user not found", args: []string{"addcredit", "-parent", "lol", "-amount", "2"}, wantErr: user.ErrNotFound},
		{name: "not a parent", args: []string{"addcredit", "-parent", teacher.Username, "-amount", "2"}, wantErr: errNotAParent},
		{name: "top up", args: []string{"addcredit", "-parent", parent.Username, "-amount", "2"}},
		{name: "top up again", args: []string{"addcredit", "-parent", parent.Email, "-amount", "3"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	balance, err := dummydb.NewCreditRepository(db).BalanceFor(ctx, parent.ID)
	if err != nil {
		t.Fatalf("BalanceFor() failed: %v", err)
	}
	if balance != 5 {
		t.Errorf("balance = %d, want 5", balance)
	}
}
