package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Accounts(ctx context.Context) error
	Switch(ctx context.Context, email string) error
	Remove(ctx context.Context, email string) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Reset(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the FoodFinder CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
//	Always:
//	  - help             show available commands
//	  - register         create an account
//	  - login            sign in with email and password
//	  - accounts         list saved accounts
//	  - switch <email>   activate a saved account
//	  - remove <email>   forget a saved account
//	  - reset            forget all saved accounts and sign out
//	  - exit | quit      leave the program
//
//	Signed in:
//	  - whoami           show the current user
//	  - refresh          rotate the session tokens
//	  - logout           sign out, keeping the saved account
//
// Errors returned by command handlers are ignored here; handlers report them
// to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ff %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, accounts, switch <email>, remove <email>, refresh, logout, reset, exit")
			} else {
				printlnFn("Available commands: register, login, accounts, switch <email>, remove <email>, reset, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "accounts", "ls":
			_ = a.Accounts(ctx)

		case "switch":
			if len(args) == 0 {
				printlnFn("Usage: switch <email>")
				continue
			}
			_ = a.Switch(ctx, args[0])

		case "remove":
			if len(args) == 0 {
				printlnFn("Usage: remove <email>")
				continue
			}
			_ = a.Remove(ctx, args[0])

		case "refresh":
			_ = a.Refresh(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
