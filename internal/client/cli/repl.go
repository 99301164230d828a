package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Pending(ctx context.Context) error
	Profile(ctx context.Context) error
	URL(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	SetVisibility(ctx context.Context, args []string, public bool) error
	Clear(ctx context.Context) error
}

// runREPL reads a line from scanner, parses the first token as the command
// and dispatches to a. Handler errors are printed and the loop continues.
// The loop exits on scanner EOF, on "exit" or "quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("ld %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: upload, download, (l)ist, pending, profile, url, public, private, clear, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			err = a.Login(ctx, args)

		case "logout":
			err = a.Logout(ctx)

		case "upload", "up":
			err = a.Upload(ctx, args)

		case "l", "list":
			err = a.List(ctx)

		case "pending":
			err = a.Pending(ctx)

		case "profile":
			err = a.Profile(ctx)

		case "url":
			err = a.URL(ctx, args)

		case "download", "down":
			err = a.Download(ctx, args)

		case "public":
			err = a.SetVisibility(ctx, args, true)

		case "private":
			err = a.SetVisibility(ctx, args, false)

		case "clear":
			err = a.Clear(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
