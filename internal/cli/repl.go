package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// sessionCommands need an authenticated profile (a master key in memory).
var sessionCommands = map[string]struct{}{
	"put": {}, "note": {}, "l": {}, "list": {}, "show": {},
	"rename": {}, "delete": {}, "wipe": {}, "export": {}, "logout": {},
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Put(ctx context.Context) error
	Note(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Rename(ctx context.Context) error
	Delete(ctx context.Context) error
	Wipe(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Lockbox CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create a vault profile
//	  - login          — authenticate
//	  - import         — restore a backup file
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - put            — store a local file
//	  - note           — store a typed note
//	  - list           — list stored objects
//	  - show           — decrypt a single object (interactive ID prompt)
//	  - rename         — change an object's display name
//	  - delete         — remove an object
//	  - wipe           — delete the whole vault
//	  - export         — write a backup file
//	  - import         — restore a backup file
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("lb> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if _, needsLogin := sessionCommands[cmd]; needsLogin && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: put, note, (l)ist, show, rename, delete, wipe, export, import, logout, exit")
			} else {
				printlnFn("Available commands: register, login, import, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "put":
			_ = a.Put(ctx)

		case "note":
			_ = a.Note(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "rename":
			_ = a.Rename(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "wipe":
			_ = a.Wipe(ctx)

		case "export":
			_ = a.Export(ctx)

		case "import":
			_ = a.Import(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
