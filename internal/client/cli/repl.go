package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isConnected() bool
	Connect(ctx context.Context, args []string) error
	ImportKey(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Estimate(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Names(ctx context.Context) error
	Next(ctx context.Context, args []string) error
	Link(ctx context.Context, args []string) error
	Resolve(ctx context.Context, args []string) error
	Clear(ctx context.Context) error
	History(ctx context.Context, args []string) error
}

// runREPL starts a read–eval–print loop for the permalink CLI.
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
//	Always:
//	  - help                 show available commands
//	  - connect [keyfile]    open a wallet session from a key file
//	  - importkey <path>     write an encrypted key file
//	  - status               show network, wallet and flow state
//	  - history [n]          list journaled uploads and links
//	  - exit | quit          leave the program
//
//	Connected:
//	  - estimate <paths...>  quote the storage price of a batch
//	  - upload <paths...>    fund, upload and publish a manifest
//	  - names                list parent names owned by the wallet
//	  - next <name>          show the next free vN label
//	  - link <name>          bind the last manifest to the next vN label
//	  - resolve <name>       show where a name's contenthash points
//	  - clear                dismiss the last error
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("permalink %s> ", statusFn()))
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
			if a.isConnected() {
				printlnFn("Available commands: estimate, upload, names, next, link, resolve, clear, status, history, connect, importkey, exit")
			} else {
				printlnFn("Available commands: connect, importkey, status, history, exit")
			}

		case "connect":
			err = a.Connect(ctx, args)

		case "importkey":
			err = a.ImportKey(ctx, args)

		case "status":
			err = a.Status(ctx)

		case "estimate":
			err = a.Estimate(ctx, args)

		case "upload":
			err = a.Upload(ctx, args)

		case "names":
			err = a.Names(ctx)

		case "next":
			err = a.Next(ctx, args)

		case "link":
			err = a.Link(ctx, args)

		case "resolve":
			err = a.Resolve(ctx, args)

		case "clear":
			err = a.Clear(ctx)

		case "history":
			err = a.History(ctx, args)

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
