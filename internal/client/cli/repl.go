package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/adheretrack/internal/client/gate"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	group() gate.Group
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

// commandGroups lists which screen group each gated command belongs to.
var commandGroups = map[string]gate.Group{
	"register": gate.GroupPublic,
	"login":    gate.GroupPublic,
	"whoami":   gate.GroupProtected,
	"logout":   gate.GroupProtected,
}

// runREPL starts a simple read–eval–print loop for the session client.
//
// Every command except help and exit/quit belongs to a screen group and is
// dispatched only while the gate allows that group:
//
//	Public (not signed in):
//	  - register       create an account and sign in
//	  - login          authenticate
//
//	Protected (signed in):
//	  - whoami         show the account behind the session
//	  - logout         end the session
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("at %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(helpText(a.group()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		want, ok := commandGroups[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if current := a.group(); current != want {
			printlnFn(unavailableText(current))
			continue
		}

		switch cmd {
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "logout":
			_ = a.Logout(ctx)
		}
	}
}

func helpText(g gate.Group) string {
	switch g {
	case gate.GroupPublic:
		return "Available commands: register, login, exit"
	case gate.GroupProtected:
		return "Available commands: whoami, logout, exit"
	default:
		return "Available commands: exit"
	}
}

func unavailableText(g gate.Group) string {
	switch g {
	case gate.GroupPublic:
		return "Please log in first"
	case gate.GroupProtected:
		return "Already signed in, log out first"
	default:
		return "Session is still loading, try again"
	}
}
