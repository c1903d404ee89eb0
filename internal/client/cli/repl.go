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
	Logout(ctx context.Context) error
	Open(ctx context.Context, location string) error
	Back(ctx context.Context) error
	Status(ctx context.Context) error
}

// shortcuts maps screen commands to locations.
var shortcuts = map[string]string{
	"home":         "/home",
	"accounts":     "/accounts",
	"open-account": "/accounts/open",
	"history":      "/transactions",
	"transfer":     "/transfer",
	"loans":        "/loans",
	"apply-loan":   "/loans/apply",
	"investments":  "/investments",
	"open-fd":      "/investments/fd",
	"open-rd":      "/investments/rd",
	"payments":     "/payments",
	"pay-bill":     "/payments/bill",
	"recharge":     "/payments/recharge",
	"calc":         "/calculators",
	"admin":        "/admin",
}

const (
	helpAnonymous = "Available commands: login, register, calc, go <path>, back, status, exit"
	helpSignedIn  = "Available commands: home, accounts, open-account, history, transfer, loans, apply-loan, " +
		"investments, open-fd, open-rd, payments, pay-bill, recharge, calc, admin, " +
		"go <path>, back, status, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is cancelled.
//
// Screen commands (see shortcuts) and "go <path>" navigate; the router then
// decides what is actually shown. Errors returned by handlers are ignored
// here: handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("bank %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if loc, ok := shortcuts[cmd]; ok {
			_ = a.Open(ctx, loc)
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "back":
			_ = a.Back(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
