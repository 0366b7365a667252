package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	parts := make([]string, 0, 3)
	if email := a.sess.Email(); email != "" {
		parts = append(parts, email)
	}
	if a.mon.Online() {
		parts = append(parts, "online")
	} else {
		parts = append(parts, "offline")
	}
	if s := a.engine.Status(); s != "" {
		parts = append(parts, string(s))
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to CareChain CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	go func() {
		a.mon.Start(ctx)
	}()

	a.Login(ctx)

	for {
		fmt.Fprintf(a.out, "cc %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: list, add, show <id>, update <id>, delete <id>, qr <id>, sync, status, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register, login, exit")
			}
		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "list":
			a.list(ctx)
		case "add":
			a.add(ctx)
		case "show":
			a.show(ctx, args)
		case "update":
			a.update(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "qr":
			a.qrcode(ctx, args)
		case "sync":
			a.sync(ctx)
		case "status":
			a.status()
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) sync(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}
	n := a.engine.Run(ctx)
	fmt.Fprintf(a.out, "Synced %d record(s), status: %s\n", n, a.engine.Status())
}

func (a *App) status() {
	mode := "offline"
	if a.mon.Online() {
		mode = "online"
	}
	fmt.Fprintf(a.out, "Connection: %s, sync: %s\n", mode, a.engine.Status())
}
