package cli

import (
	"context"
	"fmt"
)

// Login prompts for credentials, authenticates and, on success, drains any
// records left queued from a previous offline session.
func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil || email == "" {
		fmt.Fprintln(a.out, "Login cancelled")
		return
	}
	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Login cancelled")
		return
	}

	res, err := a.api.Login(ctx, email, string(password))
	wipe(password)
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return
	}

	a.sess.Set(res.Token, res.Email, res.Name)
	fmt.Fprintf(a.out, "Welcome, %s!\n", res.Name)

	if n := a.engine.Run(ctx); n > 0 {
		fmt.Fprintf(a.out, "Synced %d offline record(s) from a previous session.\n", n)
	}
}

func (a *App) Register(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Enter your name", a.out)
	if err != nil || name == "" {
		fmt.Fprintln(a.out, "Registration cancelled")
		return
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil || email == "" {
		fmt.Fprintln(a.out, "Registration cancelled")
		return
	}
	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Registration cancelled")
		return
	}

	err = a.api.Signup(ctx, name, email, string(password))
	wipe(password)
	if err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Registered. You can now log in.")
}

func (a *App) Logout(ctx context.Context) {
	a.sess.Clear()
	fmt.Fprintln(a.out, "Logged out")
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
