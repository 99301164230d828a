package cli

import (
	"context"
	"fmt"
)

// Login starts a session for the owner given as the first argument, or
// asks for it.
func (a *App) Login(ctx context.Context, args []string) error {
	owner, err := a.argOrPrompt(args, 0, "Enter owner public key")
	if err != nil {
		return err
	}

	sess, err := a.sessions.Login(ctx, owner)
	if err != nil {
		return err
	}
	a.owner = sess.Owner

	fmt.Fprintf(a.out, "Logged in as %s\n", sess.Owner)
	return nil
}

// Logout forgets the session and the local upload rows.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	a.owner = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
