package console

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/podserver/console/internal/core/domain"
)

func (a *App) addAccount(ctx context.Context) error {
	username, err := a.prompt.ReadRequired(ctx, "Enter the username:")
	if err != nil {
		return err
	}
	// Only a warning: the unique index on username rejects the insert.
	exists, err := a.accounts.AccountExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintf(a.out, "Warning: an account named %q already exists\n", username)
	}

	password, err := a.prompt.ReadPassword(ctx, "Enter the password:")
	if err != nil {
		return err
	}
	role, err := a.prompt.ReadRole(ctx, fmt.Sprintf("Select the role [%s]:", domain.RoleList()))
	if err != nil {
		return err
	}

	draft := a.accounts.DraftAccount(username, role)
	fmt.Fprintln(a.out, "The following account will be created:")
	a.renderAccount(draft)

	decision, err := a.prompt.Confirm(ctx, "Create this account?")
	if err != nil {
		return err
	}
	if decision == No {
		fmt.Fprintln(a.out, "Account not created")
		return nil
	}

	user, err := a.accounts.CreateAccount(ctx, draft, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s created\n", user.Username)
	return nil
}

func (a *App) regenerateAPIKeys(ctx context.Context) error {
	n, err := a.accounts.RegenerateAPIKeys(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Generated a new api key for %d accounts\n", n)
	return nil
}

func (a *App) removeAccount(ctx context.Context) error {
	users, err := a.listAccounts(ctx)
	if err != nil {
		return err
	}
	username, err := a.prompt.ReadRequired(ctx, "Enter the username of the account to remove:")
	if err != nil {
		return err
	}
	if !containsUsername(users, username) {
		fmt.Fprintln(a.out, "Username not found")
		return nil
	}

	report, err := a.accounts.RemoveAccount(ctx, username)
	if err != nil {
		return err
	}
	for _, step := range report.Steps {
		fmt.Fprintf(a.out, "  %-16s %d removed\n", step.Store, step.Deleted)
	}
	fmt.Fprintf(a.out, "Account %s deleted\n", username)
	return nil
}

func (a *App) updateAccount(ctx context.Context) error {
	if _, err := a.listAccounts(ctx); err != nil {
		return err
	}
	username, err := a.prompt.ReadRequired(ctx, "Enter the username of the account to update:")
	if err != nil {
		return err
	}
	user, err := a.accounts.FindAccount(ctx, username)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Current settings:")
	a.renderAccount(user)

	field, err := a.prompt.ReadLine(ctx, "Enter the field to update [role, password, consent]:")
	if err != nil {
		return err
	}
	switch field {
	case "role":
		role, err := a.prompt.ReadRole(ctx, fmt.Sprintf("Enter the new role [%s]:", domain.RoleList()))
		if err != nil {
			return err
		}
		if err := a.accounts.UpdateRole(ctx, username, role); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Role updated")
	case "password":
		password, err := a.prompt.ReadPassword(ctx, "Enter the new password:")
		if err != nil {
			return err
		}
		if err := a.accounts.UpdatePassword(ctx, username, password); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Password updated")
	case "consent":
		consent, err := a.accounts.ToggleConsent(ctx, username)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Consent preference switched to %t\n", consent)
	default:
		return fmt.Errorf("%w: %q", domain.ErrFieldNotRecognized, field)
	}
	return nil
}

// listAccounts prints the account table and returns the rows so callers
// can validate a username without querying again.
func (a *App) listAccounts(ctx context.Context) ([]domain.User, error) {
	users, err := a.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tROLE\tEXPLICIT CONSENT\tCREATED AT")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", u.Username, u.Role, u.ExplicitConsent, u.CreatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return users, nil
}

// renderAccount prints one account. The password digest is never shown.
func (a *App) renderAccount(u *domain.User) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  username\t%s\n", u.Username)
	fmt.Fprintf(tw, "  role\t%s\n", u.Role)
	fmt.Fprintf(tw, "  explicit consent\t%t\n", u.ExplicitConsent)
	fmt.Fprintf(tw, "  created at\t%s\n", u.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "  api key\t%s\n", u.APIKey)
	_ = tw.Flush()
}

func containsUsername(users []domain.User, username string) bool {
	for _, u := range users {
		if u.Username == username {
			return true
		}
	}
	return false
}
