// Package dispatch maps command line input to contacts store operations.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/oaiiae/contacts/datastores"
)

// ErrUsage reports bad or missing command line arguments.
var ErrUsage = errors.New("usage")

func usageErrorf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUsage}, a...)...)
}

// Dispatcher holds what commands operate on. Its fields are set once
// options are parsed, before any command runs.
type Dispatcher struct {
	Store  *datastores.ContactsFile
	Server *http.Server
	Logger *slog.Logger

	err error
}

// Err returns the error of the last failed command.
func (d *Dispatcher) Err() error { return d.err }

func (d *Dispatcher) fail(err error) error {
	d.err = err
	return err
}

// Register installs the add, list and serve commands on root.
// Unknown commands and bad flags are reported as [ErrUsage].
func (d *Dispatcher) Register(root *cobra.Command) {
	root.Args = func(_ *cobra.Command, args []string) error {
		if len(args) > 0 {
			return d.fail(usageErrorf("unknown command %q", args[0]))
		}
		return nil
	}
	root.RunE = func(*cobra.Command, []string) error {
		return d.fail(usageErrorf("missing command"))
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return d.fail(usageErrorf("%w", err))
	})

	root.AddCommand(
		&cobra.Command{
			Use:   "add <name> <email>",
			Short: "Add a contact",
			Args:  d.exactArgs(2),
			RunE:  d.run(d.add),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all contacts",
			Args:  d.exactArgs(0),
			RunE:  d.run(d.list),
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the contacts over HTTP until interrupted",
			Args:  d.exactArgs(0),
			RunE:  d.run(d.serve),
		},
	)
}

func (d *Dispatcher) exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return d.fail(usageErrorf("%s expects %d argument(s), received %d", cmd.Name(), n, len(args)))
		}
		return nil
	}
}

// run adapts a command to cobra. Usage text is only printed for usage errors.
func (d *Dispatcher) run(f func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := f(cmd, args)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrUsage) {
			cmd.SilenceUsage = true
		}
		d.Logger.LogAttrs(cmd.Context(), slog.LevelDebug, "command failed",
			slog.String("cmd", cmd.Name()), slog.Any("err", err))
		return d.fail(err)
	}
}

func (d *Dispatcher) add(cmd *cobra.Command, args []string) error {
	name, email := args[0], args[1]
	switch {
	case strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "":
		return usageErrorf("name and email must be non-empty")
	case utf8.RuneCountInString(name) > datastores.MaxNameLength:
		return usageErrorf("name too long (max %d characters)", datastores.MaxNameLength)
	case utf8.RuneCountInString(email) > datastores.MaxEmailLength:
		return usageErrorf("email too long (max %d characters)", datastores.MaxEmailLength)
	}

	contacts, err := d.Store.Load(cmd.Context())
	if err != nil {
		return err
	}
	contacts, c := datastores.AddContact(contacts, name, email)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Adding contact: %s <%s>\n", c.Name, c.Email)
	if err := d.Store.Save(cmd.Context(), contacts); err != nil {
		return err
	}
	fmt.Fprintln(out, "Saved.")
	return nil
}

func (d *Dispatcher) list(cmd *cobra.Command, _ []string) error {
	contacts, err := d.Store.Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range contacts {
		fmt.Fprintf(out, "%s | %s | %s\n", c.ID, c.Name, c.Email)
	}
	fmt.Fprintf(out, "Total: %d\n", len(contacts))
	return nil
}

func (d *Dispatcher) serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- d.Server.ListenAndServe() }()
	d.Logger.Info("serving contacts", "addr", d.Server.Addr, "file", d.Store.Path())

	select {
	case err := <-errc:
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := d.Server.Shutdown(shutdownCtx); err != nil {
		d.Logger.Warn("could not shutdown the server", "err", err)
	}
	d.Logger.Info("server closed")
	return nil
}
