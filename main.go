package main

import (
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/oaiiae/contacts/cli/api"
	"github.com/oaiiae/contacts/cli/dispatch"
	"github.com/oaiiae/contacts/cli/logger"
	"github.com/oaiiae/contacts/datastores"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	title    = "contacts"
	version  = "dev"
	revision = ""
	created  = ""
)

// Options for the CLI. Each option is also read from a SERVICE_ prefixed
// environment variable, e.g. SERVICE_FILE or SERVICE_LOG_LEVEL.
type Options struct {
	File string `short:"f" doc:"path to the contacts data file (JSON)" default:"contacts.json"`
	logger.Options
	api.ServerOptions
	api.RouterOptions
}

func main() {
	var d dispatch.Dispatcher

	cli := humacli.New(func(_ humacli.Hooks, options *Options) {
		d.Logger = logger.New(&options.Options)
		d.Store = datastores.NewContactsFile(options.File, d.Logger)
		d.Server = api.NewServer(&options.ServerOptions,
			api.NewRouter(&options.RouterOptions,
				api.BuildInfo{Title: title, Version: version, Revision: revision, Created: created},
				d.Store, d.Logger),
			d.Logger)
	})

	root := cli.Root()
	root.Use = title
	root.Short = "Manage contacts stored in a local JSON file"
	root.Version = version
	d.Register(root)

	cli.Run()
	if d.Err() != nil {
		os.Exit(1)
	}
}
