package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	konghcl "github.com/alecthomas/kong-hcl/v2"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/cmd/rowtool/commands"
	"github.com/squareup/rowcodec/common"
	"github.com/squareup/rowcodec/conf"
	"github.com/squareup/rowcodec/errors"
	plog "github.com/squareup/rowcodec/log"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/meta/schema"
)

type arguments struct {
	Config kong.ConfigFlag `help:"Path to config file" type:"existingfile"`
	Log    plog.Config     `help:"Configuration for the logger" embed:"" prefix:"log-"`
	Tool   conf.Config     `help:"Row tool configuration" embed:"" prefix:""`

	Encode   commands.EncodeCommand   `cmd:"" help:"Encode a JSON property map as a hex row."`
	Decode   commands.DecodeCommand   `cmd:"" help:"Decode a hex row."`
	Versions commands.VersionsCommand `cmd:"" help:"Show the schema and reader version of a hex row."`
	Schemas  commands.SchemasCommand  `cmd:"" help:"List the loaded tag and edge schemas."`
	Shell    commands.ShellCommand    `cmd:"" help:"Start an interactive shell."`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	cfg := arguments{}
	parser, err := kong.New(&cfg,
		kong.Name("rowtool"),
		kong.Description("Encode, decode and inspect property rows."),
		kong.Configuration(konghcl.Loader),
	)
	if err != nil {
		return errors.WithStack(err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return errors.WithStack(err)
	}
	closer, err := cfg.Log.Configure()
	defer common.InvokeCloser(closer)
	if err != nil {
		return err
	}
	if err := cfg.Tool.Validate(); err != nil {
		return err
	}
	loader := schema.NewLoader(meta.NewMemSchemaManager(), cfg.Tool.Space, cfg.Tool.SchemaDir)
	if err := loader.Start(); err != nil {
		return err
	}
	defer func() {
		if err := loader.Stop(); err != nil {
			log.Warnf("failed to stop schema loader %v", err)
		}
	}()
	env := &commands.Env{Loader: loader, Config: &cfg.Tool, Out: out}
	return kctx.Run(env)
}
