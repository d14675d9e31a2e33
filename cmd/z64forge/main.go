// z64forge exports N64 skeletons and scenes as C source or O2R resources.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/Faultbox/z64forge/internal/config"
	"github.com/Faultbox/z64forge/internal/logger"
	"github.com/Faultbox/z64forge/pkg/errs"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(exitCode(err))
	}
	logger.Sync()
}

func newApp() *cli.App {
	// -v is the verbosity flag
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}

	app := cli.NewApp()
	app.Name = "z64forge"
	app.Usage = "export N64 skeletons and scenes as C or O2R"
	app.Version = version
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "config file (default ./z64forge.yaml, then the user config dir)",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable info logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable debug logging",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "only log warnings and errors",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write JSON logs to this file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "skeleton",
			Usage:     "export the armature of a document",
			ArgsUsage: "DOCUMENT",
			Flags:     exportFlags(cli.StringFlag{Name: "name, n", Usage: "skeleton name (default: document name)"}),
			Action:    exportSkeleton,
		},
		{
			Name:      "scene",
			Usage:     "export a scene of a document",
			ArgsUsage: "DOCUMENT",
			Flags:     exportFlags(cli.StringFlag{Name: "name, n", Usage: "scene name (default: the document's only scene)"}),
			Action:    exportScene,
		},
		{
			Name:      "limbs",
			Usage:     "print the limb table of a document's armature",
			ArgsUsage: "DOCUMENT",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name, n", Usage: "skeleton name (default: document name)"},
				cli.BoolFlag{Name: "skeleton-only", Usage: "skip geometry resolution"},
			},
			Action: printLimbs,
		},
		{
			Name:      "inspect",
			Usage:     "print an O2R resource header and command list",
			ArgsUsage: "FILE | ARCHIVE.o2r ENTRY",
			Action:    inspect,
		},
		{
			Name:      "crc64",
			Usage:     "print the resource path hash of each argument",
			ArgsUsage: "TEXT...",
			Action:    crc64,
		},
		{
			Name:      "segaddr",
			Usage:     "encode an address as a segmented address",
			ArgsUsage: "ADDR SEG=START:END...",
			Action:    segaddr,
		},
		{
			Name:  "archive",
			Usage: "work with .o2r archives",
			Subcommands: []cli.Command{
				{
					Name:      "list",
					Aliases:   []string{"ls"},
					Usage:     "list archive entries",
					ArgsUsage: "ARCHIVE [PATTERN]",
					Flags:     []cli.Flag{cli.IntFlag{Name: "n", Usage: "limit output to N entries (0 = all)"}},
					Action:    archiveList,
				},
				{
					Name:      "extract",
					Aliases:   []string{"x"},
					Usage:     "extract entries matching a path or glob",
					ArgsUsage: "ARCHIVE PATH [OUTPUT]",
					Action:    archiveExtract,
				},
				{
					Name:      "pack",
					Usage:     "pack a directory into an archive",
					ArgsUsage: "DIR ARCHIVE",
					Action:    archivePack,
				},
			},
		},
	}
	return app
}

func exportFlags(name cli.Flag) []cli.Flag {
	return []cli.Flag{
		name,
		cli.StringFlag{Name: "format, f", Usage: "output format: c or o2r"},
		cli.StringFlag{Name: "out, o", Usage: "output root directory"},
		cli.Float64Flag{Name: "scale", Usage: "blender to game scale"},
		cli.BoolFlag{Name: "archive", Usage: "pack output into <name>.o2r"},
		cli.BoolFlag{Name: "webp", Usage: "write WebP texture previews"},
		cli.StringSliceFlag{Name: "search, s", Usage: "extra directory or .o2r archive to resolve files from"},
	}
}

// setup loads the configuration with the command's overrides and
// initializes logging from it.
func setup(ctx *cli.Context) (*config.Config, error) {
	o := config.Overrides{
		Verbose: ctx.GlobalBool("v"),
		Debug:   ctx.GlobalBool("vv"),
		Quiet:   ctx.GlobalBool("quiet"),
		LogFile: ctx.GlobalString("log-file"),
		Format:  ctx.String("format"),
		Root:    ctx.String("out"),
		Scale:   ctx.Float64("scale"),
		Archive: ctx.Bool("archive"),
		WebP:    ctx.Bool("webp"),
		Search:  ctx.StringSlice("search"),
	}
	cfg, err := config.Load(ctx.GlobalString("config"), o)
	if err != nil {
		return nil, err
	}

	opts := logger.Options{Level: cfg.Logging.Level, Console: os.Stderr}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.FileConfig{
			Path:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}
	if err := logger.Init(opts); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitCode maps an error to the process exit status: 2 for invalid input,
// 3 for missing resources, 4 for an interrupted write.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return 2
	case errors.Is(err, errs.ErrResource):
		return 3
	case errors.Is(err, errs.ErrPartialWrite):
		return 4
	default:
		return 1
	}
}

func usageError(ctx *cli.Context, format string, args ...any) error {
	return fmt.Errorf("usage: %s %s %s: %s", ctx.App.Name, ctx.Command.Name, ctx.Command.ArgsUsage, fmt.Sprintf(format, args...))
}
