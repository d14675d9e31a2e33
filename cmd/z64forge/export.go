package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/multierr"

	"github.com/Faultbox/z64forge/internal/export"
	"github.com/Faultbox/z64forge/internal/input"
	"github.com/Faultbox/z64forge/internal/logger"
	"github.com/Faultbox/z64forge/internal/skeleton"
	"github.com/Faultbox/z64forge/pkg/codec"
)

// openProject loads the configuration and the document named by the
// first argument.
func openProject(ctx *cli.Context) (*export.Exporter, *input.Project, error) {
	if ctx.NArg() < 1 {
		return nil, nil, usageError(ctx, "missing document")
	}
	cfg, err := setup(ctx)
	if err != nil {
		return nil, nil, err
	}
	exp := export.New(cfg, logger.Named("export"))
	p, err := exp.Open(ctx.Args().First())
	if err != nil {
		return nil, nil, err
	}
	return exp, p, nil
}

// skeletonName picks the --name flag, the document name, then the file
// name without its extension.
func skeletonName(ctx *cli.Context, p *input.Project) string {
	if n := ctx.String("name"); n != "" {
		return n
	}
	if p.Doc.Name != "" {
		return p.Doc.Name
	}
	base := filepath.Base(ctx.Args().First())
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func exportSkeleton(ctx *cli.Context) (err error) {
	exp, p, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, p.Close()) }()

	report, err := exp.Skeleton(p, skeletonName(ctx, p))
	if err != nil {
		return err
	}
	printReport(ctx, report)
	return nil
}

func exportScene(ctx *cli.Context) (err error) {
	exp, p, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, p.Close()) }()

	report, err := exp.Scene(p, ctx.String("name"))
	if err != nil {
		return err
	}
	printReport(ctx, report)
	return nil
}

func printReport(ctx *cli.Context, r *export.Report) {
	w := ctx.App.Writer
	if r.Archive != "" {
		fmt.Fprintf(w, "%s: %d files packed into %s\n", r.Name, len(r.Files), r.Archive)
		return
	}
	for _, f := range r.Files {
		fmt.Fprintln(w, f)
	}
	fmt.Fprintf(w, "%s: %d files (%s)\n", r.Name, len(r.Files), r.Format)
}

func printLimbs(ctx *cli.Context) (err error) {
	exp, p, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, p.Close()) }()

	res, _, err := exp.BuildSkeleton(p, skeletonName(ctx, p), ctx.Bool("skeleton-only"))
	if err != nil {
		return err
	}
	renderLimbs(ctx.App.Writer, res.Skeleton)
	return nil
}

func renderLimbs(w io.Writer, skel *skeleton.Skeleton) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Index", "Limb", "Bone", "Translation", "Rotation (deg)", "DL", "LOD DL", "Flex"})

	for _, l := range skel.LimbList() {
		table.Append([]string{
			fmt.Sprint(l.Index),
			l.Name(),
			l.BoneName,
			fmt.Sprintf("%d, %d, %d", l.Translation[0], l.Translation[1], l.Translation[2]),
			fmt.Sprintf("%d, %d, %d", degrees(l.Angles[0]), degrees(l.Angles[1]), degrees(l.Angles[2])),
			dlName(l.DLName(), l.CustomDL != ""),
			dlName(l.LODDLName(), l.LODCustomDL != ""),
			fmt.Sprint(l.IsFlex),
		})
	}

	kind := "SkeletonHeader"
	if skel.IsFlex() {
		kind = "FlexSkeletonHeader"
	}
	table.SetFooter([]string{"", "", "", "", "", fmt.Sprintf("%d DLs", skel.DLCount()), "", kind})
	table.Render()
}

func degrees(angle int16) int16 {
	return codec.EulerRadiansToShort(codec.BinaryAngleToRadians(angle))
}
