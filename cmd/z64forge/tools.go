package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/multierr"

	"github.com/Faultbox/z64forge/internal/scene"
	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

func dlName(name string, custom bool) string {
	switch {
	case name == "":
		return "-"
	case custom:
		return name + " (custom)"
	default:
		return name
	}
}

// readResource reads FILE, or ENTRY from the archive FILE when two
// arguments are given.
func readResource(args cli.Args) (data []byte, err error) {
	if len(args) < 2 {
		return os.ReadFile(args.First())
	}
	a, err := o2r.OpenArchive(args.First())
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()
	return a.Read(args.Get(1))
}

func inspect(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return usageError(ctx, "missing file")
	}
	data, err := readResource(ctx.Args())
	if err != nil {
		return err
	}
	return renderResource(ctx.App.Writer, data)
}

func renderResource(w io.Writer, data []byte) error {
	h, err := o2r.ParseHeader(data)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Type", fmt.Sprintf("%s (0x%08X)", h.Type, uint32(h.Type))})
	table.Append([]string{"Endianness", endianness(h.Endianness)})
	table.Append([]string{"Game version", fmt.Sprint(h.GameVersion)})
	table.Append([]string{"Resource version", fmt.Sprint(h.ResourceVersion)})
	table.Append([]string{"Body", fmt.Sprintf("%d bytes", len(data)-o2r.HeaderSize)})
	table.Render()

	if h.Type != o2r.TypeRoom {
		return nil
	}
	cmds, err := scene.DecodeCommands(data)

	fmt.Fprintln(w)
	table = tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "ID", "Command", "Payload"})
	for i, c := range cmds {
		table.Append([]string{fmt.Sprint(i), fmt.Sprintf("0x%02X", c.ID), c.Name(), c.Summary})
	}
	table.Render()
	return err
}

func endianness(v uint32) string {
	if v == 0 {
		return "little"
	}
	return "big"
}

func crc64(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return usageError(ctx, "nothing to hash")
	}
	for _, text := range ctx.Args() {
		fmt.Fprintf(ctx.App.Writer, "%s  %s\n", codec.CRC64(text), text)
	}
	return nil
}

func segaddr(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return usageError(ctx, "need an address and at least one segment")
	}
	addr, err := parseAddr(ctx.Args().First())
	if err != nil {
		return err
	}
	table, err := parseSegments(ctx.Args().Tail())
	if err != nil {
		return err
	}

	seg, err := codec.EncodeSegmentedAddress(addr, table)
	if err != nil {
		return err
	}
	back, err := codec.DecodeSegmentedAddress(seg, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "0x%08X -> 0x%08X (segment 0x%02X %s, decodes to 0x%08X)\n",
		addr, binary.BigEndian.Uint32(seg[:]), seg[0], table[seg[0]], back)
	return nil
}

// parseAddr accepts decimal, 0x-prefixed hex or 0o-prefixed octal.
func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

// parseSegments parses SEG=START:END arguments into a segment table.
func parseSegments(args []string) (codec.SegmentTable, error) {
	table := make(codec.SegmentTable, len(args))
	for _, arg := range args {
		id, bounds, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("segment %q: expected SEG=START:END", arg)
		}
		start, end, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, fmt.Errorf("segment %q: expected SEG=START:END", arg)
		}

		seg, err := strconv.ParseUint(id, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("segment %q: invalid id: %w", arg, err)
		}
		lo, err := parseAddr(start)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", arg, err)
		}
		hi, err := parseAddr(end)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", arg, err)
		}
		if hi <= lo {
			return nil, fmt.Errorf("segment %q: end must be above start", arg)
		}
		if _, dup := table[uint8(seg)]; dup {
			return nil, fmt.Errorf("segment 0x%02X given twice", seg)
		}
		table[uint8(seg)] = codec.SegmentRange{Start: lo, End: hi}
	}
	return table, nil
}

func archiveList(ctx *cli.Context) (err error) {
	if ctx.NArg() < 1 {
		return usageError(ctx, "missing archive")
	}
	a, err := o2r.OpenArchive(ctx.Args().First())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()

	pattern := strings.ToLower(ctx.Args().Get(1))
	limit := ctx.Int("n")
	count := 0
	for _, name := range a.List() {
		if !matchEntry(pattern, name) {
			continue
		}
		fmt.Fprintln(ctx.App.Writer, name)
		count++
		if limit > 0 && count >= limit {
			break
		}
	}
	if pattern != "" {
		fmt.Fprintf(ctx.App.ErrWriter, "\n(%d entries matched)\n", count)
	}
	return nil
}

// matchEntry matches a lowercase glob against the base name, or a
// substring against the whole path.
func matchEntry(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	lower := strings.ToLower(name)
	matched, _ := filepath.Match(pattern, filepath.Base(lower))
	return matched || strings.Contains(lower, pattern)
}

func archiveExtract(ctx *cli.Context) (err error) {
	if ctx.NArg() < 2 {
		return usageError(ctx, "need an archive and a path")
	}
	a, err := o2r.OpenArchive(ctx.Args().First())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()

	want := ctx.Args().Get(1)
	out := "."
	if ctx.NArg() > 2 {
		out = ctx.Args().Get(2)
	}

	var names []string
	if strings.Contains(want, "*") {
		pattern := strings.ToLower(want)
		for _, name := range a.List() {
			if ok, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(name))); ok {
				names = append(names, name)
			}
		}
	} else {
		if !a.Contains(want) {
			return fmt.Errorf("entry not found: %s", want)
		}
		names = []string{want}
	}

	for _, name := range names {
		data, err := a.Read(name)
		if err != nil {
			return err
		}
		dest := filepath.Join(out, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "Extracted: %s (%d bytes)\n", dest, len(data))
	}
	fmt.Fprintf(ctx.App.ErrWriter, "\nExtracted %d entries\n", len(names))
	return nil
}

func archivePack(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return usageError(ctx, "need a directory and an archive")
	}
	names, err := o2r.Pack(ctx.Args().First(), ctx.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Packed %d entries into %s\n", len(names), ctx.Args().Get(1))
	return nil
}
