// Command savetool manipulates Barotrauma-style .save archives.
//
// Usage:
//
//	savetool list-save <archive>
//	savetool pack-save [-v] <archive> <files...>
//	savetool unpack-save [-v] [-C dir] <archive> [names...]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meigma/save"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch cmd := os.Args[1]; cmd {
	case "list-save":
		err = runList(ctx, os.Args[2:])
	case "pack-save":
		err = runPack(ctx, os.Args[2:])
	case "unpack-save":
		err = runUnpack(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "savetool: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "savetool:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  savetool list-save <archive>
  savetool pack-save [-v] <archive> <files...>
  savetool unpack-save [-v] [-C dir] <archive> [names...]

list-save    prints each member's name and size, tab-separated
pack-save    creates an archive; each file path becomes the member name
unpack-save  extracts the named members (all if none named) into -C dir`)
}

// logger returns a stderr text logger when verbose, nil otherwise.
func logger(verbose bool) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list-save", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("list-save: expected exactly one archive path")
	}

	members, err := save.List(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	for _, m := range members {
		fmt.Printf("%s\t%d\n", m.Name, m.Size)
	}
	return nil
}

func runPack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pack-save", flag.ExitOnError)
	verbose := fs.Bool("v", false, "log progress to stderr")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("pack-save: expected an archive path and at least one file")
	}

	return save.Pack(ctx, fs.Arg(0), fs.Args()[1:], save.PackWithLogger(logger(*verbose)))
}

func runUnpack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("unpack-save", flag.ExitOnError)
	verbose := fs.Bool("v", false, "log progress to stderr")
	dir := fs.String("C", ".", "directory to extract into")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("unpack-save: expected an archive path")
	}

	missing, err := save.Extract(ctx, fs.Arg(0), *dir, fs.Args()[1:],
		save.ExtractWithLogger(logger(*verbose)))
	if err != nil {
		return err
	}
	// Requested members that were absent are a warning, not a failure.
	for _, name := range missing {
		fmt.Fprintf(os.Stderr, "savetool: member not found: %s\n", name)
	}
	return nil
}
