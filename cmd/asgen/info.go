package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/report"
)

// cmdInfo implements the "info <pkid>" subcommand (spec §6: "dump
// stored metadata/hints"): the package's status/gcids, each gcid's
// stored XML metadata, and the package's hints document, if any.
// "--html" renders the hints document through report.HTMLRenderer
// instead of dumping its raw stored JSON (SPEC_FULL.md §4 "report
// package": a default/example renderer, exercised here rather than
// kept as dead weight).
func cmdInfo(ctx context.Context, g *globalFlags, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	html := fs.Bool("html", false, "render the hints document as an HTML report instead of raw JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return asgen.NewError("main.cmdInfo", asgen.ErrInvalid, "usage: info [--html] <pkid>", nil)
	}
	pkid := asgen.PackageID(fs.Arg(0))

	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.CAS.GetPackage(ctx, pkid)
	if err != nil {
		return err
	}
	fmt.Printf("package: %s\nstatus:  %s\n", pkid, rec.Status)

	if rec.Status == asgen.StatusGenerated {
		fmt.Printf("gcids:   %d\n", len(rec.GCIDs))
		for _, gcid := range rec.GCIDs {
			fmt.Printf("\n--- %s ---\n", gcid)
			data, err := e.CAS.GetMetadata(ctx, asgen.MetadataXML, gcid)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				fmt.Println("(no stored metadata)")
				continue
			}
			os.Stdout.Write(data)
		}
	}

	hints, err := e.CAS.GetHints(ctx, pkid)
	if err != nil {
		return err
	}
	if len(hints) == 0 {
		return nil
	}

	if *html {
		var doc asgen.HintsDocument
		if err := json.Unmarshal(hints, &doc); err != nil {
			return asgen.NewError("main.cmdInfo", asgen.ErrInvalid, "parsing stored hints document failed", err)
		}
		renderer := &report.HTMLRenderer{Registry: e.Registry}
		if err := renderer.Render(os.Stdout, doc, e.Config.MediaBaseURL); err != nil {
			return err
		}
		return nil
	}

	fmt.Println("\n--- hints ---")
	os.Stdout.Write(hints)
	fmt.Println()
	return nil
}
