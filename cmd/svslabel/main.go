package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"example.com/svslabel/internal/batch"
	"example.com/svslabel/internal/bigtiff"
	"example.com/svslabel/internal/common"
	"example.com/svslabel/internal/config"
	"example.com/svslabel/internal/report"
	"example.com/svslabel/internal/switcher"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "switch":
		switchCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	case "deid":
		deidCmd(os.Args[2:])
	case "dump":
		dumpCmd(os.Args[2:])
	case "label":
		labelCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`svslabel %s (built %s) <command> [options]

WARNING: switch, batch and deid mutate slide files in place. Work on copies.

Commands:
  switch  --slide <file.svs> [--qr <text>] [--l1..--l4 <text>] [--keep-original] [--audit <log.jsonl>]
  batch   --sheet <file.csv> [--column <header>] [--slide-dir <dir>] [--audit <log.jsonl>]
  deid    --slide <file.svs> [--audit <log.jsonl>]
  dump    --slide <file.svs>
  label   --path <file.svs | dir> --outdir <dir>
  report  --slide <file.svs> --pdf <out.pdf> [--hash]

Common options: --config <config.yaml> --log-dir <dir>
`, version, buildDate)
}

func loadConfig(path, logDir string) config.Config {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Println("load config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if logDir != "" {
		cfg.Logs.Directory = logDir
	}
	if err := common.SetupRotation(cfg.Logs); err != nil {
		fmt.Println("setup logging:", err)
		os.Exit(1)
	}
	return cfg
}

func auditLog(path string) *common.OpLog {
	if path == "" {
		return nil
	}
	return common.NewOpLog(path)
}

func switchCmd(args []string) {
	fs := flag.NewFlagSet("switch", flag.ExitOnError)
	slide := fs.String("slide", "", "path to slide")
	qr := fs.String("qr", "", "QR code text")
	l1 := fs.String("l1", "", "line 1 text")
	l2 := fs.String("l2", "", "line 2 text")
	l3 := fs.String("l3", "", "line 3 text")
	l4 := fs.String("l4", "", "line 4 text")
	keepOriginal := fs.Bool("keep-original", false, "do not zero the original label and macro strips")
	auditPath := fs.String("audit", "", "audit log output (jsonl)")
	configPath := fs.String("config", "", "configuration file")
	logDir := fs.String("log-dir", "", "rotating log directory")
	fs.Parse(args)

	if *slide == "" {
		fmt.Println("required: --slide")
		os.Exit(1)
	}
	cfg := loadConfig(*configPath, *logDir)

	err := switcher.Switch(switcher.Options{
		SlidePath:      *slide,
		RemoveOriginal: !*keepOriginal,
		QRText:         *qr,
		Lines:          []string{*l1, *l2, *l3, *l4},
		Guard:          bigtiff.Guard{Markers: cfg.ProtectedMarkers},
		Geometry:       cfg.Geometry(),
		Audit:          auditLog(*auditPath),
	})
	if err != nil {
		fmt.Println("switch:", err)
		os.Exit(1)
	}
	fmt.Println("Switched label on", *slide)
}

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	sheet := fs.String("sheet", "", "CSV sheet listing slides")
	column := fs.String("column", batch.DefaultPathColumn, "column header holding slide names or paths")
	slideDir := fs.String("slide-dir", "", "directory to rebase slide names into")
	keepOriginal := fs.Bool("keep-original", false, "do not zero the original label and macro strips")
	auditPath := fs.String("audit", "", "audit log output (jsonl)")
	configPath := fs.String("config", "", "configuration file")
	logDir := fs.String("log-dir", "", "rotating log directory")
	fs.Parse(args)

	if *sheet == "" {
		fmt.Println("required: --sheet")
		os.Exit(1)
	}
	if ext := strings.ToLower(filepath.Ext(*sheet)); ext != ".csv" {
		fmt.Printf("unsupported sheet format %q: only csv sheets are accepted\n", ext)
		os.Exit(1)
	}
	cfg := loadConfig(*configPath, *logDir)

	records, err := batch.ReadCSV(*sheet, *column)
	if err != nil {
		fmt.Println("read sheet:", err)
		os.Exit(1)
	}
	sum := batch.Run(records, batch.Options{
		SlideDir:       *slideDir,
		RemoveOriginal: !*keepOriginal,
		Guard:          bigtiff.Guard{Markers: cfg.ProtectedMarkers},
		Geometry:       cfg.Geometry(),
		Audit:          auditLog(*auditPath),
	})
	fmt.Printf("Batch complete: %d switched, %d failed of %d records\n", sum.Processed, sum.Failed, len(records))
	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func deidCmd(args []string) {
	fs := flag.NewFlagSet("deid", flag.ExitOnError)
	slide := fs.String("slide", "", "path to slide")
	auditPath := fs.String("audit", "", "audit log output (jsonl)")
	configPath := fs.String("config", "", "configuration file")
	logDir := fs.String("log-dir", "", "rotating log directory")
	fs.Parse(args)

	if *slide == "" {
		fmt.Println("required: --slide")
		os.Exit(1)
	}
	cfg := loadConfig(*configPath, *logDir)

	err := switcher.DeIdentify(*slide, bigtiff.Guard{Markers: cfg.ProtectedMarkers}, auditLog(*auditPath))
	if err != nil {
		fmt.Println("deid:", err)
		os.Exit(1)
	}
	fmt.Println("Zeroed label and macro strips in", *slide)
}

func dumpCmd(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	slide := fs.String("slide", "", "path to slide")
	fs.Parse(args)

	if *slide == "" {
		fmt.Println("required: --slide")
		os.Exit(1)
	}
	f, err := bigtiff.Open(*slide)
	if err != nil {
		fmt.Println("open slide:", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := f.DumpDirectories(os.Stdout); err != nil {
		fmt.Println("dump:", err)
		os.Exit(1)
	}
}

func labelCmd(args []string) {
	fs := flag.NewFlagSet("label", flag.ExitOnError)
	path := fs.String("path", "", "slide file or directory of slides")
	outDir := fs.String("outdir", "", "output directory for extracted labels")
	fs.Parse(args)

	if *path == "" || *outDir == "" {
		fmt.Println("required: --path, --outdir")
		os.Exit(1)
	}

	slides, err := collectSlides(*path)
	if err != nil {
		fmt.Println("collect slides:", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Println("create outdir:", err)
		os.Exit(1)
	}

	saved := 0
	for _, slide := range slides {
		if err := extractLabel(slide, *outDir); err != nil {
			common.Logf("extract %s: %v", slide, err)
			continue
		}
		saved++
	}
	fmt.Printf("Saved %d label(s) of %d slide(s) to %s\n", saved, len(slides), *outDir)
}

func collectSlides(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(path), ".svs") {
			return nil, fmt.Errorf("%s is not an .svs file", path)
		}
		return []string{path}, nil
	}
	return filepath.Glob(filepath.Join(path, "*.svs"))
}

func extractLabel(slide, outDir string) error {
	f, err := bigtiff.Open(slide)
	if err != nil {
		return err
	}
	defer f.Close()
	strip, err := f.ReadAuxStrip(bigtiff.RoleLabel)
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(slide), filepath.Ext(slide))
	out := filepath.Join(outDir, stem+".label.bin")
	return os.WriteFile(out, strip, 0o644)
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	slide := fs.String("slide", "", "path to slide")
	pdfPath := fs.String("pdf", "", "output inventory PDF")
	withHash := fs.Bool("hash", false, "include the slide SHA-256 and QR code")
	fs.Parse(args)

	if *slide == "" || *pdfPath == "" {
		fmt.Println("required: --slide, --pdf")
		os.Exit(1)
	}

	var sha string
	if *withHash {
		hash, _, err := common.Sha256OfFile(*slide)
		if err != nil {
			fmt.Println("hash slide:", err)
			os.Exit(1)
		}
		sha = hash
	}

	f, err := bigtiff.Open(*slide)
	if err != nil {
		fmt.Println("open slide:", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := report.SaveInventoryPDF(f, sha, *pdfPath); err != nil {
		fmt.Println("write pdf:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote PDF:", *pdfPath)
}
