// cmd/cdb is the command-line front end for the database container: open,
// create, ingest a PGN archive, export back to PGN, and list summary
// stats (SPEC_FULL.md §6, grounded on the teacher's cmd/perft, cmd/uci,
// cmd/convert subcommand layout).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"chessdb/chess"
	"chessdb/chessdb"
	"chessdb/logx"
	"chessdb/pgn"
	"chessdb/workpool"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "create":
		err = runCreate(os.Args[2:])
	case "open":
		err = runOpen(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "ingest-pgn":
		err = runIngest(os.Args[2:])
	case "export-pgn":
		err = runExport(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "cdb:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cdb <open|create|ingest-pgn|export-pgn|list> [flags]")
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	db := fs.String("db", "", "path to the database file")
	size := fs.Int("size", 0, "initial file size in bytes (0 = default)")
	fs.Parse(args)

	if *db == "" {
		return fmt.Errorf("-db is required")
	}

	d, err := chessdb.Open(*db, chessdb.OpenOptions{Create: true, Size: *size})
	if err != nil {
		return err
	}
	return d.Close()
}

func runOpen(args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	db := fs.String("db", "", "path to the database file")
	fs.Parse(args)

	if *db == "" {
		return fmt.Errorf("-db is required")
	}

	d, err := chessdb.Open(*db, chessdb.OpenOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Printf("opened %s: name=%q games=%d\n", *db, d.Name(), d.GameCount())
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	db := fs.String("db", "", "path to the database file")
	fs.Parse(args)

	if *db == "" {
		return fmt.Errorf("-db is required")
	}

	d, err := chessdb.Open(*db, chessdb.OpenOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Printf("name:     %s\n", d.Name())
	fmt.Printf("games:    %d\n", d.GameCount())
	fmt.Printf("checksum: %x\n", d.Checksum())
	fmt.Printf("bad pages: %d\n", len(d.BadPages))
	return nil
}

// ingestConfig is the small JSON sidecar accepted by ingest-pgn for batch
// jobs (SPEC_FULL.md §4.0 Ambient: configuration, grounded on the
// teacher's tuner/io_json.go style).
type ingestConfig struct {
	InputGlob   string `json:"input_glob"`
	Workers     int    `json:"workers"`
	SkipOnError bool   `json:"skip_on_error"`
}

func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest-pgn", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to the database file")
	pgnPath := fs.String("pgn", "", "path or glob of PGN input (a -config file's input_glob overrides it)")
	configPath := fs.String("config", "", "path to a JSON batch-ingest config")
	workers := fs.Int("workers", 1, "number of ingest workers")
	skipOnError := fs.Bool("skip-on-error", false, "recover to the next game on a parse error")
	fs.Parse(args)

	if *dbPath == "" {
		return fmt.Errorf("-db is required")
	}

	cfg := ingestConfig{InputGlob: *pgnPath, Workers: *workers, SkipOnError: *skipOnError}
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return err
		}
	}
	if cfg.InputGlob == "" {
		return fmt.Errorf("-pgn or a config's input_glob is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	files, err := filepath.Glob(cfg.InputGlob)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched %q", cfg.InputGlob)
	}

	d, err := chessdb.Open(*dbPath, chessdb.OpenOptions{Create: true})
	if err != nil {
		return err
	}
	defer d.Close()

	pool := workpool.New(context.Background(), cfg.Workers)
	var ingested, failed atomic.Int64

	for _, path := range files {
		path := path
		pool.Push(func() {
			n, err := ingestFile(d, path, cfg.SkipOnError)
			ingested.Add(int64(n))
			if err != nil {
				failed.Add(1)
				log := logx.Log()
				log.Error().Str("file", path).Err(err).Msg("cdb: ingest failed")
			}
		})
	}

	if err := pool.Close(); err != nil {
		return err
	}
	if err := d.Flush(); err != nil {
		return err
	}

	fmt.Printf("ingested %d games from %d file(s), %d failure(s)\n", ingested.Load(), len(files), failed.Load())
	return nil
}

func ingestFile(d *chessdb.Database, path string, skipOnError bool) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	games, errs := pgn.ParseGames(string(raw), skipOnError)
	if len(errs) > 0 && !skipOnError {
		return 0, errs[0]
	}
	for _, perr := range errs {
		log := logx.Log()
		log.Warn().Str("file", path).Err(perr).Msg("cdb: skipped unparseable game")
	}

	n := 0
	for _, g := range games {
		start := chess.Startpos
		if fen, ok := g.TagValue("FEN"); ok {
			if p, ferr := chess.FromFEN(fen); ferr == nil {
				start = p
			}
		}

		rec := chessdb.RecordFromGame(g, start)
		data, rerr := chessdb.EncodeRecord(rec)
		if rerr != nil {
			if skipOnError {
				continue
			}
			return n, rerr
		}

		d.Put(data)
		n++
	}

	return n, nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export-pgn", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to the database file")
	outPath := fs.String("out", "", "path to write PGN text to")
	fs.Parse(args)

	if *dbPath == "" || *outPath == "" {
		return fmt.Errorf("-db and -out are required")
	}

	d, err := chessdb.Open(*dbPath, chessdb.OpenOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	var writeErr error
	d.ForEach(func(data []byte) {
		if writeErr != nil {
			return
		}
		rec, err := chessdb.DecodeRecord(data, chess.Startpos)
		if err != nil {
			writeErr = err
			return
		}
		writeErr = writeRecordAsPGN(w, rec)
	})

	return writeErr
}

func writeRecordAsPGN(w *bufio.Writer, rec *chessdb.Record) error {
	for _, t := range rec.Tags {
		if _, err := fmt.Fprintf(w, "[%s \"%s\"]\n", t.Name, t.Value); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("\n"); err != nil {
		return err
	}

	pos := rec.Start
	black := false
	for i, m := range rec.Moves {
		if i%2 == 0 {
			if _, err := fmt.Fprintf(w, "%d. ", i/2+1); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s ", chess.ToSAN(m, pos, black)); err != nil {
			return err
		}
		if c, ok := rec.Comments[i]; ok {
			if _, err := fmt.Fprintf(w, "{%s} ", c); err != nil {
				return err
			}
		}
		pos = chess.MakeMove(pos, m)
		black = !black
	}

	if _, err := fmt.Fprintf(w, "%s\n\n", resultToken(rec.Result)); err != nil {
		return err
	}
	return nil
}

func resultToken(r pgn.GameResult) string {
	switch r {
	case pgn.White:
		return "1-0"
	case pgn.Black:
		return "0-1"
	case pgn.Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}
