// Command pagedb manipulates a pagedb database file from the shell.
//
// Usage:
//
//	pagedb [-config file] [-db path] <command> [args]
//
// Commands:
//
//	put <key> <json>                       store a document
//	get <key>                              print a document
//	field <key> <field>                    print one top-level field
//	delete <key>                           remove a key
//	query [-limit n] [-offset n] <field> <value>
//	                                       list keys whose field equals value
//	show                                   print every record
//	export [-field f -value v] <path>      write documents as JSON
//	backup <name>                          upload an export to the backup store
//	restore <name>                         put every document of a backup
//	stats                                  print database statistics
//	demo                                   run a walkthrough on the database
//
// Values are parsed as JSON; anything that is not valid JSON is taken as a
// string, so `query city NY` and `query city '"NY"'` are equivalent.
// Commands that modify the database flush it before exiting.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hupe1980/pagedb"
	"github.com/hupe1980/pagedb/config"
	"github.com/hupe1980/pagedb/document"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	usage  string
	mutate bool
	run    func(ctx context.Context, e *env, args []string) error
}

type env struct {
	db  *pagedb.DB
	cfg *config.Config
	out io.Writer
}

var errUsage = errors.New("usage")

var commands = map[string]command{
	"put":     {"put <key> <json>", true, cmdPut},
	"get":     {"get <key>", false, cmdGet},
	"field":   {"field <key> <field>", false, cmdField},
	"delete":  {"delete <key>", true, cmdDelete},
	"query":   {"query [-limit n] [-offset n] <field> <value>", false, cmdQuery},
	"show":    {"show", false, cmdShow},
	"export":  {"export [-field f -value v] <path>", false, cmdExport},
	"backup":  {"backup <name>", false, cmdBackup},
	"restore": {"restore <name>", true, cmdRestore},
	"stats":   {"stats", false, cmdStats},
	"demo":    {"demo", true, cmdDemo},
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pagedb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "pagedb.yaml", "Path to the YAML configuration file")
	dbPath := fs.String("db", "", "Database file (overrides the configuration)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pagedb [-config file] [-db path] <command> [args]")
		fmt.Fprintln(stderr, "\nCommands:")
		for _, name := range sortedCommands() {
			fmt.Fprintf(stderr, "  %s\n", commands[name].usage)
		}
		fmt.Fprintln(stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
		fs.Usage()
		return 2
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *dbPath != "" {
		cfg.Path = *dbPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := pagedb.Open(cfg.Path, cfg.Options()...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	err = cmd.run(ctx, &env{db: db, cfg: cfg, out: stdout}, fs.Args()[1:])
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "Usage: pagedb %s\n", cmd.usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if cmd.mutate {
		if err := db.Flush(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func sortedCommands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// parseValue reads s as JSON and falls back to a plain string.
func parseValue(s string) document.Value {
	v, err := document.Parse([]byte(s))
	if err != nil {
		return document.String(s)
	}
	return v
}

func cmdPut(_ context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	v, err := document.Parse([]byte(args[1]))
	if err != nil {
		return fmt.Errorf("invalid JSON for %q: %w", args[0], err)
	}
	return e.db.Put(args[0], v)
}

func cmdGet(_ context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	v, err := e.db.GetStrict(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, v)
	return nil
}

func cmdField(_ context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	v, ok := e.db.GetField(args[0], args[1])
	if !ok {
		return fmt.Errorf("%w: %s.%s", pagedb.ErrKeyNotFound, args[0], args[1])
	}
	fmt.Fprintln(e.out, v)
	return nil
}

func cmdDelete(_ context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return e.db.Delete(args[0])
}

func cmdQuery(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", -1, "Maximum number of keys (-1 for all)")
	offset := fs.Int("offset", 0, "Number of keys to skip")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}

	for _, key := range e.db.QueryPage(fs.Arg(0), parseValue(fs.Arg(1)), *limit, *offset) {
		fmt.Fprintln(e.out, key)
	}
	return nil
}

func cmdShow(_ context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return e.db.ShowAll(e.out)
}

func cmdExport(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	field := fs.String("field", "", "Only export documents with this field")
	value := fs.String("value", "", "Value the field must equal")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	path := fs.Arg(0)
	if *field != "" {
		if err := e.db.ExportQuery(*field, parseValue(*value), path); err != nil {
			return err
		}
	} else if err := e.db.ExportToFile(path); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "exported to %s\n", path)
	return nil
}

func cmdBackup(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	store, err := e.cfg.Store(ctx)
	if err != nil {
		return err
	}
	if err := e.db.Backup(ctx, args[0], e.cfg.Compression(), store); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "backed up %d keys to %s\n", e.db.Len(), args[0])
	return nil
}

func cmdRestore(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	store, err := e.cfg.Store(ctx)
	if err != nil {
		return err
	}
	n, err := e.db.Restore(ctx, store, args[0], e.cfg.Compression())
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "restored %d keys from %s\n", n, args[0])
	return nil
}

func cmdStats(_ context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	s := e.db.Stats()
	fmt.Fprintf(e.out, "keys:           %d\n", s.Keys)
	fmt.Fprintf(e.out, "next page:      %d\n", s.NextPageID)
	fmt.Fprintf(e.out, "mapped pages:   %d\n", s.MappedPages)
	fmt.Fprintf(e.out, "leaked pages:   %d\n", s.LeakedPages)
	fmt.Fprintf(e.out, "indexed fields: %d\n", s.IndexedFields)
	fmt.Fprintf(e.out, "index buckets:  %d\n", s.IndexBuckets)
	return nil
}

// cmdDemo stores a few users, queries them and writes la_users.json and
// backup.json next to the database file.
func cmdDemo(_ context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	db, out := e.db, e.out
	dir := filepath.Dir(db.Path())

	users := []struct {
		key  string
		json string
	}{
		{"user:1", `{"name":"Alice","age":30,"city":"NY"}`},
		{"user:2", `{"name":"Bob","age":25,"city":"LA"}`},
		{"user:3", `{"name":"Charlie","age":30,"city":"NY"}`},
		{"user:4", `{"name":"Diana","age":22,"city":"LA"}`},
	}
	for _, u := range users {
		if err := db.Put(u.key, document.MustParse(u.json)); err != nil {
			return err
		}
	}
	if err := db.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "-- All Records --")
	if err := db.ShowAll(out); err != nil {
		return err
	}

	if v, ok := db.Get("user:2"); ok {
		fmt.Fprintf(out, "\nFound user:2: %s\n", v)
	}
	if v, ok := db.GetField("user:1", "age"); ok {
		fmt.Fprintf(out, "user:1 age is: %s\n", v)
	}

	fmt.Fprintf(out, "\nUsers with age 30: %s\n", keyList(db.Query("age", document.Int(30))))
	fmt.Fprintf(out, "Users in NY: %s\n", keyList(db.Query("city", document.String("NY"))))
	fmt.Fprintf(out, "Users in LA: %s\n", keyList(db.Query("city", document.String("LA"))))

	fmt.Fprintln(out, "\nUsers older than 24:")
	older := db.QueryFilter(document.NewFilterSet(document.Gt("age", document.Int(24))))
	for _, key := range older {
		v, _ := db.Get(key)
		fmt.Fprintf(out, "%s => %s\n", key, v)
	}

	first := db.QueryPage("city", document.String("NY"), 1, 0)
	fmt.Fprintf(out, "\nFirst user in NY via pagination: %s\n", keyList(first))

	laPath := filepath.Join(dir, "la_users.json")
	if err := db.ExportQuery("city", document.String("LA"), laPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported users in LA to %s\n", laPath)

	if err := db.Delete("user:3"); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nDeleted user:3")
	if err := db.Flush(); err != nil {
		return err
	}

	backupPath := filepath.Join(dir, "backup.json")
	if err := db.ExportToFile(backupPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nExported DB to %s\n", backupPath)

	fmt.Fprintln(out, "\n-- Final Records After Delete --")
	return db.ShowAll(out)
}

func keyList(keys []string) string {
	return "[" + strings.Join(keys, ", ") + "]"
}
