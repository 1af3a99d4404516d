// bkdump inspects values persisted by bufferkit caches.
//
// Without a layout it prints a hex dump of the stored bytes. With --layout
// it decodes the value field by field:
//
//	bkdump --app myapp --layout 'volume=u8,theme=str1,tags=*2:str1' settings
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bufferkit/bufferkit/compress"
	"github.com/bufferkit/bufferkit/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	backend    string
	path       string
	app        string
	compressed bool
	list       bool
	hexDump    bool
	layout     string
	strict     bool
}

func run(args []string, out io.Writer) error {
	var o options
	fs := pflag.NewFlagSet("bkdump", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.backend, "store", "dir", "storage backend: dir, bolt, badger or pebble")
	fs.StringVar(&o.path, "path", "", "directory or database file (default: the data directory of --app)")
	fs.StringVar(&o.app, "app", "", "application name used to locate the default data directory")
	fs.BoolVar(&o.compressed, "compressed", false, "values were written through the compressing store")
	fs.BoolVarP(&o.list, "list", "l", false, "list keys instead of dumping a value")
	fs.BoolVarP(&o.hexDump, "hex", "x", false, "print a hex dump even when --layout is given")
	fs.StringVar(&o.layout, "layout", "", "comma-separated field codes: u8..u64, i8..i64, f32, f64, bool, time, uuid, strN, blockN, *N:<code>")
	fs.BoolVar(&o.strict, "strict", false, "reject non-canonical bools and invalid UTF-8")
	fs.Usage = func() {
		fmt.Fprintf(out, "usage: bkdump [flags] KEY\n       bkdump [flags] --list\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	var fields []field
	if o.layout != "" {
		var err error
		fields, err = parseLayout(o.layout)
		if err != nil {
			return err
		}
	}

	st, err := openStore(o)
	if err != nil {
		return err
	}
	defer st.Close()

	if o.list {
		keys, err := st.List()
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}
		return nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one KEY")
	}
	key := fs.Arg(0)
	data, err := st.Get(key)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	if fields == nil || o.hexDump {
		fmt.Fprintf(out, "%s: %d bytes\n%s", key, len(data), hex.Dump(data))
	}
	if fields != nil {
		return dump(out, data, fields, o.strict)
	}
	return nil
}

func openStore(o options) (store.Store, error) {
	path := o.path
	if path == "" {
		if o.backend != "dir" || o.app == "" {
			return nil, fmt.Errorf("--path is required unless --store=dir and --app are given")
		}
		var err error
		path, err = store.DefaultDir(o.app)
		if err != nil {
			return nil, err
		}
	}

	var st store.Store
	var err error
	switch o.backend {
	case "dir":
		if _, serr := os.Stat(path); serr != nil {
			return nil, serr
		}
		st, err = store.NewDir(path, store.DirOptions{})
	case "bolt":
		st, err = store.NewBolt(path)
	case "badger":
		st, err = store.NewBadger(path)
	case "pebble":
		st, err = store.NewPebble(path)
	default:
		return nil, fmt.Errorf("unknown store %q", o.backend)
	}
	if err != nil {
		return nil, err
	}

	if o.compressed {
		// reads accept every algorithm; the one given here only affects writes
		st = store.NewCompressed(st, compress.None)
	}
	return st, nil
}
