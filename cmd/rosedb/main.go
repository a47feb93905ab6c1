package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rosedb/internal/config"
	"rosedb/internal/logging"
	"rosedb/pkg/cipher"
	"rosedb/pkg/rosedb"
	boltstore "rosedb/pkg/store/bolt"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the flag values and resolved config for one invocation.
type app struct {
	configPath string
	file       string
	format     string
	mkfile     bool
	encryption string
	boltPath   string
	document   string
	logLevel   string

	stdin io.Reader
	cfg   *config.Config
	db    *boltstore.DB
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin}
	root := &cobra.Command{
		Use:          "rosedb",
		Short:        "Inspect and edit a rosedb document",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.rosedb/config.toml)")
	pf.StringVarP(&a.file, "file", "f", "", "document path (overrides config)")
	pf.StringVar(&a.format, "format", "", "codec name; empty infers it from the file extension")
	pf.BoolVar(&a.mkfile, "mkfile", true, "create missing parent directories")
	pf.StringVar(&a.encryption, "encryption", "", "none, shift or passphrase")
	pf.StringVar(&a.boltPath, "bolt", "", "keep the document in this bbolt database")
	pf.StringVar(&a.document, "doc", "", "document name inside the bbolt database")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		getCmd(a), setCmd(a), delCmd(a), hasCmd(a), keysCmd(a),
		dumpCmd(a), clearCmd(a), resetCmd(a), docsCmd(a),
	)
	return root
}

// configure loads the config file and applies flag overrides.
func (a *app) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if a.file != "" {
		cfg.Store.File = a.file
	}
	if a.format != "" {
		cfg.Store.Format = a.format
	}
	if flags.Changed("mkfile") {
		cfg.Store.Mkfile = a.mkfile
	}
	if a.encryption != "" {
		cfg.Store.Encryption = a.encryption
	}
	if a.boltPath != "" {
		cfg.Store.Bolt = a.boltPath
	}
	if a.document != "" {
		cfg.Store.Document = a.document
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.InitWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	a.cfg = cfg
	return nil
}

// open builds and initializes the store described by the config.
func (a *app) open() (*rosedb.Store, error) {
	sc := a.cfg.Store
	opts := rosedb.Options{
		Format: sc.Format,
		Mkfile: sc.Mkfile,
		Logger: logging.For("cli"),
	}

	if sc.Bolt != "" {
		db, err := a.openBolt()
		if err != nil {
			return nil, err
		}
		opts.Backend = db.Document(sc.Document)
	} else {
		opts.File = config.ExpandHome(sc.File)
	}

	switch strings.ToLower(sc.Encryption) {
	case config.EncryptionShift:
		opts.Encryption = true
	case config.EncryptionPassphrase:
		pass, err := readPassphrase(a.stdin)
		if err != nil {
			return nil, err
		}
		c, err := cipher.NewPassphrase(pass)
		if err != nil {
			return nil, err
		}
		opts.Cipher = c
	}

	s, err := rosedb.New(opts)
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

func (a *app) openBolt() (*boltstore.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	path := config.ExpandHome(a.cfg.Store.Bolt)
	if a.cfg.Store.Mkfile {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating bolt dir: %w", err)
		}
	}
	db, err := boltstore.Open(path)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// withStore opens the store, runs fn and releases the bolt database, if any.
func (a *app) withStore(fn func(*rosedb.Store) error) (err error) {
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	s, err := a.open()
	if err != nil {
		return err
	}
	return fn(s)
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

