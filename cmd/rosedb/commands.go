package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"rosedb/pkg/codec"
	"rosedb/pkg/rosedb"
)

// parseValue reads s as JSON, falling back to the raw string so that
// `set name meslzy` works without quoting.
func parseValue(s string, raw bool) any {
	if raw {
		return s
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func formatValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func getCmd(a *app) *cobra.Command {
	var def string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *rosedb.Store) error {
				key := args[0]
				var fallback any
				if cmd.Flags().Changed("default") {
					fallback = parseValue(def, false)
				} else if ok, err := s.Has(key); err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("%s: not found", key)
				}
				v, err := s.Get(key, fallback)
				if err != nil {
					return err
				}
				out, err := formatValue(v)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&def, "default", "", "value printed when key is absent")
	return cmd
}

func setCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value (parsed as JSON, otherwise kept as a string)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *rosedb.Store) error {
				value := parseValue(strings.Join(args[1:], " "), raw)
				return s.Set(args[0], value)
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "string", false, "store the value as a string without JSON parsing")
	return cmd
}

func delCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *rosedb.Store) error {
				return s.Delete(args[0])
			})
		},
	}
}

func hasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "has <key>",
		Short: "Print whether key is present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *rosedb.Store) error {
				ok, err := s.Has(args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			})
		},
	}
}

func keysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List keys in sorted order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *rosedb.Store) error {
				keys, err := s.Keys()
				if err != nil {
					return err
				}
				for _, k := range keys {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
}

func dumpCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the whole document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.ForFormat(output)
			if err != nil {
				return err
			}
			return a.withStore(func(s *rosedb.Store) error {
				data, err := s.Data()
				if err != nil {
					return err
				}
				b, err := c.Serialize(data)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = out.Write(b)
				if len(b) == 0 || b[len(b)-1] != '\n' {
					_, _ = fmt.Fprintln(out)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", codec.FormatJSON,
		"output format: "+strings.Join(codec.Formats(), ", "))
	return cmd
}

func clearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *rosedb.Store) error {
				return s.Clear()
			})
		},
	}
}

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the document with the default (empty) mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *rosedb.Store) error {
				return s.Reset()
			})
		},
	}
}

func docsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "List documents in the bbolt database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store.Bolt == "" {
				return errors.New("docs needs a bbolt database (--bolt)")
			}
			db, err := a.openBolt()
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()
			names, err := db.Documents()
			if err != nil {
				return err
			}
			for _, n := range names {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
