// Command ftpd serves a directory over FTP with a static user table.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/nullfield/miniftp/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr         string
		root         string
		advertise    string
		users        []string
		readOnly     []string
		debug        bool
		maxIdleTime  int
		maxLineBytes int
	)

	cmd := &cobra.Command{
		Use:   "ftpd <root-dir>",
		Short: "Serve a directory over FTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root = args[0]

			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
			slog.SetDefault(logger)

			userTable, err := parseUsers(users, readOnly)
			if err != nil {
				return err
			}

			opts := []server.Option{
				server.WithUsers(userTable),
				server.WithLogger(logger),
			}
			if advertise != "" {
				opts = append(opts, server.WithAdvertisedHost(advertise))
			}
			if maxIdleTime > 0 {
				opts = append(opts, server.WithMaxIdleTime(time.Duration(maxIdleTime)*time.Second))
			}
			if maxLineBytes > 0 {
				opts = append(opts, server.WithMaxLineBytes(maxLineBytes))
			}

			logger.Info("starting ftpd", "addr", addr, "root", root)
			return server.ListenAndServe(addr, root, opts...)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", ":2121", "address to listen on")
	flags.StringVar(&advertise, "advertise", "", "IPv4 address advertised in PASV replies")
	flags.StringArrayVar(&users, "user", nil, "user:password pair, repeatable")
	flags.StringArrayVar(&readOnly, "read-only", nil, "username to restrict to read-only access, repeatable")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.IntVar(&maxIdleTime, "max-idle-seconds", 300, "seconds a control connection may idle before it is closed")
	flags.IntVar(&maxLineBytes, "max-line-bytes", 8192, "maximum length of a single command line")

	return cmd
}

func parseUsers(pairs, readOnly []string) (server.Users, error) {
	passwords := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, pass, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --user value %q, expected user:password", pair)
		}
		passwords[name] = pass
	}
	if len(passwords) == 0 {
		return nil, fmt.Errorf("at least one --user is required")
	}

	roOpts := make([]server.UserOption, 0, len(readOnly))
	for _, name := range readOnly {
		roOpts = append(roOpts, server.ReadOnly(name))
	}

	return server.NewUsers(passwords, roOpts...), nil
}
