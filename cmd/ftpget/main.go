// Command ftpget fetches or uploads a single file over FTP.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	ftp "github.com/nullfield/miniftp"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr    string
		user    string
		pass    string
		timeout int
		upload  bool
	)

	cmd := &cobra.Command{
		Use:   "ftpget <remote-path> <local-path>",
		Short: "Download (or with --upload, upload) a single file over FTP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, local := args[0], args[1]

			c, err := ftp.Dial(addr, ftp.WithTimeout(time.Duration(timeout)*time.Second))
			if err != nil {
				return err
			}
			defer c.Quit()

			if err := c.Login(user, pass); err != nil {
				return err
			}

			if upload {
				return c.UploadFile(local, remote)
			}
			return c.DownloadFile(remote, local)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "localhost:2121", "server address")
	flags.StringVar(&user, "user", "anonymous", "username")
	flags.StringVar(&pass, "pass", "anonymous@", "password")
	flags.IntVar(&timeout, "timeout-seconds", 30, "timeout for every control/data operation")
	flags.BoolVar(&upload, "upload", false, "upload local-path to remote-path instead of downloading")

	return cmd
}
