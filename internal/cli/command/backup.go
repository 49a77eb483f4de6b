package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// BackupCommand returns the backup command.
func BackupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Write a full backup of the data directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"f"},
				Usage:    "Backup file to create",
				Required: true,
			},
		},
		Action: backup,
	}
}

func backup(c *cli.Context) error {
	path := c.String("out")

	f, err := openFactory(c)
	if err != nil {
		return err
	}
	defer f.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}

	if err := f.Backup(c.Context, out); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close backup file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "backup written to %s (%d bytes)\n", path, info.Size())
	return nil
}
