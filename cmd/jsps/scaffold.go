package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/jsps/internal/definition"
)

func templateText() string {
	return definition.Template()
}

func scaffoldCommand() *cli.Command {
	return &cli.Command{
		Name:      "scaffold",
		Usage:     "Write a new search definition from the template",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing file",
			},
		},
		Action: func(c *cli.Context) error {
			path, err := scaffold(".", c.Args().First(), c.Bool("force"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.App.Writer, "Created %s\n", path)
			return err
		},
	}
}

// scaffold writes the template to path, or to the next free scaffold name
// in dir when path is empty
func scaffold(dir, path string, force bool) (string, error) {
	if path == "" {
		name, err := definition.NextScaffoldName(os.DirFS(dir))
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, name)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return "", err
	}
	if _, err := f.WriteString(templateText()); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
