package main

import (
	"os"
	"path/filepath"
	"text/template"

	"github.com/midbel/cli"
	"github.com/sirupsen/logrus"
)

const helpText = `{{.Name}} inspects ELF objects (32 and 64 bits, little endian) and static archives.

Usage:

  {{.Name}} command [arguments]

The commands are:

{{range .Commands}}{{printf "  %-9s %s" .String .Short}}
{{end}}

Options can also be given in ELFSYM_OPTIONS and in the configuration file
($XDG_CONFIG_HOME/elfsym/config.toml or the file named by ELFSYM_CONFIG).

Use {{.Name}} [command] -h for more information about its usage.
`

var commands = []*cli.Command{
	{
		Usage:   "symbols [-v] [-C] [-d] [-c <config>] <file...>",
		Short:   "list the symbols of objects and archives",
		Alias:   []string{"nm", "syms"},
		Run:     runSymbols,
		Default: true,
	},
	{
		Usage: "header [-v] [-c <config>] <file>",
		Short: "print the file header",
		Alias: []string{"hdr"},
		Run:   runHeader,
	},
	{
		Usage: "sections [-v] [-c <config>] <file>",
		Short: "print the section header table",
		Alias: []string{"sh"},
		Run:   runSections,
	},
	{
		Usage: "segments [-c <config>] <file>",
		Short: "print the program header table",
		Alias: []string{"ph", "programs"},
		Run:   runSegments,
	},
	{
		Usage: "lookup [-C] [-c <config>] <file> <name...>",
		Short: "search symbols by name",
		Alias: []string{"find"},
		Run:   runLookup,
	},
}

var logger = logrus.New()

func main() {
	logger.SetOutput(os.Stderr)
	logger.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
	}
	if err := cli.Run(commands, usage); err != nil {
		logger.Fatal(err)
	}
}

func usage() {
	data := struct {
		Name     string
		Commands []*cli.Command
	}{
		Name:     filepath.Base(os.Args[0]),
		Commands: commands,
	}
	t := template.Must(template.New("help").Parse(helpText))
	t.Execute(os.Stderr, data)

	os.Exit(2)
}
