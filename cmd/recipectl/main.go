// recipectl 在命令列匯入、解析與換算食譜，不需要啟動 HTTP 服務。
package main

import (
	"fmt"
	"os"

	"recipe-importer/internal/pkg/common"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env 可有可無
	_ = godotenv.Load()
	defer common.Sync()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "recipectl",
		Usage: "import, parse and scale recipes from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   formatJSON,
				Usage:   "output format: json or yaml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log pipeline progress to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if _, err := outputFormat(c.String("format")); err != nil {
				return err
			}
			if c.Bool("verbose") {
				return common.InitLogger("debug", "")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "extract a recipe draft from a URL or free text",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "recipe page URL"},
					&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "free text such as a caption (\"-\" reads stdin)"},
				},
				Action: ImportAction,
			},
			{
				Name:      "parse",
				Usage:     "split ingredient lines into quantity, unit and name",
				ArgsUsage: "[line...] (stdin when empty)",
				Action:    ParseAction,
			},
			{
				Name:      "scale",
				Usage:     "scale one ingredient between serving counts",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "from", Usage: "original servings", Required: true},
					&cli.IntFlag{Name: "to", Usage: "target servings", Required: true},
					&cli.StringFlag{Name: "quantity", Aliases: []string{"q"}, Usage: "quantity such as 1/2 or 1 1/2"},
					&cli.StringFlag{Name: "unit", Usage: "unit as written"},
					&cli.StringFlag{Name: "line", Usage: "full ingredient line, parsed before scaling"},
				},
				Action: ScaleAction,
			},
		},
	}
}
