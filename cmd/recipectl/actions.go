package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"recipe-importer/internal/core/ai/service"
	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/core/ingredient"
	"recipe-importer/internal/core/scale"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func outputFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// writeOutput 依 --format 輸出結果
//
// YAML 先經過 JSON 轉換，讓兩種格式的欄位名稱與食材的字串/物件表示一致。
func writeOutput(w io.Writer, format string, v interface{}) error {
	if format == formatYAML {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = w.Write(out)
		return err
	}

	var indented strings.Builder
	enc := json.NewEncoder(&indented)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err := io.WriteString(w, indented.String())
	return err
}

func write(c *cli.Context, v interface{}) error {
	format, err := outputFormat(c.String("format"))
	if err != nil {
		return err
	}
	return writeOutput(c.App.Writer, format, v)
}

// ImportAction 匯入食譜草稿
func ImportAction(c *cli.Context) error {
	rawURL := strings.TrimSpace(c.String("url"))
	text := c.String("text")
	if rawURL == "" && text == "" {
		return cli.Exit("one of --url or --text is required", 2)
	}
	if text == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	p := service.NewProvider(cfg.AI)
	if p != nil {
		defer p.Close()
	}
	orchestrator := extract.New(cfg, p)

	var draft common.RecipeDraft
	if rawURL != "" {
		draft, err = orchestrator.Import(c.Context, rawURL)
	} else {
		draft, err = orchestrator.ImportText(c.Context, text)
	}
	if err != nil {
		// 只輸出預定義訊息，細節已寫入日誌
		ce := common.AsCustomError(err)
		return cli.Exit(ce.Message, 1)
	}
	return write(c, draft)
}

// ParseAction 解析食材行；沒有參數時逐行讀取 stdin
func ParseAction(c *cli.Context) error {
	lines := c.Args().Slice()
	if len(lines) == 0 {
		scanner := bufio.NewScanner(c.App.Reader)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	return write(c, ingredient.ParseAll(lines))
}

// ScaleAction 換算單一食材
func ScaleAction(c *cli.Context) error {
	from, to := c.Int("from"), c.Int("to")
	if from < 1 || to < 1 {
		return cli.Exit("--from and --to must be at least 1", 2)
	}

	name := strings.Join(c.Args().Slice(), " ")
	quantity, unit := c.String("quantity"), c.String("unit")
	if line := strings.TrimSpace(c.String("line")); line != "" {
		parsed := ingredient.Parse(line)
		name, quantity, unit = parsed.Name, parsed.Quantity, parsed.Unit
	}
	if strings.TrimSpace(name) == "" && quantity == "" {
		return cli.Exit("an ingredient name or --line is required", 2)
	}

	return write(c, scale.Scale(name, quantity, unit, from, to))
}
