package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/hearthos/fixlog/pkg/wal"
)

var isTerminal = true
var noColorRequested = false

const (
	FixlogInteractive        = "FIXLOG_INTERACTIVE"
	FixlogInteractiveDisable = "no"
	DeathMessage             = "Error executing command: {{.Error|red}}\n"
)

const resourceListTemplate = `{{.Table | table -}}
`

//nolint:gochecknoinits
func init() {
	// disable colors if we're not attached to interactive TTY
	if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv(FixlogInteractive) == FixlogInteractiveDisable || noColorRequested {
		DisableColors()
	}
}

func DisableColors() {
	text.DisableColors()
	isTerminal = false
}

type Table struct {
	Headers []interface{}
	Rows    [][]interface{}
}

func WriteTo(tpl string, data interface{}, w io.Writer) {
	templ := template.New("output")
	templ.Funcs(template.FuncMap{
		"red": func(arg interface{}) string {
			return text.FgHiRed.Sprint(arg)
		},
		"yellow": func(arg interface{}) string {
			return text.FgHiYellow.Sprint(arg)
		},
		"green": func(arg interface{}) string {
			return text.FgHiGreen.Sprint(arg)
		},
		"blue": func(arg interface{}) string {
			return text.FgHiBlue.Sprint(arg)
		},
		"bold": func(arg interface{}) string {
			return text.Bold.Sprint(arg)
		},
		"underline": func(arg interface{}) string {
			return text.Underline.Sprint(arg)
		},
		"date": func(ts time.Time) string {
			return ts.Local().Format(time.RFC1123)
		},
		"ljust": func(length int, s string) string {
			return text.AlignLeft.Apply(s, length)
		},
		"json": func(v interface{}) string {
			encoded, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				panic(fmt.Sprintf("failed to encode JSON: %s", err.Error()))
			}
			return string(encoded)
		},
		"lower": strings.ToLower,
		"human_bytes": func(b int64) string {
			var unit int64 = 1000
			if b < unit {
				return fmt.Sprintf("%d B", b)
			}
			div, exp := unit, 0
			for n := b / unit; n >= unit; n /= unit {
				div *= unit
				exp++
			}
			return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "kMGTPE"[exp])
		},
		"join": func(sep string, args []string) string {
			return strings.Join(args, sep)
		},
		"table": func(tab *Table) string {
			if isTerminal {
				buf := new(bytes.Buffer)
				t := table.NewWriter()
				t.SetOutputMirror(buf)
				t.AppendHeader(tab.Headers)
				for _, row := range tab.Rows {
					t.AppendRow(row)
				}
				t.Render()
				return buf.String()
			}
			var b strings.Builder
			for _, row := range tab.Rows {
				for ic, cell := range row {
					b.WriteString(fmt.Sprintf("%v", cell))
					if ic < len(row)-1 {
						b.WriteString("\t")
					}
				}
				b.WriteString("\n")
			}
			return b.String()
		},
	})
	t := template.Must(templ.Parse(tpl))
	err := t.Execute(w, data)
	if err != nil {
		panic(err)
	}
}

func Write(tpl string, data interface{}) {
	WriteTo(tpl, data, os.Stdout)
}

func Die(err string, code int) {
	WriteTo(DeathMessage, struct{ Error string }{err}, os.Stderr)
	os.Exit(code)
}

func DieFmt(msg string, args ...interface{}) {
	Die(fmt.Sprintf(msg, args...), 1)
}

func DieErr(err error) {
	WriteTo(DeathMessage, struct{ Error string }{err.Error()}, os.Stderr)
	os.Exit(1)
}

func Fmt(msg string, args ...interface{}) {
	fmt.Printf(msg, args...)
}

// Must returns v or dies when the lookup that produced it failed.
func Must[T any](v T, err error) T {
	if err != nil {
		DieErr(err)
	}
	return v
}

func PrintTable(rows [][]interface{}, headers []interface{}) {
	ctx := struct {
		Table *Table
	}{
		Table: &Table{
			Headers: headers,
			Rows:    rows,
		},
	}
	Write(resourceListTemplate, ctx)
}

// coloredState renders a transaction state with the color operators scan for:
// green all done, yellow needs a look, red something broke.
func coloredState(state wal.TxState) string {
	switch state {
	case wal.TxStateApplied:
		return text.FgHiGreen.Sprint(state)
	case wal.TxStateFailed:
		return text.FgHiRed.Sprint(state)
	case wal.TxStateInFlight, wal.TxStateAborted, wal.TxStateRolledBack:
		return text.FgHiYellow.Sprint(state)
	default:
		return string(state)
	}
}
