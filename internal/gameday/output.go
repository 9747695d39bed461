package gameday

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Output управляет форматированием итогов Game Day.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для хода выполнения и сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, отчёт выводится в JSON.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        os.Stdout,
		errW:     os.Stderr,
	}
}

// Progress — writer для хода выполнения сценариев. В JSON режиме
// stdout остаётся чистым, поэтому ход пишется в stderr.
func (o *Output) Progress() io.Writer {
	if o.jsonMode {
		return o.errW
	}
	return o.w
}

// Report выводит итог: таблицу или JSON в зависимости от режима.
func (o *Output) Report(r Report) {
	if o.jsonMode {
		o.JSON(r)
		return
	}

	headers := []string{"SCENARIO", "STATUS", "DURATION_MS", "TIMESTAMP"}
	rows := make([][]string, len(r.Results))
	for i, res := range r.Results {
		rows[i] = []string{
			res.Scenario,
			strings.ToUpper(string(res.Status)),
			strconv.FormatFloat(res.DurationMS, 'f', 0, 64),
			res.Timestamp,
		}
	}
	fmt.Fprintln(o.w)
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success выводит сообщение в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}
