package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"support-insights-go/internal/types"
)

var ErrNoColumns = errors.New("no recognised columns in header")

// headerRule maps a header to a store column when the header contains any of
// the hints. Rules are checked in order, so the more specific ones come first.
type headerRule struct {
	column string
	hints  []string
}

var headerRules = []headerRule{
	{types.ColClosureReason, []string{"motivo fechamento", "motivo de fechamento", "closure", "encerramento"}},
	{types.ColShortQualifier, []string{"qualificacao resumida", "qualificação resumida"}},
	{types.ColQualification, []string{"qualificacao", "qualificação", "qualification"}},
	{types.ColLeadScoring, []string{"lead"}},
	{types.ColDuration, []string{"tempo", "duration", "duração", "duracao"}},
	{types.ColSummary, []string{"resumo", "summary"}},
	{types.ColConversationLog, []string{"historico", "histórico", "transcri", "conversa"}},
	{types.ColAIData, []string{"avaliacao ia", "avaliação ia", "ai data", "analise ia"}},
	{types.ColImprovements, []string{"melhoria", "improvement"}},
	{types.ColDepartment, []string{"departamento", "department", "setor"}},
	{types.ColReason, []string{"motivo", "reason", "assunto"}},
	{types.ColAgent, []string{"atendente", "agente", "agent"}},
	{types.ColPhone, []string{"telefone", "phone", "celular", "whatsapp"}},
	{types.ColTicket, []string{"ticket", "protocolo"}},
	{types.ColScore, []string{"nota", "score", "csat", "avaliação", "avaliacao"}},
	{types.ColChurn, []string{"churn", "cancelamento"}},
	{types.ColUpsell, []string{"upsell"}},
	{types.ColDownsell, []string{"downsell"}},
	{types.ColDate, []string{"data", "date", "created"}},
}

// MapHeader resolves each header cell to a store column: an exact column name
// first, then the heuristic hints. Each column is taken by its first header.
func MapHeader(header []string) map[int]string {
	known := map[string]bool{}
	for _, c := range types.Columns {
		known[c] = true
	}
	out := map[int]string{}
	taken := map[string]bool{}
	assign := func(i int, col string) {
		if !taken[col] {
			out[i] = col
			taken[col] = true
		}
	}
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if known[key] {
			assign(i, key)
		}
	}
	for i, h := range header {
		if _, ok := out[i]; ok {
			continue
		}
		l := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(h, "_", " ")))
		if l == "" {
			continue
		}
		for _, r := range headerRules {
			if containsAny(l, r.hints) {
				if !taken[r.column] {
					assign(i, r.column)
				}
				break
			}
		}
	}
	return out
}

// Load reads the first sheet of an XLSX workbook into raw records ready to be
// stored. Blank rows are skipped; unrecognised columns are ignored.
func Load(path string) ([]types.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}
	cols := MapHeader(rows[0])
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}

	var out []types.RawRecord
	for _, r := range rows[1:] {
		rec := types.RawRecord{}
		for i, col := range cols {
			if i >= len(r) {
				continue
			}
			v := strings.TrimSpace(r[i])
			if v == "" {
				continue
			}
			if col == types.ColDate {
				v = cellDate(v)
			}
			rec[col] = v
		}
		if len(rec) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// cellDate turns an Excel serial date into RFC3339; other text is kept.
func cellDate(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.UTC().Format(time.RFC3339)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
