package console

import (
	"fmt"
	"sort"
	"strings"

	"sales-dashboard/src/models"
	"sales-dashboard/src/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// -----------------------------------------------------------------------------
// Styles
// -----------------------------------------------------------------------------

var (
	accent    = lipgloss.Color("#50E3C2")
	muted     = lipgloss.Color("#8CA1AE")
	errColor  = lipgloss.Color("#FF6B6B")
	border    = lipgloss.Color("#2D6A80")
	titleText = "Painel de Vendas"

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle  = lipgloss.NewStyle().Foreground(muted).Width(18)
	okStyle     = lipgloss.NewStyle().Foreground(accent)
	errStyle    = lipgloss.NewStyle().Foreground(errColor)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Summary fields in display order.
var fieldLabels = []struct{ id, label string }{
	{render.FieldTotalSales, "Total de vendas"},
	{render.FieldLastTimestamp, "Último registro"},
	{render.FieldRows, "Linhas"},
	{render.FieldUpdatedAt, "Atualizado em"},
}

// -----------------------------------------------------------------------------

// RenderView draws the dashboard view as terminal text.
func RenderView(view *models.MView) string {
	if view == nil {
		return ""
	}

	sections := []string{
		titleStyle.Render(titleText),
		renderStatus(view.Status),
		renderFields(view.Fields),
		lipgloss.JoinHorizontal(lipgloss.Top,
			renderTable("Vendas", view.Tables[render.TableSales]),
			"  ",
			renderTable("Estoque", view.Tables[render.TableStock]),
		),
	}
	if charts := renderCharts(view.Charts); charts != "" {
		sections = append(sections, charts)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// -----------------------------------------------------------------------------

func renderStatus(status models.MStatus) string {
	if status.Text == "" {
		return labelStyle.Render("Status") + "--"
	}
	style := okStyle
	if status.Class == "err" {
		style = errStyle
	}
	return labelStyle.Render("Status") + style.Render(status.Text)
}

func renderFields(fields map[string]string) string {
	lines := make([]string, 0, len(fieldLabels))
	for _, f := range fieldLabels {
		value, ok := fields[f.id]
		if !ok {
			value = render.FieldPlaceholder
		}
		lines = append(lines, labelStyle.Render(f.label)+value)
	}
	return strings.Join(lines, "\n")
}

// renderTable draws a two-column product table. A placeholder row spanning
// both columns is drawn in the first column.
func renderTable(valueHeader string, rows []models.MTableRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers("Produto", valueHeader).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if len(rows) == 0 {
		t.Row(render.EmptyTableText, "")
	}
	for _, r := range rows {
		cells := append([]string(nil), r.Cells...)
		for len(cells) < 2 {
			cells = append(cells, "")
		}
		t.Row(cells[:2]...)
	}

	return t.String()
}

func renderCharts(charts map[string]models.MChartInfo) string {
	if len(charts) == 0 {
		return ""
	}

	ids := make([]string, 0, len(charts))
	for id := range charts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		info := charts[id]
		lines = append(lines, labelStyle.Render(id)+fmt.Sprintf("rev %d (%d bytes)", info.Revision, info.Bytes))
	}
	return strings.Join(lines, "\n")
}
