// Package report exports the weekly board as an Excel workbook.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/example/service-order-scheduler/internal/application"
)

// ErrEmptyBoard is returned for a board without day columns.
var ErrEmptyBoard = errors.New("report: board has no days")

const (
	availabilitySheet = "Disponibilidade"
	maxSheetName      = 31
	headerRow         = 1
)

var (
	orderHeaders        = []string{"OS", "Departamento", "Início", "Fim", "Colaboradores"}
	availabilityHeaders = []string{"Colaborador", "Usuário", "Status", "Trabalhando em", "Horário"}
)

// Generator holds the workbook being built.
type Generator struct {
	file        *excelize.File
	headerStyle int
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{file: excelize.NewFile()}
}

// WeekWorkbook renders one sheet per weekday column, Sunday first, listing each
// order assignment of that day. A non-nil availability adds a sheet with one row per
// employee.
func WeekWorkbook(board application.WeekBoard, availability []application.AvailabilityRow) (*bytes.Buffer, error) {
	if len(board.Days) == 0 {
		return nil, ErrEmptyBoard
	}

	gen := NewGenerator()
	defer gen.file.Close()

	var err error
	if gen.headerStyle, err = gen.newHeaderStyle(); err != nil {
		return nil, err
	}

	for _, day := range board.Days {
		if err = gen.addDaySheet(day); err != nil {
			return nil, fmt.Errorf("failed to add sheet for %s: %w", day.Key, err)
		}
	}
	if availability != nil {
		if err = gen.addAvailabilitySheet(availability); err != nil {
			return nil, fmt.Errorf("failed to add availability sheet: %w", err)
		}
	}

	gen.file.SetActiveSheet(0)
	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err = gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, nil
}

// OrderRows flattens a day column into one row per assignment. Orders without
// assignments still get a row.
func OrderRows(day application.DayColumn) [][]any {
	rows := make([][]any, 0, len(day.Orders))
	for _, card := range day.Orders {
		if len(card.Assignments) == 0 {
			rows = append(rows, []any{card.OSNumber, "", "", "", ""})
			continue
		}
		for _, assignment := range card.Assignments {
			names := make([]string, 0, len(assignment.Collaborators))
			for _, collaborator := range assignment.Collaborators {
				names = append(names, collaborator.Name)
			}
			rows = append(rows, []any{
				card.OSNumber,
				assignment.DepartmentName,
				assignment.ExecutionStart,
				assignment.ExecutionEnd,
				strings.Join(names, ", "),
			})
		}
	}
	return rows
}

func (g *Generator) addDaySheet(day application.DayColumn) error {
	name := truncateSheetName(day.Label)
	if _, err := g.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to generate new sheet '%s': %w", name, err)
	}
	rows := OrderRows(day)
	widths := map[string]float64{"A": 14, "B": 24, "C": 10, "D": 10, "E": 50}
	if err := g.setupSheet(name, orderHeaders, widths, len(rows)); err != nil {
		return err
	}
	return g.addRows(name, rows)
}

func (g *Generator) addAvailabilitySheet(availability []application.AvailabilityRow) error {
	if _, err := g.file.NewSheet(availabilitySheet); err != nil {
		return fmt.Errorf("failed to generate new sheet '%s': %w", availabilitySheet, err)
	}
	rows := make([][]any, 0, len(availability))
	for _, row := range availability {
		rows = append(rows, []any{
			row.Name,
			row.Username,
			row.StatusLabel,
			strings.Join(row.WorkingDepartments, ", "),
			row.ScheduleDisplay,
		})
	}
	widths := map[string]float64{"A": 30, "B": 18, "C": 16, "D": 40, "E": 50}
	if err := g.setupSheet(availabilitySheet, availabilityHeaders, widths, len(rows)); err != nil {
		return err
	}
	return g.addRows(availabilitySheet, rows)
}

func (g *Generator) newHeaderStyle() (int, error) {
	style, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return style, nil
}

// setupSheet writes the styled header row and column widths, and wraps the data
// in a table when there is at least one row.
func (g *Generator) setupSheet(sheet string, headers []string, widths map[string]float64, rowCount int) error {
	if err := g.file.SetRowHeight(sheet, headerRow, 20); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err := g.file.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}
	lastColumn, _ := excelize.ColumnNumberToName(len(headers))
	if err := g.file.SetCellStyle(sheet, "A1", lastColumn+"1", g.headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}
	for col, width := range widths {
		if err := g.file.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if rowCount == 0 {
		return nil
	}
	if err := g.file.AddTable(sheet, &excelize.Table{
		Range:     fmt.Sprintf("A1:%s%d", lastColumn, rowCount+headerRow),
		Name:      tableName(sheet),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}
	return nil
}

func (g *Generator) addRows(sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+headerRow+1)
		if err := g.file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to set sheet row %d: %w", i+headerRow+1, err)
		}
	}
	return nil
}

// tableName keeps ASCII letters and digits; excel table names cannot hold spaces
// or accents.
func tableName(sheet string) string {
	var b strings.Builder
	b.WriteString("table_")
	for _, r := range sheet {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncateSheetName(name string) string {
	if utf8.RuneCountInString(name) > maxSheetName {
		return string([]rune(name)[:maxSheetName])
	}
	return name
}
