package pipeline

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/dealscope/dealscope/internal/model"
)

// ExportXLSX writes the recommendations of a run to an xlsx workbook.
func ExportXLSX(result *model.PipelineResult, path string) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Recommendations")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{"Rank", "Product", "Source", "Price", "Total Cost", "Rating", "Reviews", "Score", "Reason"} {
		header.AddCell().SetString(col)
	}

	for i, rec := range result.Recommendations {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(rec.Product.Name)
		row.AddCell().SetString(rec.Product.Source)
		row.AddCell().SetFloat(rec.Product.Price)
		row.AddCell().SetFloat(recPrice(rec))
		if rec.Product.Rating != nil {
			row.AddCell().SetFloat(*rec.Product.Rating)
		} else {
			row.AddCell().SetString("")
		}
		if rec.Product.ReviewCount != nil {
			row.AddCell().SetInt(*rec.Product.ReviewCount)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetFloat(rec.Score)
		row.AddCell().SetString(rec.Reason)
	}

	stages, err := wb.AddSheet("Stages")
	if err != nil {
		return eris.Wrap(err, "export: add stages sheet")
	}
	stageHeader := stages.AddRow()
	for _, col := range []string{"Stage", "Status", "Duration (ms)", "Error"} {
		stageHeader.AddCell().SetString(col)
	}
	for _, name := range []string{model.StageSearch, model.StagePrice, model.StageReview, model.StageScore} {
		sr, ok := result.Stages[name]
		if !ok {
			continue
		}
		row := stages.AddRow()
		row.AddCell().SetString(sr.Name)
		row.AddCell().SetString(string(sr.Status))
		row.AddCell().SetInt(int(sr.Duration))
		row.AddCell().SetString(sr.Error)
	}

	if err := wb.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// DefaultExportName derives an export file name from the search term.
func DefaultExportName(term string) string {
	return fmt.Sprintf("dealscope-%s.xlsx", sanitizeFileName(term))
}

func sanitizeFileName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}
