package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
	"github.com/noah-isme/exam-schedule-api/pkg/export"
)

var exportHeaders = []string{"Carrera", "Materia", "Fecha", "Hora", "Tipo", "Material", "Monitoreo", "Observaciones"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(sections []export.Section, title string) ([]byte, error)
}

// ExportFile is a rendered schedule ready to be served as a download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders a source's schedule as CSV or PDF. It reads through
// SourceService so exports hit the same cache as the JSON surface.
type ExportService struct {
	sources *SourceService
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(sources *SourceService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{sources: sources, csv: csv, pdf: pdf, logger: logger}
}

// Render produces the schedule of a source in the requested format.
func (s *ExportService) Render(ctx context.Context, sourceID, format string) (ExportFile, error) {
	result, _, err := s.sources.Get(ctx, sourceID, false)
	if err != nil {
		return ExportFile{}, err
	}

	switch strings.ToLower(format) {
	case "csv":
		data := flatDataset(result)
		content, err := s.csv.Render(data)
		if err != nil {
			return ExportFile{}, fmt.Errorf("render csv for %s: %w", sourceID, err)
		}
		return ExportFile{
			Content:     content,
			ContentType: "text/csv; charset=utf-8",
			Filename:    fmt.Sprintf("cronograma-%s.csv", sourceID),
		}, nil
	case "pdf":
		title := fmt.Sprintf("Cronograma de exámenes - %s", result.Source.Name)
		content, err := s.pdf.Render(programSections(result), title)
		if err != nil {
			return ExportFile{}, fmt.Errorf("render pdf for %s: %w", sourceID, err)
		}
		return ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("cronograma-%s.pdf", sourceID),
		}, nil
	default:
		return ExportFile{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// flatDataset joins every program into one table with a leading program column.
func flatDataset(result models.SourceResult) export.Dataset {
	data := export.Dataset{Headers: exportHeaders}
	for _, code := range sortedProgramCodes(result.Programs) {
		group := result.Programs[code]
		for _, exam := range group.Exams {
			data.Rows = append(data.Rows, examRow(group.Name, exam))
		}
	}
	return data
}

// programSections renders one PDF section per program, in code order.
func programSections(result models.SourceResult) []export.Section {
	var sections []export.Section
	for _, code := range sortedProgramCodes(result.Programs) {
		group := result.Programs[code]
		section := export.Section{
			Heading: fmt.Sprintf("%s - %s", group.Code, group.Name),
			Data:    export.Dataset{Headers: exportHeaders},
		}
		for _, exam := range group.Exams {
			section.Data.Rows = append(section.Data.Rows, examRow(group.Name, exam))
		}
		sections = append(sections, section)
	}
	return sections
}

func examRow(programName string, exam models.ExamRecord) map[string]string {
	return map[string]string{
		"Carrera":       programName,
		"Materia":       exam.SubjectName,
		"Fecha":         exam.Date.Legible,
		"Hora":          exam.Time,
		"Tipo":          exam.ExamType,
		"Material":      exam.Material,
		"Monitoreo":     exam.Monitoring,
		"Observaciones": exam.Notes,
	}
}

func sortedProgramCodes(programs map[string]models.ProgramGroup) []string {
	codes := make([]string, 0, len(programs))
	for code := range programs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
