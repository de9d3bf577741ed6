package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

func exportFixture(t *testing.T) (*ExportService, *sourceServiceFixture) {
	t.Helper()
	f := newSourceServiceFixture(t)
	f.pipeline.result = models.SourceResult{
		Source:      models.SourceInfo{ID: "ingenieria", Name: "Facultad de Ingeniería", ShortName: "FI"},
		GeneratedAt: f.now,
		Summary:     models.SourceSummary{TotalPrograms: 1, TotalExams: 1},
		Programs: map[string]models.ProgramGroup{
			"101": {
				Code: "101",
				Name: "Derecho Civil",
				Exams: []models.ExamRecord{
					{
						ID:          "101_Derecho-1-Derecho Ro",
						SubjectName: "Derecho Romano",
						Date:        models.DateInfo{Original: "15/6/2030", ISO: "2030-06-15", Legible: "sábado, 15 de junio de 2030"},
						Time:        "09:00",
						ExamType:    "Escrito",
					},
				},
			},
		},
	}
	return NewExportService(f.svc, zap.NewNop(), nil, nil), f
}

func TestRenderCSV(t *testing.T) {
	svc, _ := exportFixture(t)

	file, err := svc.Render(context.Background(), "ingenieria", "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, "cronograma-ingenieria.csv", file.Filename)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Materia")
	assert.Contains(t, lines[1], "Derecho Romano")
	assert.Contains(t, lines[1], "09:00")
}

func TestRenderPDF(t *testing.T) {
	svc, _ := exportFixture(t)

	file, err := svc.Render(context.Background(), "ingenieria", "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "cronograma-ingenieria.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestRenderUnsupportedFormat(t *testing.T) {
	svc, _ := exportFixture(t)

	_, err := svc.Render(context.Background(), "ingenieria", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRenderReadsThroughCache(t *testing.T) {
	svc, f := exportFixture(t)
	f.seedCache(t, time.Minute)

	_, err := svc.Render(context.Background(), "ingenieria", "csv")
	require.NoError(t, err)
	assert.Equal(t, 0, f.pipeline.runs)
}
