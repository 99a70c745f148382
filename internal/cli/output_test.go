package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/locale"
	"github.com/hyperjump/kotae/internal/models"
)

func sampleResponse(lang string, tier models.Tier) *models.AnswerResponse {
	return &models.AnswerResponse{
		ID:          "id-1",
		Query:       "transit?",
		Answer:      "Ottawa uses OC Transpo buses and O-Train light rail.",
		Distance:    0.42,
		Tier:        tier,
		LineIndex:   8,
		Lang:        lang,
		QueryTimeMs: 3,
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"TEXT", OutputText, false},
		{"compact", OutputCompact, false},
		{"json", OutputJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteAnswer_JSON(t *testing.T) {
	resp := sampleResponse("en", models.High)
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, resp, OutputJSON); err != nil {
		t.Fatalf("WriteAnswer(json): %v", err)
	}
	var decoded models.AnswerResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded != *resp {
		t.Errorf("decoded = %+v, want %+v", decoded, *resp)
	}
}

func TestWriteAnswer_Text(t *testing.T) {
	tests := []struct {
		name string
		resp *models.AnswerResponse
		want []string
	}{
		{"english high", sampleResponse("en", models.High), []string{"Answer:", "OC Transpo", "🟢 High Confidence", "Distance: 0.42", "3ms"}},
		{"spanish medium", sampleResponse("es", models.Medium), []string{"Respuesta:", "🟡 Confianza Media", "Distancia: 0.42"}},
		{"spanish not found", sampleResponse("es", models.NotFound), []string{locale.For("es").NotFound, "🔴 Tema No Encontrado"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteAnswer(&buf, tt.resp, OutputText); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, sub := range tt.want {
				if !strings.Contains(out, sub) {
					t.Errorf("text output missing %q:\n%s", sub, out)
				}
			}
		})
	}
}

func TestWriteAnswer_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleResponse("en", models.Medium), OutputCompact); err != nil {
		t.Fatal(err)
	}
	want := "medium\t0.42\tOttawa uses OC Transpo buses and O-Train light rail.\n"
	if buf.String() != want {
		t.Errorf("compact = %q, want %q", buf.String(), want)
	}
}

func TestWriteStatus(t *testing.T) {
	built := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	st := &models.StatusResponse{
		Status: "ok", Source: "built-in", Embedder: "tfidf",
		Lines: 18, Questions: 12, Answers: 6, Topics: 6, Languages: 2, Dimensions: 95, TopK: 5,
		BuiltAt: &built, AnswersLogged: 4, DiskUsageBytes: 2048,
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText, "en"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"tfidf", "18 (12 questions, 6 answers", "FAQ Topics:", "Vector Size:", "95", "2.0 KiB"} {
		if !strings.Contains(out, sub) {
			t.Errorf("status output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, st, OutputJSON, "en"); err != nil {
		t.Fatal(err)
	}
	var decoded models.StatusResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Lines != 18 || decoded.Embedder != "tfidf" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPrintAnswer(t *testing.T) {
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	PrintAnswer(sampleResponse("en", models.High))
	w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)
	if !strings.Contains(string(out), "OC Transpo") {
		t.Errorf("PrintAnswer output = %q", out)
	}
}
