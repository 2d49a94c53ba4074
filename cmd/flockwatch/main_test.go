package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/flockwatch/internal/exporter"
	"github.com/JonMunkholm/flockwatch/internal/render"
)

const (
	stateHeader = "State Abbreviation\tState\tBackyard Flocks\tBirds Affected\tColor\tCommercial Flocks\tDetection\tTotal Flocks\tBlank\tAbbrev\tLatitude\tLongitude\r\n"
	wisconsin   = "WI\tWisconsin\t20\t3,685,424\t#d73027\t19\tLast reported detection 12/27/2024.\t39\t\tWI\t44.947205162\t-90.336235388\r\n"
	minnesota   = "MN\tMinnesota\t4\t250,000\t#fc8d59\t2\tLast reported detection 1/3/2025.\t6\t\tMN\t46.3\t-94.2\r\n"
	affected    = "\tCommercial\tBackyard\tBirds\r\n1\t12\t25\t1.5M\r\n"
	confirmed   = "Total Flocks (last 30 days)\t37\r\n"
)

// writeExports lays out an export directory in the exporter's UTF-16LE format.
func writeExports(t *testing.T, states string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		exporter.StateCasesFile:      stateHeader + states,
		exporter.AffectedTotalsFile:  affected,
		exporter.ConfirmedTotalsFile: confirmed,
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	for name, content := range files {
		b, err := enc.NewEncoder().String(content)
		if err != nil {
			t.Fatalf("encode %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(b), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestParse_JSON(t *testing.T) {
	dir := writeExports(t, wisconsin+minnesota)

	out, err := execute(t, "parse", "--dir", dir)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	var doc render.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal output: %v\n%s", err, out)
	}
	if len(doc.FlockCasesByState) != 2 {
		t.Fatalf("flock_cases_by_state = %+v", doc.FlockCasesByState)
	}
	if len(doc.PeriodSummaries) != 1 || doc.PeriodSummaries[0].TotalFlocksAffected != 37 {
		t.Errorf("period_summaries = %+v", doc.PeriodSummaries)
	}
}

func TestParse_Where(t *testing.T) {
	dir := writeExports(t, wisconsin+minnesota)

	out, err := execute(t, "parse", "--dir", dir, "--where", "birds_affected > 1000000", "--format", "yaml")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if !strings.Contains(out, "state_abbreviation: WI") || strings.Contains(out, "state_abbreviation: MN") {
		t.Errorf("filtered yaml output:\n%s", out)
	}
}

func TestParse_XLSXFile(t *testing.T) {
	dir := writeExports(t, wisconsin)
	path := filepath.Join(t.TempDir(), "flocks.xlsx")

	if _, err := execute(t, "parse", "--dir", dir, "--format", "xlsx", "--out", path); err != nil {
		t.Fatalf("parse error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	v, err := f.GetCellValue(render.StateCasesSheet, "B2")
	if err != nil || v != "Wisconsin" {
		t.Errorf("B2 = %q, %v", v, err)
	}
}

func TestParse_Errors(t *testing.T) {
	badRow := "WI\tWisconsin\t20\tmany\t#d73027\t19\tLast reported detection 12/27/2024.\t39\t\tWI\t44.9\t-90.3\r\n"

	tests := []struct {
		name string
		args func(t *testing.T) []string
		want string
	}{
		{
			name: "missing dir flag",
			args: func(t *testing.T) []string { return []string{"parse"} },
			want: `required flag(s) "dir"`,
		},
		{
			name: "xlsx without out",
			args: func(t *testing.T) []string { return []string{"parse", "--dir", t.TempDir(), "--format", "xlsx"} },
			want: "--out is required",
		},
		{
			name: "bad filter",
			args: func(t *testing.T) []string { return []string{"parse", "--dir", t.TempDir(), "--where", "hens > 1"} },
			want: "unknown field",
		},
		{
			name: "missing files",
			args: func(t *testing.T) []string { return []string{"parse", "--dir", t.TempDir()} },
			want: "EXP001",
		},
		{
			name: "invalid number",
			args: func(t *testing.T) []string { return []string{"parse", "--dir", writeExports(t, badRow)} },
			want: "VAL002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args(t)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestAuthID_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	_, err := execute(t, "auth-id")
	if !errors.Is(err, errNoDatabaseURL) {
		t.Errorf("auth-id error = %v, want errNoDatabaseURL", err)
	}
}

func TestResolveDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "postgres://legacy/db")

	if got, err := resolveDatabaseURL("postgres://flag/db"); err != nil || got != "postgres://flag/db" {
		t.Errorf("flag: got %q, %v", got, err)
	}
	if got, err := resolveDatabaseURL(""); err != nil || got != "postgres://legacy/db" {
		t.Errorf("env alias: got %q, %v", got, err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "Version:    dev") {
		t.Errorf("output = %q", out)
	}
}
