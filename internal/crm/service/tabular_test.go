package service

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseTabularCSV(t *testing.T) {
	data := []byte("name,phone_number,email\nAlice,12345,a@test.com\nBob,67890,b@test.com\n")

	table, err := ParseTabular("leads.csv", data, 0)
	if err != nil {
		t.Fatalf("ParseTabular failed: %v", err)
	}
	if len(table.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(table.Headers))
	}
	if table.Headers[1] != "phone_number" {
		t.Errorf("expected header phone_number, got %s", table.Headers[1])
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Alice" || table.Rows[1][2] != "b@test.com" {
		t.Errorf("unexpected row values: %v", table.Rows)
	}
}

func TestParseTabularCSVStripsBOMAndPadsRows(t *testing.T) {
	data := []byte("\xEF\xBB\xBFname,phone_number,email\nAlice,12345\n")

	table, err := ParseTabular("leads.csv", data, 0)
	if err != nil {
		t.Fatalf("ParseTabular failed: %v", err)
	}
	if table.Headers[0] != "name" {
		t.Errorf("BOM not stripped, first header is %q", table.Headers[0])
	}
	if len(table.Rows[0]) != 3 {
		t.Fatalf("expected row padded to 3 cells, got %d", len(table.Rows[0]))
	}
	if table.Rows[0][2] != "" {
		t.Errorf("expected empty padding cell, got %q", table.Rows[0][2])
	}
}

func TestParseTabularCSVMaxRows(t *testing.T) {
	data := []byte("name\na\nb\nc\nd\n")

	table, err := ParseTabular("leads.csv", data, 2)
	if err != nil {
		t.Fatalf("ParseTabular failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("expected row cap of 2, got %d", len(table.Rows))
	}
}

func TestParseTabularUnsupportedFormat(t *testing.T) {
	if _, err := ParseTabular("leads.pdf", []byte("x"), 0); err != ErrUnsupportedFormat {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseTabularEmptyCSV(t *testing.T) {
	if _, err := ParseTabular("leads.csv", []byte(""), 0); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestParseTabularXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "name")
	f.SetCellValue(sheet, "B1", "phone_number")
	f.SetCellValue(sheet, "A2", "Alice")
	f.SetCellValue(sheet, "B2", "12345")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}

	table, err := ParseTabular("leads.xlsx", buf.Bytes(), 0)
	if err != nil {
		t.Fatalf("ParseTabular failed: %v", err)
	}
	if len(table.Headers) != 2 || table.Headers[0] != "name" {
		t.Fatalf("unexpected headers: %v", table.Headers)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "Alice" {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
}

func TestParseTabularXLSXMaxRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "name")
	for i := 2; i <= 7; i++ {
		f.SetCellValue(sheet, "A"+strconv.Itoa(i), "row")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}

	table, err := ParseTabular("leads.xlsx", buf.Bytes(), 2)
	if err != nil {
		t.Fatalf("ParseTabular failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("expected row cap of 2, got %d", len(table.Rows))
	}
}

func TestDetectHeadersPreviewCap(t *testing.T) {
	data := []byte("name\n1\n2\n3\n4\n5\n6\n7\n")

	headers, preview, err := DetectHeaders("leads.csv", data)
	if err != nil {
		t.Fatalf("DetectHeaders failed: %v", err)
	}
	if len(headers) != 1 || headers[0] != "name" {
		t.Fatalf("unexpected headers: %v", headers)
	}
	if len(preview) != 5 {
		t.Errorf("expected preview capped at 5 rows, got %d", len(preview))
	}
}

func TestHeaderIndexMatchesExactly(t *testing.T) {
	table := &Table{Headers: []string{"Name", "Phone_Number"}}
	idx := table.HeaderIndex()
	if idx["Name"] != 0 || idx["Phone_Number"] != 1 {
		t.Errorf("unexpected index: %v", idx)
	}
	if _, ok := idx["name"]; ok {
		t.Error("lookup should be case-sensitive")
	}
}
