package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const minimalResx = `<?xml version="1.0" encoding="utf-8"?>
<root>
    <data name="Greeting" xml:space="preserve">
        <value>Hello</value>
    </data>
</root>
`

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("os.MkdirAll() error: %v", err)
		}
		if err := os.WriteFile(path, []byte(minimalResx), 0644); err != nil {
			t.Fatalf("os.WriteFile() error: %v", err)
		}
	}
}

// ---------------------------------------------------------------------------
// Culture validation tests
// ---------------------------------------------------------------------------

func TestIsValidCulture(t *testing.T) {
	f := NewFinder(t.TempDir(), nil)

	valid := []string{"de", "en", "fr", "pt-BR", "en-US", "zh-Hans", "zh-Hant"}
	invalid := []string{"", "d", "deu", "Id9", "enUS", "german", "zh-Hant-TW"}

	for _, tag := range valid {
		if !f.IsValidCulture(tag) {
			t.Errorf("IsValidCulture(%q) = false, want true", tag)
		}
	}
	for _, tag := range invalid {
		if f.IsValidCulture(tag) {
			t.Errorf("IsValidCulture(%q) = true, want false", tag)
		}
	}
}

func TestIsValidCulture_CustomLiterals(t *testing.T) {
	f := NewFinder(t.TempDir(), &Options{CultureLiterals: []string{"sr-Latn-RS"}})

	if !f.IsValidCulture("sr-Latn-RS") {
		t.Error("custom literal should validate")
	}
	if f.IsValidCulture("zh-Hans") {
		t.Error("default literals should be replaced, not merged")
	}
}

// ---------------------------------------------------------------------------
// FindFiles tests
// ---------------------------------------------------------------------------

func TestFindFiles_DefaultFirstThenCulture(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.fr.resx", "Strings.resx", "Strings.de.resx")

	files := NewFinder(dir, nil).FindFiles("Strings")
	if len(files) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(files))
	}
	if !files[0].IsDefault || files[0].Culture != DefaultCulture {
		t.Errorf("first descriptor should be the default file: %+v", files[0])
	}
	if files[1].Culture != "de" || files[2].Culture != "fr" {
		t.Errorf("non-default files not sorted by culture: %+v", files[1:])
	}
	for _, f := range files {
		if f.BaseName != "Strings" {
			t.Errorf("BaseName = %q, want Strings", f.BaseName)
		}
	}
}

func TestFindFiles_TwoFileFamily(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx", "Strings.de.resx")

	files := NewFinder(dir, nil).FindFiles("Strings")
	if len(files) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(files))
	}
	if !files[0].IsDefault || files[1].IsDefault {
		t.Errorf("IsDefault flags wrong: %+v", files)
	}
	if files[1].Culture != "de" {
		t.Errorf("culture: got %q, want de", files[1].Culture)
	}
}

func TestFindFiles_BaseNameCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx")

	files := NewFinder(dir, nil).FindFiles("sTRINGS")
	if len(files) != 1 {
		t.Fatalf("case-insensitive match failed: %+v", files)
	}
}

func TestFindFiles_ExcludesOtherFamilies(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx", "StringsExtra.resx", "Labels.de.resx")

	files := NewFinder(dir, nil).FindFiles("Strings")
	if len(files) != 1 || files[0].BaseName != "Strings" {
		t.Errorf("expected only the Strings family, got %+v", files)
	}
}

func TestFindFiles_InvalidSuffixStaysInBaseName(t *testing.T) {
	// "Id9" fails the culture heuristic, so the whole stem is the base name.
	dir := t.TempDir()
	writeFiles(t, dir, "Labels.Id9.resx")

	f := NewFinder(dir, nil)
	if files := f.FindFiles("Labels"); len(files) != 0 {
		t.Errorf("Labels should not match: %+v", files)
	}
	files := f.FindFiles("Labels.Id9")
	if len(files) != 1 || !files[0].IsDefault {
		t.Errorf("Labels.Id9 should be one default file: %+v", files)
	}
}

func TestFindFiles_TwoLetterWordMisreadAsCulture(t *testing.T) {
	// A base name ending in a two-letter word is split as if it carried a
	// culture tag. Known limitation of the heuristic, kept on purpose.
	dir := t.TempDir()
	writeFiles(t, dir, "Customer.Id.resx")

	files := NewFinder(dir, nil).FindFiles("Customer")
	if len(files) != 1 || files[0].Culture != "Id" || files[0].IsDefault {
		t.Errorf("expected Customer + culture Id, got %+v", files)
	}
}

func TestFindFiles_ScansSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, filepath.Join("Properties", "Strings.resx"), filepath.Join("Properties", "Strings.de.resx"))

	files := NewFinder(dir, nil).FindFiles("Strings")
	if len(files) != 2 {
		t.Errorf("expected files from subdirectory, got %+v", files)
	}
}

func TestFindFiles_DottedRootIsScanned(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".config")
	writeFiles(t, dir, "Strings.resx", "Strings.de.resx")

	files := NewFinder(dir, nil).FindFiles("Strings")
	if len(files) != 2 {
		t.Errorf("a root with a dotted name must still be scanned, got %+v", files)
	}
}

func TestFindFiles_SkipsHiddenSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx", filepath.Join(".git", "Strings.de.resx"))

	files := NewFinder(dir, nil).FindFiles("Strings")
	if len(files) != 1 || !files[0].IsDefault {
		t.Errorf("hidden subdirectories must be skipped, got %+v", files)
	}
}

// ---------------------------------------------------------------------------
// FindDefaultFile tests
// ---------------------------------------------------------------------------

func TestFindDefaultFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.de.resx", "Strings.resx")

	d := NewFinder(dir, nil).FindDefaultFile("Strings")
	if d == nil || !d.IsDefault {
		t.Fatalf("expected the culture-less file, got %+v", d)
	}
}

func TestFindDefaultFile_FallsBackToFirst(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.fr.resx", "Strings.de.resx")

	d := NewFinder(dir, nil).FindDefaultFile("Strings")
	if d == nil || d.Culture != "de" {
		t.Fatalf("expected first sorted file (de), got %+v", d)
	}
}

func TestFindDefaultFile_EmptyFamily(t *testing.T) {
	if d := NewFinder(t.TempDir(), nil).FindDefaultFile("Strings"); d != nil {
		t.Errorf("empty family should yield nil, got %+v", d)
	}
}

// ---------------------------------------------------------------------------
// Key lookup tests
// ---------------------------------------------------------------------------

func TestKeyExists_AcrossFamilyAndCase(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx", "Strings.de.resx")

	f := NewFinder(dir, nil)
	if !f.KeyExists("Strings", "greeting") {
		t.Error("KeyExists should match case-insensitively")
	}
	if f.KeyExists("Strings", "Missing") {
		t.Error("KeyExists(Missing) = true, want false")
	}
}

func TestKeyExists_MalformedFileIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx")
	if err := os.WriteFile(filepath.Join(dir, "Strings.de.resx"), []byte("broken"), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	f := NewFinder(dir, nil)
	if !f.KeyExists("Strings", "Greeting") {
		t.Error("one malformed sibling must not hide keys in healthy files")
	}
}

func TestExistingKeys_Union(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx", "Strings.de.resx")

	keys := NewFinder(dir, nil).ExistingKeys("Strings")
	if !reflect.DeepEqual(keys, map[string]bool{"greeting": true}) {
		t.Errorf("ExistingKeys() = %v", keys)
	}
}

// ---------------------------------------------------------------------------
// Generated-class lookup tests
// ---------------------------------------------------------------------------

func TestFindFilesByGeneratedClassName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx", "Strings.de.resx")
	designer := "namespace App.Properties {\n    internal class Strings {\n    }\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "Strings.Designer.cs"), []byte(designer), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	files := NewFinder(dir, nil).FindFilesByGeneratedClassName("Strings")
	if len(files) != 2 {
		t.Errorf("expected the Strings family, got %+v", files)
	}
}

func TestFindFilesByGeneratedClassName_DifferentBaseName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "AppResources.resx")
	designer := "internal class Texts {\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "AppResources.Designer.cs"), []byte(designer), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	files := NewFinder(dir, nil).FindFilesByGeneratedClassName("Texts")
	if len(files) != 1 || files[0].BaseName != "AppResources" {
		t.Errorf("designer declaration should resolve the base name, got %+v", files)
	}
}

func TestFindFilesByGeneratedClassName_FallsBackToClassName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Labels.resx")

	files := NewFinder(dir, nil).FindFilesByGeneratedClassName("Labels")
	if len(files) != 1 {
		t.Errorf("class name should be tried as base name, got %+v", files)
	}
}

// ---------------------------------------------------------------------------
// Families / DefaultPath tests
// ---------------------------------------------------------------------------

func TestFamilies(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Strings.resx", "Strings.de.resx", "Labels.resx")

	families := NewFinder(dir, nil).Families()
	if !reflect.DeepEqual(families, []string{"Labels", "Strings"}) {
		t.Errorf("Families() = %v", families)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "Strings.resx")
	if got := NewFinder(dir, nil).DefaultPath("Strings"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
