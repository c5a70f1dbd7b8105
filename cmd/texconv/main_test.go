package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gogpu/dxtex"
	"github.com/gogpu/dxtex/dxgi"
)

func TestParsePresets(t *testing.T) {
	data := []byte(`
[presets.ui]
format = "BC7_UNORM_SRGB"
mips = 0
filter = "Box"
ext = ".DDS"

[presets.preview]
format = "R8G8B8A8_UNORM"
width = 64
height = 64
ext = "png"
`)
	got, err := parsePresets(data)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Preset{
		"ui":      {Format: "BC7_UNORM_SRGB", Mips: 0, Filter: "Box", Ext: "dds"},
		"preview": {Format: "R8G8B8A8_UNORM", Width: 64, Height: 64, Ext: "png"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("presets (-want +got):\n%s", diff)
	}
}

func TestParsePresetsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", "[presets.a\n", "presets:"},
		{"format", "[presets.a]\nformat = \"BC99\"\n", "unknown format"},
		{"filter", "[presets.a]\nfilter = \"lanczos\"\n", "unknown filter"},
		{"size", "[presets.a]\nwidth = -1\n", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePresets([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestPresetOptions(t *testing.T) {
	o, err := Preset{Format: "bc1_unorm", Filter: "linear", SRGB: true}.options()
	if err != nil {
		t.Fatal(err)
	}
	if o.format != dxgi.FormatBC1Unorm {
		t.Errorf("format = %v", o.format)
	}
	if o.filter != dxtex.TexFilterLinear|dxtex.TexFilterSRGB {
		t.Errorf("filter = %#x", uint32(o.filter))
	}
}

func TestOutputPath(t *testing.T) {
	got := outputPath(filepath.Join("a", "b", "wall.albedo.png"), "out", Preset{Ext: "dds"})
	if want := filepath.Join("out", "wall.albedo.dds"); got != want {
		t.Errorf("outputPath = %q, want %q", got, want)
	}
}

func TestIsTexture(t *testing.T) {
	for path, want := range map[string]bool{
		"a.dds":  true,
		"a.TGA":  true,
		"a.hdr":  true,
		"a.exr":  true,
		"a.png":  true,
		"a.jpeg": true,
		"a.txt":  false,
		"dds":    false,
	} {
		if got := isTexture(path); got != want {
			t.Errorf("isTexture(%q) = %v, want %v", path, got, want)
		}
	}
}

func writeTGA(t *testing.T, path string, w, h int) {
	t.Helper()
	img, err := dxtex.Initialize2D(dxgi.FormatR8G8B8A8Unorm, w, h, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer img.Release()
	buf := img.Buffer()
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	if err := img.SaveTGA(0, path); err != nil {
		t.Fatal(err)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "albedo.tga")
	writeTGA(t, in, 32, 16)

	p := Preset{Format: "BC1_UNORM", Mips: 0, Width: 16, Filter: "box", Ext: "dds"}
	out, err := convertFile(in, dir, p)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "albedo.dds"); out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
	meta, err := dxtex.MetadataFromFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Format != dxgi.FormatBC1Unorm || meta.Width != 16 || meta.Height != 16 || meta.MipLevels != 5 {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestConvertFileMissing(t *testing.T) {
	_, err := convertFile(filepath.Join(t.TempDir(), "none.png"), t.TempDir(), defaultPreset)
	if err == nil {
		t.Fatal("converted a missing file")
	}
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.tga")
	writeTGA(t, in, 8, 4)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"info", in})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"a.tga", "8x4", "R8G8B8A8_UNORM", "mips 1", "webgpu 2D RGBA8Unorm"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("info output %q lacks %q", out.String(), want)
		}
	}
}

func TestWatcherCoalesces(t *testing.T) {
	w, err := newWatcher(t.TempDir(), defaultPreset)
	if err != nil {
		t.Fatal(err)
	}
	var mu sync.Mutex
	var calls []string
	w.convert = func(in, _ string, _ Preset) (string, error) {
		mu.Lock()
		calls = append(calls, in)
		mu.Unlock()
		return in, nil
	}

	for range 5 {
		w.schedule("a.png")
	}
	w.schedule("b.png")
	time.Sleep(4 * settle)
	if err := w.close(); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"a.png", "b.png"}, calls, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("conversions (-want +got):\n%s", diff)
	}
}
