package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/dxtex"
	"github.com/gogpu/dxtex/dxgi"
)

// Preset is one named conversion recipe.
//
//	[presets.ui]
//	format = "BC7_UNORM_SRGB"
//	mips = 0
//	filter = "box"
//	ext = "dds"
type Preset struct {
	Format string `toml:"format"`
	// Mips is the mip count to generate; 0 means a full chain and 1 keeps
	// the input's levels.
	Mips   int    `toml:"mips"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Filter string `toml:"filter"`
	SRGB   bool   `toml:"srgb"`
	// Premultiply converts straight alpha to premultiplied before
	// compression.
	Premultiply bool   `toml:"premultiply"`
	Ext         string `toml:"ext"`
}

type presetFile struct {
	Presets map[string]Preset `toml:"presets"`
}

var defaultPreset = Preset{Mips: 1, Ext: "dds"}

func loadPresets(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePresets(data)
}

func parsePresets(data []byte) (map[string]Preset, error) {
	var f presetFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}
	for name, p := range f.Presets {
		if p.Ext == "" {
			p.Ext = defaultPreset.Ext
		}
		p.Ext = strings.TrimPrefix(strings.ToLower(p.Ext), ".")
		if _, err := p.options(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		f.Presets[name] = p
	}
	return f.Presets, nil
}

// options resolves the preset's names into engine values.
type options struct {
	format dxgi.Format
	filter dxtex.TexFilterFlags
}

var filtersByName = map[string]dxtex.TexFilterFlags{
	"":         dxtex.TexFilterDefault,
	"point":    dxtex.TexFilterPoint,
	"linear":   dxtex.TexFilterLinear,
	"cubic":    dxtex.TexFilterCubic,
	"box":      dxtex.TexFilterBox,
	"fant":     dxtex.TexFilterFant,
	"triangle": dxtex.TexFilterTriangle,
}

func (p Preset) options() (options, error) {
	var o options
	if p.Format != "" {
		f, ok := dxgi.ParseFormat(strings.ToUpper(p.Format))
		if !ok {
			return o, fmt.Errorf("unknown format %q", p.Format)
		}
		o.format = f
	}
	filter, ok := filtersByName[strings.ToLower(p.Filter)]
	if !ok {
		return o, fmt.Errorf("unknown filter %q", p.Filter)
	}
	if p.SRGB {
		filter |= dxtex.TexFilterSRGB
	}
	o.filter = filter
	if p.Mips < 0 || p.Width < 0 || p.Height < 0 {
		return o, errors.New("negative size or mip count")
	}
	return o, nil
}
