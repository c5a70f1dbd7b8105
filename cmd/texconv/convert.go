package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/dxtex"
	"github.com/gogpu/dxtex/dxgi"
)

// presetFlags are shared by convert and watch.
type presetFlags struct {
	file   string
	name   string
	outDir string
	p      Preset
}

func (f *presetFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.file, "presets", "", "TOML file with [presets.NAME] tables")
	fs.StringVar(&f.name, "preset", "", "preset to use from --presets")
	fs.StringVarP(&f.outDir, "output", "o", ".", "output directory")
	fs.StringVarP(&f.p.Format, "format", "f", "", "target DXGI format, e.g. BC7_UNORM")
	fs.IntVarP(&f.p.Mips, "mips", "m", defaultPreset.Mips, "mip levels to generate, 0 for a full chain")
	fs.IntVar(&f.p.Width, "width", 0, "resize to this width")
	fs.IntVar(&f.p.Height, "height", 0, "resize to this height")
	fs.StringVar(&f.p.Filter, "filter", "", "point, linear, cubic, box, fant or triangle")
	fs.BoolVar(&f.p.SRGB, "srgb", false, "filter in linear space")
	fs.BoolVar(&f.p.Premultiply, "pmalpha", false, "premultiply alpha")
	fs.StringVar(&f.p.Ext, "ext", defaultPreset.Ext, "output container extension")
}

// resolve returns the preset named by --preset, or the one built from the
// individual flags.
func (f *presetFlags) resolve() (Preset, error) {
	if f.name == "" {
		p := f.p
		p.Ext = strings.TrimPrefix(strings.ToLower(p.Ext), ".")
		_, err := p.options()
		return p, err
	}
	if f.file == "" {
		return Preset{}, fmt.Errorf("--preset %q needs --presets", f.name)
	}
	presets, err := loadPresets(f.file)
	if err != nil {
		return Preset{}, err
	}
	p, ok := presets[f.name]
	if !ok {
		return Preset{}, fmt.Errorf("no preset %q in %s", f.name, f.file)
	}
	return p, nil
}

func newConvertCmd() *cobra.Command {
	var flags presetFlags
	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert textures to another format or container",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.resolve()
			if err != nil {
				return err
			}
			var failed error
			for _, in := range args {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				if _, err := convertFile(in, flags.outDir, p); err != nil {
					dxtex.Logger().Error("convert", "path", in, "err", err)
					failed = err
				}
			}
			return failed
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// outputPath places in's base name with the preset extension in dir.
func outputPath(in, dir string, p Preset) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(dir, base+"."+p.Ext)
}

// convertFile runs p over one file and returns the path written.
func convertFile(in, dir string, p Preset) (string, error) {
	o, err := p.options()
	if err != nil {
		return "", err
	}
	img, err := dxtex.LoadFromFile(in)
	if err != nil {
		return "", err
	}
	defer func() { img.Release() }()

	// derive swaps in a new image built from img.
	derive := func(next *dxtex.ScratchImage, err error) error {
		if err != nil {
			return err
		}
		img.Release()
		img = next
		return nil
	}
	// consume takes the result of an Into method, which has already
	// released img on success.
	consume := func(next *dxtex.ScratchImage, err error) error {
		if err != nil {
			return err
		}
		img = next
		return nil
	}

	meta := img.Metadata()
	reshape := p.Width > 0 || p.Height > 0 || p.Mips != 1 || p.Premultiply
	if reshape {
		if err := consume(img.MaybeDecompress()); err != nil {
			return "", err
		}
	}
	if p.Width > 0 || p.Height > 0 {
		w, h := p.Width, p.Height
		if w == 0 {
			w = meta.Width
		}
		if h == 0 {
			h = meta.Height
		}
		if err := derive(img.Resize(w, h, o.filter)); err != nil {
			return "", err
		}
	}
	if p.Premultiply && img.Metadata().AlphaMode() != dxtex.TexAlphaModePremultiplied {
		if err := derive(img.PremultiplyAlpha(dxtex.TexPMAlphaDefault)); err != nil {
			return "", err
		}
	}
	if p.Mips != 1 {
		if err := derive(img.GenerateMipMaps(p.Mips, o.filter)); err != nil {
			return "", err
		}
	}
	if o.format != dxgi.FormatUnknown {
		if err := consume(img.IntoFormat(o.format)); err != nil {
			return "", err
		}
	}

	out := outputPath(in, dir, p)
	if err := img.Save(out, 0); err != nil {
		return "", err
	}
	dxtex.Logger().Info("converted", "in", in, "out", out, "format", img.Format(), "mips", img.Metadata().MipLevels)
	return out, nil
}
