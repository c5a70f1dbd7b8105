package main

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/spf13/cobra"

	"github.com/gogpu/dxtex"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Print texture metadata without decoding pixels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed error
			for _, path := range args {
				meta, err := dxtex.MetadataFromFile(path)
				if err != nil {
					dxtex.Logger().Error("read metadata", "path", path, "err", err)
					failed = err
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", path, describe(meta))
			}
			return failed
		},
	}
}

func describe(m dxtex.TexMetadata) string {
	s := fmt.Sprintf("  %v %dx%d", m.Dimension, m.Width, m.Height)
	if m.IsVolumemap() {
		s += fmt.Sprintf("x%d", m.Depth)
	}
	s += fmt.Sprintf(" %v\n  mips %d, array %d", m.Format, m.MipLevels, m.ArraySize)
	if m.IsCubemap() {
		s += fmt.Sprintf(" (%d cubes)", m.ArraySize/6)
	}
	s += fmt.Sprintf(", alpha %v\n", m.AlphaMode())
	if gpu := m.Format.TextureFormat(); gpu != gputypes.TextureFormatUndefined {
		s += fmt.Sprintf("  webgpu %v %v\n", m.Dimension.GPU(), gpu)
	} else {
		s += "  webgpu none\n"
	}
	return s
}
