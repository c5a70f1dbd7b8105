package dxtex

// SaveDDS writes every sub-image as a DDS file.
func (s *ScratchImage) SaveDDS(path string, flags DDSFlags) error {
	if s.IsEmpty() {
		return invalidArg("SaveDDS", "empty ScratchImage")
	}
	return SaveToDDSFile(s.Images(), s.Metadata(), flags, path)
}

// SaveDDSToMemory encodes every sub-image as a DDS file.
func (s *ScratchImage) SaveDDSToMemory(flags DDSFlags) (*Blob, error) {
	if s.IsEmpty() {
		return nil, invalidArg("SaveDDSToMemory", "empty ScratchImage")
	}
	return SaveToDDSMemory(s.Images(), s.Metadata(), flags)
}

// item returns the top mip of array item i, the only sub-image the
// single-image containers can hold.
func (s *ScratchImage) item(op string, i int) (Image, error) {
	if s.IsEmpty() {
		return Image{}, invalidArg(op, "empty ScratchImage")
	}
	img, ok := s.Image(0, i, 0)
	if !ok {
		return Image{}, invalidArg(op, "item %d out of range [0,%d)", i, s.meta.ArraySize)
	}
	return img, nil
}

// SaveTGA writes the top mip of item as a TGA file, recording the alpha
// mode.
func (s *ScratchImage) SaveTGA(item int, path string) error {
	const op = "SaveTGA"
	img, err := s.item(op, item)
	if err != nil {
		return err
	}
	meta := s.Metadata()
	return SaveToTGAFile(img, &meta, path)
}

// SaveTGAToMemory encodes the top mip of item as a TGA file.
func (s *ScratchImage) SaveTGAToMemory(item int) (*Blob, error) {
	const op = "SaveTGAToMemory"
	img, err := s.item(op, item)
	if err != nil {
		return nil, err
	}
	meta := s.Metadata()
	return SaveToTGAMemory(img, &meta)
}

// SaveHDR writes the top mip of item as a Radiance file.
func (s *ScratchImage) SaveHDR(item int, path string) error {
	img, err := s.item("SaveHDR", item)
	if err != nil {
		return err
	}
	return SaveToHDRFile(img, path)
}

// SaveHDRToMemory encodes the top mip of item as a Radiance file.
func (s *ScratchImage) SaveHDRToMemory(item int) (*Blob, error) {
	img, err := s.item("SaveHDRToMemory", item)
	if err != nil {
		return nil, err
	}
	return SaveToHDRMemory(img)
}

// SaveEXR writes the top mip of item as an OpenEXR file.
func (s *ScratchImage) SaveEXR(item int, path string) error {
	img, err := s.item("SaveEXR", item)
	if err != nil {
		return err
	}
	return SaveToEXRFile(img, path)
}

// SaveWIC writes the top mip of item with codec c.
func (s *ScratchImage) SaveWIC(item int, c WICCodec, path string) error {
	img, err := s.item("SaveWIC", item)
	if err != nil {
		return err
	}
	return SaveToWICFile(img, c, path)
}

// SaveWICToMemory encodes the top mip of item with codec c.
func (s *ScratchImage) SaveWICToMemory(item int, c WICCodec) (*Blob, error) {
	img, err := s.item("SaveWICToMemory", item)
	if err != nil {
		return nil, err
	}
	return SaveToWICMemory(img, c)
}

// Save writes the image choosing the codec by extension. DDS files receive
// every sub-image; the other containers receive the top mip of item.
func (s *ScratchImage) Save(path string, item int) error {
	const op = "Save"
	if c, _, ok := containerByExt(path); ok && c == containerDDS {
		return s.SaveDDS(path, DDSFlagsNone)
	}
	img, err := s.item(op, item)
	if err != nil {
		return err
	}
	return SaveToFile(path, img, s.Metadata())
}
