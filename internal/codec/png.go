package codec

import (
	"bufio"
	"errors"
	"os"

	"github.com/disintegration/imaging"
)

// IntermediateExt is the extension of the lossless files handed to the BLP
// encoder.
const IntermediateExt = ".png"

// WriteIntermediate stores buf losslessly at path for file-based encoders.
func WriteIntermediate(buf PixelBuffer, path string) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	return writeFile(path, func(w *bufio.Writer) error {
		return imaging.Encode(w, buf.Image(), imaging.PNG)
	})
}

// CreateScratch reserves an empty intermediate file in dir (the system temp
// directory when dir is empty) and returns its path.
func CreateScratch(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "texnorm-*"+IntermediateExt)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", errors.Join(err, os.Remove(name))
	}
	return name, nil
}
